package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
)

// Status represents the health of the engine
type Status string

const (
	StatusHealthy      Status = "healthy"
	StatusUnresponsive Status = "unresponsive"
	StatusUnreachable  Status = "unreachable"
)

// Dialer opens a raw connection to the engine socket.
// *runtime.Transport satisfies it.
type Dialer interface {
	Connect(ctx context.Context) (net.Conn, error)
}

// CheckResult contains the results of health checks
type CheckResult struct {
	SocketReachable  bool
	EngineResponding bool
	Latency          time.Duration
	Err              error
}

// Status summarizes the result
func (r *CheckResult) Status() Status {
	switch {
	case !r.SocketReachable:
		return StatusUnreachable
	case !r.EngineResponding:
		return StatusUnresponsive
	default:
		return StatusHealthy
	}
}

// Check dials the socket and pings the engine.
// The dialer is optional; without one the socket check is inferred from the ping.
func Check(ctx context.Context, rt runtime.Runtime, dialer Dialer) *CheckResult {
	result := &CheckResult{}

	if dialer != nil {
		conn, err := dialer.Connect(ctx)
		if err != nil {
			result.Err = err
			return result
		}
		conn.Close()
	}
	result.SocketReachable = true

	start := time.Now()
	if err := rt.Ping(ctx); err != nil {
		logging.Debug("engine ping failed", "error", err)
		result.Err = err
		if dialer == nil {
			result.SocketReachable = false
		}
		return result
	}
	result.Latency = time.Since(start)
	result.EngineResponding = true
	return result
}

// FormatAge renders the time since a unix creation timestamp.
func FormatAge(created int64, now time.Time) string {
	if created <= 0 {
		return "unknown"
	}
	d := now.Sub(time.Unix(created, 0))
	if d < 0 {
		d = 0
	}
	return formatDuration(d) + " ago"
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
