// Package health checks that the Docker Engine behind the configured
// socket is usable.
//
// # Health Status
//
// Engine health is represented by Status:
//
//	StatusHealthy      - Socket accepts connections and the engine answers /_ping
//	StatusUnresponsive - Socket accepts connections but the ping fails
//	StatusUnreachable  - Socket missing, not a socket, or refusing connections
//
// # Check Functions
//
//	result := health.Check(ctx, rt, dialer)
//	// result.SocketReachable, .EngineResponding, .Latency, .Err
//	status := result.Status()
//
// FormatAge renders container creation times for listings.
package health
