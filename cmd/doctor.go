package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the Docker Engine socket is reachable",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

var doctorTimeout time.Duration

func init() {
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 5*time.Second, "How long to wait for the engine")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	socket := resolvedSocket()
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
	defer cancel()

	var dialer health.Dialer
	if client, ok := rt.(*runtime.Client); ok {
		dialer = client.Transport()
	}

	result := health.Check(ctx, rt, dialer)
	switch result.Status() {
	case health.StatusHealthy:
		logSuccess("Docker Engine reachable at %s (%s)", socket, result.Latency.Round(time.Millisecond))
		return nil
	case health.StatusUnresponsive:
		logWarning("Socket %s accepts connections but the engine did not answer", socket)
	}
	return errors.ConnectionFailed(socket, result.Err)
}
