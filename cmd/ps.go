package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List this project's sandbox containers",
	Args:  cobra.NoArgs,
	RunE:  runPs,
}

func init() {
	rootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	containers, err := o.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(containers) == 0 {
		logInfo("No sandbox containers for %s", o.Project())
		return nil
	}

	label := app.Default.Config.Label("container-type")
	w := tabwriter.NewWriter(app.Default.Stdout, 0, 0, 2, ' ', 0)
	now := time.Now()
	fmt.Fprintln(w, "CONTAINER ID\tPURPOSE\tIMAGE\tSTATE\tCREATED\tSTATUS")
	for i := range containers {
		c := &containers[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ShortID(), c.Labels[label], c.Image, formatState(c.State), health.FormatAge(c.Created, now), c.Status)
	}

	return w.Flush()
}

func formatState(state runtime.ContainerState) string {
	switch state {
	case runtime.StateRunning:
		return "● running"
	case runtime.StateExited, runtime.StateDead:
		return "○ " + string(state)
	default:
		return string(state)
	}
}
