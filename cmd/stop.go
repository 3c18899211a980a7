package cmd

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the project's dev sandbox",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	logInfo("Stopping dev sandbox for %s...", o.Project())
	if err := o.Stop(cmd.Context()); err != nil {
		return err
	}

	logSuccess("Stopped dev sandbox for %s", o.Project())
	return nil
}
