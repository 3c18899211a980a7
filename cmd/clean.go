package cmd

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Force-remove all of this project's sandbox containers",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	n, err := o.RemoveAll(cmd.Context())
	if err != nil {
		return err
	}

	if n == 0 {
		logInfo("No sandbox containers for %s", o.Project())
		return nil
	}
	logSuccess("Removed %d sandbox container(s) for %s", n, o.Project())
	return nil
}
