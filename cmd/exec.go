package cmd

import (
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Run a command in the project's long-lived dev sandbox",
	Long: `Exec runs a command in the project's dev sandbox, creating and
starting it on first use. The container is kept between runs so caches
in it survive; remove it with clean.`,
	Example: `  cargo-sandbox exec -- cargo test
  cargo-sandbox exec -- cargo clippy --all-targets`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	return o.RunReusable(cmd.Context(), args)
}
