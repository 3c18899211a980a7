package cmd

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [-- <cargo args>]",
	Short: "Run cargo build in a fresh build sandbox",
	Example: `  cargo-sandbox build
  cargo-sandbox build -- --release --features tls`,
	Args: cobra.ArbitraryArgs,
	RunE: runBuild,
}

var checkCmd = &cobra.Command{
	Use:   "check [-- <cargo args>]",
	Short: "Run cargo check in a fresh build sandbox",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	return o.Build(cmd.Context(), args)
}

func runCheck(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	return o.Check(cmd.Context(), args)
}
