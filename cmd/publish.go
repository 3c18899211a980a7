package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/app"
)

// tokenEnv is read when --token is not given
const tokenEnv = "CARGO_REGISTRY_TOKEN"

var publishCmd = &cobra.Command{
	Use:   "publish [--token <token>] [-- <cargo args>]",
	Short: "Verify and publish the crate from sandboxes",
	Long: `Publish runs in two phases:

  1. cargo publish --dry-run in a build sandbox (skipped with --no-verify)
  2. cargo publish --no-verify --token in a publish sandbox (skipped with --dry-run)

The token is taken from --token or $CARGO_REGISTRY_TOKEN and never logged.`,
	Example: `  cargo-sandbox publish --token $TOKEN
  cargo-sandbox publish -- --dry-run --allow-dirty`,
	Args: cobra.ArbitraryArgs,
	RunE: runPublish,
}

var publishToken string

func init() {
	publishCmd.Flags().StringVar(&publishToken, "token", "", "Registry token (default: $"+tokenEnv+")")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	token := publishToken
	if token == "" {
		token = app.Default.Env.Getenv(tokenEnv)
	}

	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	return o.Publish(cmd.Context(), token, args)
}
