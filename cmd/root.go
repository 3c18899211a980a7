package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/telemetry"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

// logOutput receives structured debug logs
var logOutput io.Writer = os.Stderr

// engineTelemetry logs engine calls under -v; nil otherwise
var engineTelemetry *telemetry.LogOutput

var (
	verbose    bool
	jsonOutput bool
	socketPath string
	configPath string
	projectDir string
)

var rootCmd = &cobra.Command{
	Use:   "cargo-sandbox",
	Short: "Run cargo inside disposable Docker sandboxes",
	Long: `cargo-sandbox runs cargo commands inside Docker containers, talking to
the Docker Engine API directly over its local Unix socket.

Each project gets sandbox containers identified by labels:
  - build:   ephemeral, recreated for every build, check or verification
  - publish: ephemeral, holds the registry token for cargo publish
  - dev:     long-lived, reused by exec

Container output is streamed to stdout and stderr as it is produced.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, logOutput)
		setupTelemetry()
		return loadConfig()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context; sandbox cleanup still runs.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeTelemetry()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.UserError("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Docker Engine socket (default: $DOCKER_HOST, config, "+config.DefaultSocket+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/cargo-sandbox/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "C", "", "Project directory (default: current directory)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setupTelemetry routes the engine client's spans to the debug log when
// verbose logging is on
func setupTelemetry() {
	closeTelemetry()
	if !logging.Verbose {
		return
	}
	engineTelemetry = telemetry.NewLogOutput(logging.With("component", "runtime"))
	app.Default.TracerProvider = engineTelemetry.TracerProvider()
}

func closeTelemetry() {
	if engineTelemetry == nil {
		return
	}
	engineTelemetry.Close()
	engineTelemetry = nil
}

// loadConfig loads the config file into the app unless one was injected.
// An explicit --config must exist; the default path is optional.
func loadConfig() error {
	a := app.Default
	if a.Config != nil && configPath == "" {
		return nil
	}

	path, required := configPath, true
	if path == "" {
		path, required = config.DefaultPath(a.Env), false
	}
	cfg, err := config.Load(a.FS, path, required)
	if err != nil {
		return err
	}
	a.Config = cfg
	return nil
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
