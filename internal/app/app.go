// Package app provides the application context for cargo-sandbox.
// It allows dependency injection for testing.
package app

import (
	"io"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/system"
)

// App holds the application dependencies
type App struct {
	// Config is the loaded configuration; nil until loaded or injected
	Config *config.Config

	// Runtime is the engine client; nil until Connect or WithRuntime
	Runtime runtime.Runtime

	// FS and Env abstract the host for config loading and passthrough
	FS  system.FileSystem
	Env system.Environment

	// Stdout and Stderr receive container output
	Stdout io.Writer
	Stderr io.Writer

	// TracerProvider receives the engine client's spans; nil means global
	TracerProvider trace.TracerProvider
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets a custom config
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithRuntime sets a custom runtime
func WithRuntime(r runtime.Runtime) Option {
	return func(a *App) {
		a.Runtime = r
	}
}

// WithFS sets a custom filesystem
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithEnv sets a custom environment
func WithEnv(env system.Environment) Option {
	return func(a *App) {
		a.Env = env
	}
}

// WithOutput sets the writers container output is copied to
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.Stdout = stdout
		a.Stderr = stderr
	}
}

// WithTracerProvider sets the provider the engine client traces with
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *App) {
		a.TracerProvider = tp
	}
}

// New creates a new App with the given options.
func New(opts ...Option) *App {
	app := &App{
		FS:     system.DefaultFS(),
		Env:    system.DefaultEnv(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// Connect creates the engine client for socket unless a runtime was
// injected. No connection is made until the first call.
func (a *App) Connect(socket string) error {
	if a.Runtime != nil {
		return nil
	}
	client, err := runtime.NewClient(socket, runtime.WithTracerProvider(a.TracerProvider))
	if err != nil {
		return err
	}
	logging.Debug("using engine socket", "socket", client.Socket())
	a.Runtime = client
	return nil
}

// Close releases the runtime's resources when it holds any
func (a *App) Close() error {
	if closer, ok := a.Runtime.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
