// Package app provides the application context for cargo-sandbox.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config  *config.Config      // Loaded configuration
//	    Runtime runtime.Runtime     // Engine client
//	    FS      system.FileSystem   // Host filesystem
//	    Env     system.Environment  // Host environment
//	    Stdout  io.Writer           // Container stdout sink
//	    Stderr  io.Writer           // Container stderr sink
//	}
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a := app.New()
//	err := a.Connect(socket)
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithRuntime(mockRuntime),
//	    app.WithEnv(system.NewMockEnv("/src/myapp", nil)),
//	    app.WithOutput(&stdout, &stderr),
//	)
//
// # Available Options
//
//	WithConfig(cfg)            // Custom configuration
//	WithRuntime(runtime)       // Custom engine client
//	WithFS(fs)                 // Custom filesystem
//	WithEnv(env)               // Custom environment
//	WithOutput(stdout, stderr) // Custom output sinks
package app
