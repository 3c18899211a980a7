// Package testutil provides test fixtures and utilities.
//
// # Test Environment
//
// NewTestEnv builds a project directory under t.TempDir, a MockRuntime,
// a mock host environment and captured output buffers, and installs them
// as app.Default:
//
//	env := testutil.NewTestEnv(t)
//	defer env.Cleanup()
//
//	env.AddContainer("stale", "build", runtime.StateExited)
//	env.SetOutput(testutil.Stdout("Compiling myapp\n"))
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/valid_config.toml
//	fixtures/invalid_config.toml
//	fixtures/containers.json
//
// Helper functions load and parse them:
//
//	cfg, err := testutil.ValidConfig()
//	list, err := testutil.ContainerList()
//	data, err := testutil.LoadFixture("invalid_config.toml")
//
// # Output Streams
//
// Framed encodes multiplexed output with the engine's own stream writer
// (github.com/docker/docker/pkg/stdcopy):
//
//	data := testutil.Framed(t, testutil.Stdout("ok\n"), testutil.Stderr("warn\n"))
package testutil
