// Package testutil provides test utilities for integration tests
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/system"
)

// ProjectName is the name of the project directory every TestEnv creates
const ProjectName = "myapp"

// TestEnv holds the test environment
type TestEnv struct {
	T          *testing.T
	TmpDir     string
	ProjectDir string
	Config     *config.Config
	Env        *system.MockEnv
	Runtime    *runtime.MockRuntime
	Stdout     *bytes.Buffer
	Stderr     *bytes.Buffer
	App        *app.App
	cleanup    func()
}

// NewTestEnv creates a new test environment with mock runtime
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp directory: %v", err)
	}
	projectDir := filepath.Join(tmpDir, ProjectName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("Failed to create project directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "Cargo.toml"), []byte("[package]\nname = \"myapp\"\nversion = \"0.1.0\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write Cargo.toml: %v", err)
	}

	env := system.NewMockEnv(projectDir, map[string]string{
		"HOME":             tmpDir,
		"PATH":             "/usr/bin:/bin",
		"CARGO_BUILD_JOBS": "4",
	})
	cfg := config.Default()
	mockRuntime := runtime.NewMockRuntime()
	var stdout, stderr bytes.Buffer

	testApp := app.New(
		app.WithConfig(cfg),
		app.WithRuntime(mockRuntime),
		app.WithEnv(env),
		app.WithOutput(&stdout, &stderr),
	)

	// Save original default and set test app
	originalDefault := app.Default
	app.SetDefault(testApp)

	return &TestEnv{
		T:          t,
		TmpDir:     tmpDir,
		ProjectDir: projectDir,
		Config:     cfg,
		Env:        env,
		Runtime:    mockRuntime,
		Stdout:     &stdout,
		Stderr:     &stderr,
		App:        testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
		},
	}
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// Labels returns the labels cargo-sandbox puts on a container of the
// test project with purpose
func (e *TestEnv) Labels(purpose string) map[string]string {
	return map[string]string{
		e.Config.Label("project-name"):   ProjectName,
		e.Config.Label("container-type"): purpose,
		e.Config.Label("version"):        "test",
	}
}

// AddContainer adds an existing sandbox container of the test project
func (e *TestEnv) AddContainer(id, purpose string, state runtime.ContainerState) *runtime.MockContainer {
	e.T.Helper()
	return e.Runtime.AddContainer(id, state, e.Labels(purpose))
}

// SetOutput sets the framed stream both Attach and StartExec serve
func (e *TestEnv) SetOutput(frames ...Frame) {
	e.T.Helper()
	data := Framed(e.T, frames...)
	e.Runtime.AttachOutput = data
	e.Runtime.ExecOutput = data
}
