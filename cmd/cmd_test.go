package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/testutil"
)

// resetFlags restores every flag of c and its subcommands to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	resetFlags(rootCmd)

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)

	return stdout.String(), stderr.String(), err
}

// captureUserOutput redirects user-facing status lines for the test
func captureUserOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := logging.UserOutput
	logging.UserOutput = &buf
	t.Cleanup(func() { logging.UserOutput = old })
	return &buf
}

func createdCmds(m *runtime.MockRuntime) [][]string {
	var cmds [][]string
	for _, call := range m.GetCallsFor("CreateContainer") {
		cmds = append(cmds, call.Args[0].(runtime.ContainerSpec).Cmd)
	}
	return cmds
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "cargo-sandbox") {
		t.Error("Help output should contain 'cargo-sandbox'")
	}

	for _, sub := range []string{"build", "check", "publish", "exec", "ps", "clean", "stop", "doctor"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("Help output should list %q", sub)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}

	for _, flag := range []string{"--verbose", "--json", "--socket", "--config", "--project-dir"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("Should have %s flag", flag)
		}
	}
}

func TestSubcommandHelp(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"build", "cargo build"},
		{"check", "cargo check"},
		{"publish", "--token"},
		{"exec", "dev sandbox"},
		{"doctor", "--timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			stdout, _, err := executeCommand(tt.cmd, "--help")
			if err != nil {
				t.Fatalf("%s --help failed: %v", tt.cmd, err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("%s help should mention %q, got:\n%s", tt.cmd, tt.want, stdout)
			}
		})
	}
}

func TestBuildCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	captureUserOutput(t)
	env.SetOutput(testutil.Stdout("Compiling myapp\n"), testutil.Stdout("Finished\n"))

	if _, _, err := executeCommand("-C", env.ProjectDir, "build", "--", "--release"); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := [][]string{{"cargo", "build", "--release"}}
	if got := createdCmds(env.Runtime); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if env.Stdout.String() != "Compiling myapp\nFinished\n" {
		t.Errorf("stdout = %q", env.Stdout.String())
	}
	if len(env.Runtime.Containers) != 0 {
		t.Error("build container should be removed")
	}
}

func TestBuildCommand_UsesWorkingDirectory(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	captureUserOutput(t)

	if _, _, err := executeCommand("check"); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	spec := env.Runtime.GetCallsFor("CreateContainer")[0].Args[0].(runtime.ContainerSpec)
	if spec.Labels["cargo-sandbox.project-name"] != "myapp" {
		t.Errorf("project label = %q, want %q", spec.Labels["cargo-sandbox.project-name"], "myapp")
	}
	if spec.Labels["cargo-sandbox.version"] != Version {
		t.Errorf("version label = %q, want %q", spec.Labels["cargo-sandbox.version"], Version)
	}
}

func TestBuildCommand_ResolvesSymlinkedProjectDir(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	captureUserOutput(t)
	link := filepath.Join(env.TmpDir, "shortcut")
	if err := os.Symlink(env.ProjectDir, link); err != nil {
		t.Fatal(err)
	}

	if _, _, err := executeCommand("-C", link, "build"); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	spec := env.Runtime.GetCallsFor("CreateContainer")[0].Args[0].(runtime.ContainerSpec)
	if spec.Labels["cargo-sandbox.project-name"] != "myapp" {
		t.Errorf("project label = %q, want %q", spec.Labels["cargo-sandbox.project-name"], "myapp")
	}
	if len(spec.HostConfig.Binds) != 1 || !strings.HasPrefix(spec.HostConfig.Binds[0], env.ProjectDir+"/:") {
		t.Errorf("binds = %v, want source %s/", spec.HostConfig.Binds, env.ProjectDir)
	}
}

func TestBuildCommand_ExitCode(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	captureUserOutput(t)
	env.Runtime.ExitCode = 101

	_, _, err := executeCommand("-C", env.ProjectDir, "build")
	if code := errors.GetExitCode(err); code != 101 {
		t.Errorf("exit code = %d, want 101 (err: %v)", code, err)
	}
}

func TestBuildCommand_MissingProjectDir(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	_, _, err := executeCommand("-C", env.TmpDir+"/nope", "build")
	if err == nil {
		t.Fatal("build in a missing directory should fail")
	}
	if calls := env.Runtime.GetCalls(); len(calls) != 0 {
		t.Errorf("engine called: %v", calls)
	}
}

func TestPublishCommand_Token(t *testing.T) {
	tests := []struct {
		name      string
		envToken  string
		args      []string
		wantToken string
	}{
		{"flag", "", []string{"publish", "--token", "from-flag"}, "from-flag"},
		{"environment", "from-env", []string{"publish"}, "from-env"},
		{"flag wins", "from-env", []string{"publish", "--token", "from-flag"}, "from-flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnv(t)
			defer env.Cleanup()
			captureUserOutput(t)
			if tt.envToken != "" {
				env.Env.Vars[tokenEnv] = tt.envToken
			}

			if _, _, err := executeCommand(append([]string{"-C", env.ProjectDir}, tt.args...)...); err != nil {
				t.Fatalf("publish failed: %v", err)
			}

			cmds := createdCmds(env.Runtime)
			if len(cmds) != 2 {
				t.Fatalf("created %d containers, want 2", len(cmds))
			}
			want := []string{"cargo", "publish", "--no-verify", "--token", tt.wantToken}
			if !reflect.DeepEqual(cmds[1], want) {
				t.Errorf("publish command = %q, want %q", cmds[1], want)
			}
		})
	}
}

func TestPublishCommand_NoToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	_, _, err := executeCommand("-C", env.ProjectDir, "publish")
	if err == nil {
		t.Fatal("publish without a token should fail")
	}
	if !strings.Contains(err.Error(), tokenEnv) {
		t.Errorf("error should mention %s: %v", tokenEnv, err)
	}
}

func TestExecCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	env.SetOutput(testutil.Stdout("test result: ok\n"))

	if _, _, err := executeCommand("-C", env.ProjectDir, "exec", "--", "cargo", "test", "--workspace"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}

	exec := env.Runtime.GetCallsFor("CreateExec")[0].Args[1].(runtime.ExecSpec)
	if !reflect.DeepEqual(exec.Cmd, []string{"cargo", "test", "--workspace"}) {
		t.Errorf("exec Cmd = %q", exec.Cmd)
	}
	if env.Stdout.String() != "test result: ok\n" {
		t.Errorf("stdout = %q", env.Stdout.String())
	}
}

func TestExecCommand_RequiresCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	if _, _, err := executeCommand("-C", env.ProjectDir, "exec"); err == nil {
		t.Error("exec without a command should fail")
	}
}

func TestPsCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	env.AddContainer("aaaaaaaaaaaaaaaa", "build", runtime.StateExited)
	env.AddContainer("bbbbbbbbbbbbbbbb", "dev", runtime.StateRunning)

	if _, _, err := executeCommand("-C", env.ProjectDir, "ps"); err != nil {
		t.Fatalf("ps failed: %v", err)
	}

	out := env.Stdout.String()
	for _, want := range []string{"CONTAINER ID", "aaaaaaaaaaaa", "bbbbbbbbbbbb", "build", "dev", "● running"} {
		if !strings.Contains(out, want) {
			t.Errorf("ps output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "aaaaaaaaaaaaa") {
		t.Error("ps should show short container IDs")
	}
}

func TestPsCommand_Empty(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	out := captureUserOutput(t)

	if _, _, err := executeCommand("-C", env.ProjectDir, "ps"); err != nil {
		t.Fatalf("ps failed: %v", err)
	}
	if !strings.Contains(out.String(), "No sandbox containers") {
		t.Errorf("expected empty message, got %q", out.String())
	}
}

func TestCleanCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	out := captureUserOutput(t)
	env.AddContainer("b1", "build", runtime.StateExited)
	env.AddContainer("d1", "dev", runtime.StateRunning)

	if _, _, err := executeCommand("-C", env.ProjectDir, "clean"); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if len(env.Runtime.Containers) != 0 {
		t.Errorf("%d containers left", len(env.Runtime.Containers))
	}
	if !strings.Contains(out.String(), "Removed 2") {
		t.Errorf("expected removal summary, got %q", out.String())
	}
}

func TestStopCommand_NoDevContainer(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	captureUserOutput(t)

	_, _, err := executeCommand("-C", env.ProjectDir, "stop")
	if code := errors.GetExitCode(err); code != errors.ExitContainerNotFound {
		t.Errorf("exit code = %d, want %d", code, errors.ExitContainerNotFound)
	}
}

func TestDoctorCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	out := captureUserOutput(t)

	if _, _, err := executeCommand("doctor", "--socket", "/run/test.sock"); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out.String(), "/run/test.sock") {
		t.Errorf("doctor should report the socket, got %q", out.String())
	}

	env.Runtime.SetError("Ping", fmt.Errorf("connection refused"))
	_, _, err := executeCommand("doctor")
	if code := errors.GetExitCode(err); code != errors.ExitConnectionError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConnectionError)
	}
}

func TestConfigFlag_Missing(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	_, _, err := executeCommand("--config", env.TmpDir+"/missing.toml", "-C", env.ProjectDir, "build")
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d (err: %v)", code, errors.ExitConfigError, err)
	}
}
