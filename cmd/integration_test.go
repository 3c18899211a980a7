package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime/enginetest"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/system"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/testutil"
)

// These tests drive the CLI against a fake engine over a real Unix socket,
// exercising the HTTP client, transport and stream decoding together.

func setupEngineApp(t *testing.T) (*enginetest.FakeEngine, string, *bytes.Buffer) {
	t.Helper()

	engine := enginetest.New(t)
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	projectDir := filepath.Join(root, "myapp")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	a := app.New(
		app.WithConfig(config.Default()),
		app.WithEnv(system.NewMockEnv(projectDir, nil)),
		app.WithOutput(&stdout, &stderr),
	)
	original := app.Default
	app.SetDefault(a)
	t.Cleanup(func() {
		a.Close()
		app.SetDefault(original)
	})
	captureUserOutput(t)

	return engine, projectDir, &stdout
}

func TestIntegration_Build(t *testing.T) {
	engine, projectDir, stdout := setupEngineApp(t)

	const id = "0123456789abcdef"
	var lists atomic.Int32
	engine.Handle(http.MethodGet, "/containers/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// The first listing looks for a stale container; later ones re-locate the new one.
		if lists.Add(1) == 1 {
			w.Write([]byte(`[]`))
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{
			"Id":    id,
			"State": "created",
			"Labels": map[string]string{
				"cargo-sandbox.project-name":   "myapp",
				"cargo-sandbox.container-type": "build",
			},
		}})
	})
	engine.RespondJSON(http.MethodPost, "/containers/create", http.StatusCreated, map[string]any{"Id": id, "Warnings": []string{}})
	engine.RespondStream(http.MethodPost, "/containers/"+id+"/attach",
		testutil.Framed(t, testutil.Stdout("Compiling myapp\n"), testutil.Stdout("Finished\n")))
	engine.Respond(http.MethodPost, "/containers/"+id+"/start", http.StatusNoContent, "")
	engine.Respond(http.MethodPost, "/containers/"+id+"/wait", http.StatusOK, `{"StatusCode":0}`)
	engine.Respond(http.MethodDelete, "/containers/"+id, http.StatusNoContent, "")

	if _, _, err := executeCommand("--socket", engine.Socket, "-C", projectDir, "build"); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := []string{
		"GET /containers/json",
		"POST /containers/create",
		"GET /containers/json",
		"POST /containers/" + id + "/attach",
		"POST /containers/" + id + "/start",
		"POST /containers/" + id + "/wait",
		"DELETE /containers/" + id,
	}
	if got := engine.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("engine requests =\n%q\nwant\n%q", got, want)
	}
	if stdout.String() != "Compiling myapp\nFinished\n" {
		t.Errorf("stdout = %q", stdout.String())
	}

	var spec map[string]any
	if err := json.Unmarshal(engine.Requests()[1].Body, &spec); err != nil {
		t.Fatalf("create body not JSON: %v", err)
	}
	if spec["Image"] != "cargo-sandbox-build" {
		t.Errorf("Image = %v", spec["Image"])
	}
	if q := engine.Requests()[6].Query; q.Get("force") != "true" {
		t.Errorf("remove query = %v, want force=true", q)
	}
}

func TestIntegration_Doctor(t *testing.T) {
	engine, _, _ := setupEngineApp(t)
	engine.Respond(http.MethodGet, "/_ping", http.StatusOK, "OK")

	if _, _, err := executeCommand("--socket", engine.Socket, "doctor"); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
}

func TestIntegration_DoctorMissingSocket(t *testing.T) {
	setupEngineApp(t)

	_, _, err := executeCommand("--socket", filepath.Join(t.TempDir(), "none.sock"), "doctor")
	if err == nil {
		t.Fatal("doctor should fail without an engine")
	}
}

// captureLogs redirects structured logs for the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := logOutput
	logOutput = &buf
	t.Cleanup(func() {
		logOutput = old
		closeTelemetry()
		logging.Setup(false, false, old)
	})
	return &buf
}

func TestIntegration_VerboseLogsEngineCalls(t *testing.T) {
	engine, _, _ := setupEngineApp(t)
	logs := captureLogs(t)
	engine.Respond(http.MethodGet, "/_ping", http.StatusOK, "OK")

	if _, _, err := executeCommand("-v", "--socket", engine.Socket, "doctor"); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if engineTelemetry == nil {
		t.Fatal("-v should install engine telemetry")
	}

	out := logs.String()
	for _, want := range []string{"engine call", "component=runtime", "op=ping", "status=Ok", "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("logs should contain %q, got:\n%s", want, out)
		}
	}
}

func TestIntegration_VerboseLogsFailedEngineCalls(t *testing.T) {
	engine, projectDir, _ := setupEngineApp(t)
	logs := captureLogs(t)
	engine.Respond(http.MethodGet, "/containers/json", http.StatusInternalServerError, `{"message":"engine on fire"}`)

	if _, _, err := executeCommand("-v", "--socket", engine.Socket, "-C", projectDir, "ps"); err == nil {
		t.Fatal("ps should fail when the engine rejects the listing")
	}

	out := logs.String()
	for _, want := range []string{`op="list containers"`, "status=Error", "engine on fire"} {
		if !strings.Contains(out, want) {
			t.Errorf("logs should contain %q, got:\n%s", want, out)
		}
	}
}

func TestIntegration_QuietRunInstallsNoTelemetry(t *testing.T) {
	engine, _, _ := setupEngineApp(t)
	logs := captureLogs(t)
	engine.Respond(http.MethodGet, "/_ping", http.StatusOK, "OK")

	if _, _, err := executeCommand("--socket", engine.Socket, "doctor"); err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if engineTelemetry != nil || app.Default.TracerProvider != nil {
		t.Error("telemetry should only be installed with -v")
	}
	if strings.Contains(logs.String(), "engine call") {
		t.Errorf("engine calls should not be logged without -v, got:\n%s", logs.String())
	}
}
