package testutil

import (
	"bytes"
	"embed"
	"encoding/json"
	"testing"

	"github.com/docker/docker/pkg/stdcopy"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/system"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadConfigFixture loads a TOML config fixture through config.Load.
func LoadConfigFixture(name string) (*config.Config, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	fs := system.NewMockFS()
	fs.AddFile("/fixtures/"+name, data, 0644)
	return config.Load(fs, "/fixtures/"+name, true)
}

// ValidConfig returns the valid config fixture.
func ValidConfig() (*config.Config, error) {
	return LoadConfigFixture("valid_config.toml")
}

// InvalidConfig returns the raw invalid config fixture.
func InvalidConfig() ([]byte, error) {
	return LoadFixture("invalid_config.toml")
}

// ContainerList returns the container listing fixture as the engine
// would serve it.
func ContainerList() ([]runtime.ContainerSummary, error) {
	data, err := LoadFixture("containers.json")
	if err != nil {
		return nil, err
	}
	var list []runtime.ContainerSummary
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Frame is one frame of a multiplexed output stream
type Frame struct {
	Stderr bool
	Data   string
}

// Stdout returns a stdout frame
func Stdout(data string) Frame { return Frame{Data: data} }

// Stderr returns a stderr frame
func Stderr(data string) Frame { return Frame{Stderr: true, Data: data} }

// Framed encodes frames with the engine's own stream writer.
func Framed(t testing.TB, frames ...Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	stdout := stdcopy.NewStdWriter(&buf, stdcopy.Stdout)
	stderr := stdcopy.NewStdWriter(&buf, stdcopy.Stderr)
	for _, f := range frames {
		w := stdout
		if f.Stderr {
			w = stderr
		}
		if _, err := w.Write([]byte(f.Data)); err != nil {
			t.Fatalf("encode frame: %v", err)
		}
	}
	return buf.Bytes()
}
