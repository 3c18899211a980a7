package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockRuntime is an in-memory implementation of Runtime for testing. It
// keeps container state so the orchestrator's lifecycle can be exercised
// end to end.
type MockRuntime struct {
	mu sync.RWMutex

	// Containers in engine listing order, most recently created first
	Containers []*MockContainer

	// AttachOutput is the framed stream returned by Attach
	AttachOutput []byte

	// ExitCode is the status WaitContainer reports
	ExitCode int64

	// ExecOutput is the framed stream returned by StartExec
	ExecOutput []byte

	// ExecExitCode is the exit code InspectExec reports
	ExecExitCode int

	// Warnings are returned with every successful create
	Warnings []string

	// Errors allows injecting errors for specific operations
	Errors map[string]error

	// CallLog records all method calls for verification
	CallLog []MockCall

	// Execs holds the spec of every created exec, keyed by exec ID
	Execs map[string]ExecSpec

	nextID int
}

// MockContainer is a container held by MockRuntime
type MockContainer struct {
	Summary ContainerSummary
	Spec    ContainerSpec
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// Compile-time interface check
var _ Runtime = (*MockRuntime)(nil)

// NewMockRuntime creates a new mock runtime
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		Errors:  make(map[string]error),
		CallLog: make([]MockCall, 0),
		Execs:   make(map[string]ExecSpec),
	}
}

func (m *MockRuntime) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError sets an error to be returned for a specific operation
func (m *MockRuntime) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

// AddContainer adds a pre-existing container. It is listed after any
// container already present, as an older container would be.
func (m *MockRuntime) AddContainer(id string, state ContainerState, labels map[string]string) *MockContainer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &MockContainer{Summary: ContainerSummary{
		ID:     id,
		Names:  []string{"/" + id},
		State:  state,
		Labels: labels,
	}}
	m.Containers = append(m.Containers, c)
	return c
}

// Container returns the container with the given ID, or nil
func (m *MockRuntime) Container(id string) *MockContainer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(id)
}

// GetCalls returns all recorded calls
func (m *MockRuntime) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]MockCall, len(m.CallLog))
	copy(result, m.CallLog)
	return result
}

// GetCallsFor returns calls for a specific method
func (m *MockRuntime) GetCallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}

// Methods returns the method names of all recorded calls, in order
func (m *MockRuntime) Methods() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.CallLog))
	for i, call := range m.CallLog {
		names[i] = call.Method
	}
	return names
}

// Reset clears all state
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers = nil
	m.Errors = make(map[string]error)
	m.CallLog = make([]MockCall, 0)
	m.Execs = make(map[string]ExecSpec)
}

// ListContainers implements Runtime
func (m *MockRuntime) ListContainers(ctx context.Context, opts ListOptions) ([]ContainerSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListContainers", opts)

	if err, ok := m.Errors["ListContainers"]; ok {
		return nil, err
	}

	var result []ContainerSummary
	for _, c := range m.Containers {
		if !opts.All && c.Summary.State != StateRunning {
			continue
		}
		if !matchLabels(c.Summary.Labels, opts.Filters["label"]) {
			continue
		}
		result = append(result, c.Summary)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

// CreateContainer implements Runtime
func (m *MockRuntime) CreateContainer(ctx context.Context, spec ContainerSpec) (*CreateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateContainer", spec)

	if err, ok := m.Errors["CreateContainer"]; ok {
		return nil, err
	}

	m.nextID++
	id := fmt.Sprintf("mock%08d", m.nextID)
	c := &MockContainer{
		Spec: spec,
		Summary: ContainerSummary{
			ID:      id,
			Names:   []string{"/" + id},
			Image:   spec.Image,
			Command: strings.Join(spec.Cmd, " "),
			Labels:  spec.Labels,
			State:   StateCreated,
		},
	}
	m.Containers = append([]*MockContainer{c}, m.Containers...)
	return &CreateResponse{ID: id, Warnings: m.Warnings}, nil
}

// StartContainer implements Runtime
func (m *MockRuntime) StartContainer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("StartContainer", id)

	if err, ok := m.Errors["StartContainer"]; ok {
		return err
	}
	c := m.find(id)
	if c == nil {
		return notFound("start container", id)
	}
	c.Summary.State = StateRunning
	return nil
}

// KillContainer implements Runtime
func (m *MockRuntime) KillContainer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("KillContainer", id)

	if err, ok := m.Errors["KillContainer"]; ok {
		return err
	}
	c := m.find(id)
	if c == nil {
		return notFound("kill container", id)
	}
	if c.Summary.State != StateRunning {
		return &APIError{Op: "kill container", StatusCode: http.StatusConflict, Message: fmt.Sprintf("container %s is not running", id)}
	}
	c.Summary.State = StateExited
	return nil
}

// RemoveContainer implements Runtime
func (m *MockRuntime) RemoveContainer(ctx context.Context, id string, opts RemoveOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RemoveContainer", id, opts)

	if err, ok := m.Errors["RemoveContainer"]; ok {
		return err
	}
	for i, c := range m.Containers {
		if c.Summary.ID != id {
			continue
		}
		if c.Summary.State == StateRunning && !opts.Force {
			return &APIError{Op: "remove container", StatusCode: http.StatusConflict, Message: "cannot remove a running container"}
		}
		m.Containers = append(m.Containers[:i], m.Containers[i+1:]...)
		return nil
	}
	return notFound("remove container", id)
}

// WaitContainer implements Runtime. The container is marked exited.
func (m *MockRuntime) WaitContainer(ctx context.Context, id string) (*WaitResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("WaitContainer", id)

	if err, ok := m.Errors["WaitContainer"]; ok {
		return nil, err
	}
	c := m.find(id)
	if c == nil {
		return nil, notFound("wait container", id)
	}
	c.Summary.State = StateExited
	return &WaitResponse{StatusCode: m.ExitCode}, nil
}

// Attach implements Runtime
func (m *MockRuntime) Attach(ctx context.Context, id string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Attach", id)

	if err, ok := m.Errors["Attach"]; ok {
		return nil, err
	}
	if m.find(id) == nil {
		return nil, notFound("attach container", id)
	}
	return io.NopCloser(bytes.NewReader(m.AttachOutput)), nil
}

// CreateExec implements Runtime
func (m *MockRuntime) CreateExec(ctx context.Context, id string, spec ExecSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateExec", id, spec)

	if err, ok := m.Errors["CreateExec"]; ok {
		return "", err
	}
	c := m.find(id)
	if c == nil {
		return "", notFound("create exec", id)
	}
	if c.Summary.State != StateRunning {
		return "", &APIError{Op: "create exec", StatusCode: http.StatusConflict, Message: fmt.Sprintf("container %s is not running", id)}
	}
	m.nextID++
	execID := fmt.Sprintf("exec%08d", m.nextID)
	m.Execs[execID] = spec
	return execID, nil
}

// StartExec implements Runtime
func (m *MockRuntime) StartExec(ctx context.Context, execID string, opts ExecStartOptions) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("StartExec", execID, opts)

	if err, ok := m.Errors["StartExec"]; ok {
		return nil, err
	}
	if _, ok := m.Execs[execID]; !ok {
		return nil, &APIError{Op: "start exec", StatusCode: http.StatusNotFound, Message: "No such exec instance: " + execID}
	}
	return io.NopCloser(bytes.NewReader(m.ExecOutput)), nil
}

// InspectExec implements Runtime
func (m *MockRuntime) InspectExec(ctx context.Context, execID string) (*ExecInspect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InspectExec", execID)

	if err, ok := m.Errors["InspectExec"]; ok {
		return nil, err
	}
	if _, ok := m.Execs[execID]; !ok {
		return nil, &APIError{Op: "inspect exec", StatusCode: http.StatusNotFound, Message: "No such exec instance: " + execID}
	}
	return &ExecInspect{ID: execID, ExitCode: m.ExecExitCode}, nil
}

// Ping implements Runtime
func (m *MockRuntime) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Ping")

	if err, ok := m.Errors["Ping"]; ok {
		return err
	}
	return nil
}

func (m *MockRuntime) find(id string) *MockContainer {
	for _, c := range m.Containers {
		if c.Summary.ID == id {
			return c
		}
	}
	return nil
}

func notFound(op, id string) error {
	return &APIError{Op: op, StatusCode: http.StatusNotFound, Message: "No such container: " + id}
}

// matchLabels applies engine label filter semantics: "key" requires the
// label to exist, "key=value" requires an exact value.
func matchLabels(labels map[string]string, filters []string) bool {
	for _, f := range filters {
		key, value, hasValue := strings.Cut(f, "=")
		got, ok := labels[key]
		if !ok || (hasValue && got != value) {
			return false
		}
	}
	return true
}
