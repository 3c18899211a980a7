package runtime

import (
	"context"
	"io"
)

// ContainerState is the engine-reported state of a container
type ContainerState string

const (
	StateCreated    ContainerState = "created"
	StateRunning    ContainerState = "running"
	StatePaused     ContainerState = "paused"
	StateRestarting ContainerState = "restarting"
	StateRemoving   ContainerState = "removing"
	StateExited     ContainerState = "exited"
	StateDead       ContainerState = "dead"
	StateUnknown    ContainerState = "unknown"
)

// Runtime is the set of engine operations the sandbox orchestrator uses.
// All methods are safe for concurrent use; each call runs its own HTTP
// exchange.
type Runtime interface {
	// ListContainers returns containers matching opts, most recent first
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerSummary, error)

	// CreateContainer creates a container but does not start it
	CreateContainer(ctx context.Context, spec ContainerSpec) (*CreateResponse, error)

	// StartContainer starts a container. Starting a running container is not an error.
	StartContainer(ctx context.Context, id string) error

	// KillContainer sends SIGKILL to a running container
	KillContainer(ctx context.Context, id string) error

	// RemoveContainer removes a container
	RemoveContainer(ctx context.Context, id string, opts RemoveOptions) error

	// WaitContainer blocks until the container exits and returns its status
	WaitContainer(ctx context.Context, id string) (*WaitResponse, error)

	// Attach opens the container's multiplexed output stream. The returned
	// body stays open until the container's streams close.
	Attach(ctx context.Context, id string) (io.ReadCloser, error)

	// CreateExec prepares a command to run in a running container and
	// returns the exec ID
	CreateExec(ctx context.Context, id string, spec ExecSpec) (string, error)

	// StartExec starts a prepared exec and returns its multiplexed output stream
	StartExec(ctx context.Context, execID string, opts ExecStartOptions) (io.ReadCloser, error)

	// InspectExec returns the state of an exec, including its exit code once finished
	InspectExec(ctx context.Context, execID string) (*ExecInspect, error)

	// Ping checks that the engine answers on its socket
	Ping(ctx context.Context) error
}
