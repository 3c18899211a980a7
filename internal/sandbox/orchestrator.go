package sandbox

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/stream"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/system"
)

// sleepForever keeps a dev container alive between execs
var sleepForever = []string{"sleep", "infinity"}

// The engine may still report an exec as running for a moment after its
// output stream closes.
var (
	execPollAttempts = 50
	execPollInterval = 100 * time.Millisecond
)

// Orchestrator manages the sandbox containers of one project.
type Orchestrator struct {
	rt      runtime.Runtime
	cfg     *config.Config
	project string
	dir     string
	environ []string
	stdout  io.Writer
	stderr  io.Writer
	version string
}

// New creates an Orchestrator for the project in opts.ProjectDir.
func New(opts Options) (*Orchestrator, error) {
	if opts.Runtime == nil {
		return nil, errors.ValidationError("sandbox: runtime is required")
	}
	if opts.Config == nil {
		return nil, errors.ValidationError("sandbox: config is required")
	}
	if !filepath.IsAbs(opts.ProjectDir) {
		return nil, errors.ValidationError(fmt.Sprintf("project directory must be absolute (got %q)", opts.ProjectDir))
	}

	name := opts.ProjectName
	if name == "" {
		var err error
		if name, err = config.ProjectName(opts.ProjectDir); err != nil {
			return nil, err
		}
	}

	o := &Orchestrator{
		rt:      opts.Runtime,
		cfg:     opts.Config,
		project: name,
		dir:     filepath.Clean(opts.ProjectDir),
		environ: opts.Environ,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		version: opts.Version,
	}
	if o.stdout == nil {
		o.stdout = io.Discard
	}
	if o.stderr == nil {
		o.stderr = io.Discard
	}
	if o.version == "" {
		o.version = "dev"
	}
	return o, nil
}

// Project returns the project name used in labels and paths
func (o *Orchestrator) Project() string {
	return o.project
}

// labelFilters returns the label filters selecting this project's
// containers, narrowed to purpose when it is set.
func (o *Orchestrator) labelFilters(purpose Purpose) map[string][]string {
	labels := []string{o.cfg.Label("project-name") + "=" + o.project}
	if purpose != "" {
		labels = append(labels, o.cfg.Label("container-type")+"="+string(purpose))
	}
	return map[string][]string{"label": labels}
}

// Locate returns the container for purpose, or nil when there is none.
// Stopped containers are included. When several match, the first in the
// engine's listing order (most recently created) wins.
func (o *Orchestrator) Locate(ctx context.Context, purpose Purpose) (*runtime.ContainerSummary, error) {
	containers, err := o.rt.ListContainers(ctx, runtime.ListOptions{
		All:     true,
		Filters: o.labelFilters(purpose),
	})
	if err != nil {
		return nil, classify("list containers", err)
	}
	if len(containers) == 0 {
		return nil, nil
	}
	if len(containers) > 1 {
		ids := make([]string, len(containers))
		for i := range containers {
			ids[i] = containers[i].ShortID()
		}
		logging.Debug("multiple sandbox containers match, using the first",
			"project", o.project, "purpose", purpose, "ids", ids)
	}
	c := containers[0]
	return &c, nil
}

// List returns every sandbox container of the project, all purposes
func (o *Orchestrator) List(ctx context.Context) ([]runtime.ContainerSummary, error) {
	containers, err := o.rt.ListContainers(ctx, runtime.ListOptions{
		All:     true,
		Filters: o.labelFilters(""),
	})
	if err != nil {
		return nil, classify("list containers", err)
	}
	return containers, nil
}

// spec builds the create request for a purpose
func (o *Orchestrator) spec(purpose Purpose, cmd []string, networkDisabled bool) (runtime.ContainerSpec, error) {
	workdir, err := config.ContainerProjectDir(o.cfg.ContainerHome(), o.project)
	if err != nil {
		return runtime.ContainerSpec{}, errors.ValidationError(err.Error())
	}

	return runtime.ContainerSpec{
		Image:        o.cfg.Image(string(purpose)),
		Cmd:          cmd,
		User:         o.cfg.User,
		WorkingDir:   workdir,
		Env:          system.PassthroughEnv(o.cfg.EnvPassthrough, o.environ),
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
		Labels: map[string]string{
			o.cfg.Label("project-name"):   o.project,
			o.cfg.Label("container-type"): string(purpose),
			o.cfg.Label("version"):        o.version,
		},
		NetworkDisabled: networkDisabled,
		HostConfig: runtime.HostConfig{
			Binds: []string{fmt.Sprintf("%s/:%s:cached", strings.TrimSuffix(o.dir, "/"), workdir)},
		},
	}, nil
}

// Create creates a container for purpose running cmd and returns it as
// the engine lists it.
func (o *Orchestrator) Create(ctx context.Context, purpose Purpose, cmd []string, networkDisabled bool) (*runtime.ContainerSummary, error) {
	spec, err := o.spec(purpose, cmd, networkDisabled)
	if err != nil {
		return nil, err
	}

	logging.Debug("creating container", "project", o.project, "purpose", purpose, "image", spec.Image)
	resp, err := o.rt.CreateContainer(ctx, spec)
	if err != nil {
		return nil, classify("create container", err)
	}
	for _, w := range resp.Warnings {
		logging.UserWarning("%s", w)
	}

	c, err := o.Locate(ctx, purpose)
	if err == nil && c == nil {
		err = errors.ProtocolError("create container",
			fmt.Errorf("container %s was created but is not listed", resp.ID))
	}
	if err != nil {
		o.discard(ctx, resp.ID)
		return nil, err
	}
	if c.ID != resp.ID {
		logging.Debug("located container differs from created one", "created", resp.ID, "located", c.ID)
	}
	return c, nil
}

// discard force-removes a container the caller could not take ownership
// of. Failures are logged only.
func (o *Orchestrator) discard(ctx context.Context, id string) {
	err := o.rt.RemoveContainer(context.WithoutCancel(ctx), id, runtime.RemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil {
		logging.Warn("failed to remove container", "id", id, "error", err)
		return
	}
	logging.Debug("removed unlisted container", "id", id)
}

// EnsureStarted starts c unless it is already running. Containers in a
// transitional state are left alone.
func (o *Orchestrator) EnsureStarted(ctx context.Context, c *runtime.ContainerSummary) error {
	switch c.State {
	case runtime.StateCreated, runtime.StateDead, runtime.StateExited, runtime.StatePaused:
		logging.Debug("starting container", "id", c.ShortID(), "state", c.State)
		if err := o.rt.StartContainer(ctx, c.ID); err != nil {
			return classify("start container", err)
		}
	case runtime.StateRunning:
		logging.Debug("container already running", "id", c.ShortID())
	default:
		logging.UserWarning("Container %s is in state %q, not starting it", c.ShortID(), c.State)
	}
	return nil
}

// Remove force-removes every container of the project with purpose.
// Having nothing to remove is not an error.
func (o *Orchestrator) Remove(ctx context.Context, purpose Purpose) (int, error) {
	containers, err := o.rt.ListContainers(ctx, runtime.ListOptions{
		All:     true,
		Filters: o.labelFilters(purpose),
	})
	if err != nil {
		return 0, classify("list containers", err)
	}
	return o.removeAll(ctx, containers)
}

// RemoveAll force-removes every sandbox container of the project
func (o *Orchestrator) RemoveAll(ctx context.Context) (int, error) {
	containers, err := o.List(ctx)
	if err != nil {
		return 0, err
	}
	return o.removeAll(ctx, containers)
}

func (o *Orchestrator) removeAll(ctx context.Context, containers []runtime.ContainerSummary) (int, error) {
	removed := 0
	var errs []error
	for i := range containers {
		c := &containers[i]
		logging.Debug("removing container", "id", c.ShortID(), "state", c.State)
		if err := o.rt.RemoveContainer(ctx, c.ID, runtime.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
			errs = append(errs, classify("remove container", err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Stop kills the project's dev container
func (o *Orchestrator) Stop(ctx context.Context) error {
	c, err := o.Locate(ctx, PurposeDev)
	if err != nil {
		return err
	}
	if c == nil {
		return errors.ContainerNotFound(o.project, string(PurposeDev))
	}
	if c.State != runtime.StateRunning {
		logging.Debug("dev container not running", "id", c.ShortID(), "state", c.State)
		return nil
	}
	if err := o.rt.KillContainer(ctx, c.ID); err != nil {
		return classify("kill container", err)
	}
	return nil
}

// RunEphemeral runs cmd in a fresh container for purpose and removes the
// container afterwards. Output is streamed to the orchestrator's sinks as
// it arrives. A non-zero exit status is returned as a CommandFailed error.
func (o *Orchestrator) RunEphemeral(ctx context.Context, purpose Purpose, cmd []string, networkDisabled bool) (err error) {
	if _, err := o.Remove(ctx, purpose); err != nil {
		return err
	}

	c, err := o.Create(ctx, purpose, cmd, networkDisabled)
	if err != nil {
		return err
	}

	defer func() {
		// Removal must happen even when ctx is already cancelled.
		rmCtx := context.WithoutCancel(ctx)
		rmErr := o.rt.RemoveContainer(rmCtx, c.ID, runtime.RemoveOptions{Force: true, RemoveVolumes: true})
		if rmErr == nil {
			logging.Debug("removed container", "id", c.ShortID())
			return
		}
		if err != nil {
			logging.Warn("failed to remove container", "id", c.ShortID(), "error", rmErr)
			return
		}
		err = classify("remove container", rmErr)
	}()

	return o.attachAndRun(ctx, c, cmd)
}

// attachAndRun attaches to c, starts it, streams its output until the
// streams close and returns its exit status as an error.
func (o *Orchestrator) attachAndRun(ctx context.Context, c *runtime.ContainerSummary, cmd []string) error {
	attachCtx, cancelAttach := context.WithCancel(ctx)
	defer cancelAttach()

	attached := make(chan error, 1)
	done := make(chan error, 1)
	go func() {
		logging.Debug("attaching", "id", c.ShortID())
		body, err := o.rt.Attach(attachCtx, c.ID)
		attached <- err
		if err != nil {
			done <- err
			return
		}
		defer body.Close()
		done <- stream.Copy(o.stdout, o.stderr, body)
	}()

	if err := <-attached; err != nil {
		<-done
		return classify("attach container", err)
	}

	if err := o.EnsureStarted(ctx, c); err != nil {
		cancelAttach()
		<-done
		return err
	}

	if err := <-done; err != nil {
		return classify("stream output", err)
	}
	logging.Debug("output stream closed", "id", c.ShortID())

	resp, err := o.rt.WaitContainer(ctx, c.ID)
	if err != nil {
		return classify("wait container", err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return errors.Wrap(errors.ExitGeneralError, "wait container", fmt.Errorf("%s", resp.Error.Message))
	}
	if resp.StatusCode != 0 {
		return errors.CommandFailed(DisplayCommand(cmd), int(resp.StatusCode))
	}
	return nil
}

// RunReusable runs cmd in the project's long-lived dev container,
// creating and starting it as needed. The container is never removed.
func (o *Orchestrator) RunReusable(ctx context.Context, cmd []string) error {
	c, err := o.Locate(ctx, PurposeDev)
	if err != nil {
		return err
	}
	if c == nil {
		logging.Debug("no dev container, creating one", "project", o.project)
		if c, err = o.Create(ctx, PurposeDev, sleepForever, o.cfg.NetworkDisabled); err != nil {
			return err
		}
	}
	if err := o.EnsureStarted(ctx, c); err != nil {
		return err
	}

	workdir, err := config.ContainerProjectDir(o.cfg.ContainerHome(), o.project)
	if err != nil {
		return errors.ValidationError(err.Error())
	}
	execID, err := o.rt.CreateExec(ctx, c.ID, runtime.ExecSpec{
		Cmd:          cmd,
		Env:          system.PassthroughEnv(o.cfg.EnvPassthrough, o.environ),
		AttachStdout: true,
		AttachStderr: true,
		WorkingDir:   workdir,
		User:         o.cfg.User,
	})
	if err != nil {
		return classify("create exec", err)
	}

	body, err := o.rt.StartExec(ctx, execID, runtime.ExecStartOptions{})
	if err != nil {
		return classify("start exec", err)
	}
	copyErr := stream.Copy(o.stdout, o.stderr, body)
	body.Close()
	if copyErr != nil {
		return classify("stream output", copyErr)
	}

	inspect, err := o.awaitExec(ctx, execID)
	if err != nil {
		return err
	}
	if inspect.ExitCode != 0 {
		return errors.CommandFailed(DisplayCommand(cmd), inspect.ExitCode)
	}
	return nil
}

// awaitExec inspects an exec until the engine reports it finished
func (o *Orchestrator) awaitExec(ctx context.Context, execID string) (*runtime.ExecInspect, error) {
	for attempt := 1; ; attempt++ {
		inspect, err := o.rt.InspectExec(ctx, execID)
		if err != nil {
			return nil, classify("inspect exec", err)
		}
		if !inspect.Running {
			return inspect, nil
		}
		if attempt >= execPollAttempts {
			return nil, errors.Wrap(errors.ExitGeneralError, "inspect exec",
				fmt.Errorf("exec %s still running after its output closed", execID))
		}
		logging.Debug("exec still running, polling", "exec", execID, "attempt", attempt)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(execPollInterval):
		}
	}
}
