// Package sandbox manages the lifecycle of a project's sandbox containers.
//
// Containers are never named; they are found by label. Every container
// carries <namespace>.project-name, <namespace>.container-type (its
// Purpose) and <namespace>.version.
//
// # Orchestrator
//
// Orchestrator drives a runtime.Runtime for one project:
//
//	o, err := sandbox.New(sandbox.Options{
//	    Runtime:    client,
//	    Config:     cfg,
//	    ProjectDir: "/src/myapp",
//	    Environ:    os.Environ(),
//	    Stdout:     os.Stdout,
//	    Stderr:     os.Stderr,
//	})
//
//	err = o.Build(ctx, []string{"--release"})
//
// # Ephemeral Runs
//
// RunEphemeral (used by Build, Check and Publish):
//  1. Force-removes any leftover container for the purpose
//  2. Creates a container running the command and re-locates it by label
//  3. Attaches to its output before starting it, so no output is lost
//  4. Starts it and streams output until the container's streams close
//  5. Waits for the exit status
//  6. Force-removes the container, even when an earlier step failed or the
//     context was cancelled
//
// A non-zero exit status becomes an errors.CommandFailed carrying that
// status.
//
// # Reusable Runs
//
// RunReusable keeps one long-lived dev container per project (running
// "sleep infinity") and runs each command in it as an exec.
package sandbox
