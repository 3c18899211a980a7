package cmd

import (
	"path/filepath"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/sandbox"
)

// resolvedSocket returns the engine socket for this invocation
func resolvedSocket() string {
	return config.ResolveSocket(socketPath, app.Default.Env, app.Default.Config)
}

// getRuntime connects the app to the engine and returns its runtime.
func getRuntime() (runtime.Runtime, error) {
	a := app.Default
	if err := a.Connect(resolvedSocket()); err != nil {
		return nil, errors.ConnectionFailed(resolvedSocket(), err)
	}
	return a.Runtime, nil
}

// resolveProjectDir returns the absolute project directory
func resolveProjectDir() (string, error) {
	dir := projectDir
	if dir == "" {
		wd, err := app.Default.Env.Getwd()
		if err != nil {
			return "", errors.Wrap(errors.ExitGeneralError, "cannot determine current directory", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "invalid project directory", err)
	}
	if abs, err = config.HostProjectDir(abs); err != nil {
		return "", err
	}
	if !app.Default.FS.IsDir(abs) {
		return "", errors.ValidationError("project directory does not exist: " + abs)
	}
	return abs, nil
}

// newOrchestrator builds the orchestrator for the current project.
func newOrchestrator() (*sandbox.Orchestrator, error) {
	rt, err := getRuntime()
	if err != nil {
		return nil, err
	}
	dir, err := resolveProjectDir()
	if err != nil {
		return nil, err
	}

	a := app.Default
	return sandbox.New(sandbox.Options{
		Runtime:    rt,
		Config:     a.Config,
		ProjectDir: dir,
		Environ:    a.Env.Environ(),
		Stdout:     a.Stdout,
		Stderr:     a.Stderr,
		Version:    Version,
	})
}
