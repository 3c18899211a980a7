package sandbox

import (
	"io"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
)

// Purpose distinguishes the sandbox containers of one project. It is
// stored in the container-type label.
type Purpose string

const (
	// PurposeBuild runs build, check and publish verification
	PurposeBuild Purpose = "build"

	// PurposePublish runs the final cargo publish with the registry token
	PurposePublish Purpose = "publish"

	// PurposeDev is the long-lived container that exec reuses
	PurposeDev Purpose = "dev"
)

// Purposes lists every purpose cargo-sandbox creates containers for
var Purposes = []Purpose{PurposeBuild, PurposePublish, PurposeDev}

// Options holds everything an Orchestrator needs. Nothing is read from
// process globals.
type Options struct {
	// Runtime is the engine client (required)
	Runtime runtime.Runtime

	// Config supplies images, user, labels and passthrough rules (required)
	Config *config.Config

	// ProjectDir is the absolute host path bind-mounted into sandboxes (required)
	ProjectDir string

	// ProjectName overrides the name derived from ProjectDir
	ProjectName string

	// Environ is the host environment the passthrough allowlist filters
	Environ []string

	// Stdout and Stderr receive the containers' demultiplexed output
	Stdout io.Writer
	Stderr io.Writer

	// Version is written to the version label
	Version string
}
