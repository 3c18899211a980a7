package sandbox

import (
	"context"
	"slices"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
)

const redacted = "REDACTED"

// CargoCommand returns the argv for `cargo <subcommand>` with the
// configured default args followed by args.
func (o *Orchestrator) CargoCommand(subcommand string, args []string) ([]string, error) {
	defaults, err := o.cfg.CargoDefaultArgs()
	if err != nil {
		return nil, errors.ConfigError("invalid default_args", err)
	}
	cmd := make([]string, 0, 2+len(defaults)+len(args))
	cmd = append(cmd, "cargo", subcommand)
	cmd = append(cmd, defaults...)
	cmd = append(cmd, args...)
	return cmd, nil
}

// Build runs cargo build in an ephemeral build container
func (o *Orchestrator) Build(ctx context.Context, args []string) error {
	return o.cargo(ctx, "build", args)
}

// Check runs cargo check in an ephemeral build container
func (o *Orchestrator) Check(ctx context.Context, args []string) error {
	return o.cargo(ctx, "check", args)
}

func (o *Orchestrator) cargo(ctx context.Context, subcommand string, args []string) error {
	cmd, err := o.CargoCommand(subcommand, args)
	if err != nil {
		return err
	}
	logging.UserInfo("Running %s in %s sandbox", DisplayCommand(cmd), PurposeBuild)
	return o.RunEphemeral(ctx, PurposeBuild, cmd, o.cfg.NetworkDisabled)
}

// Publish verifies and publishes the crate. Unless args contain
// --no-verify, `cargo publish --dry-run` runs first in a build container.
// Unless args contain --dry-run, `cargo publish --no-verify --token` then
// runs in a publish container, which always has network access.
func (o *Orchestrator) Publish(ctx context.Context, token string, args []string) error {
	verify := !slices.Contains(args, "--no-verify")
	upload := !slices.Contains(args, "--dry-run")

	if upload && token == "" {
		return errors.ValidationError("publishing requires a registry token (--token or CARGO_REGISTRY_TOKEN)")
	}

	if verify {
		verifyArgs := args
		if upload {
			verifyArgs = append([]string{"--dry-run"}, args...)
		}
		cmd, err := o.CargoCommand("publish", verifyArgs)
		if err != nil {
			return err
		}
		logging.UserInfo("Verifying package: %s", DisplayCommand(cmd))
		if err := o.RunEphemeral(ctx, PurposeBuild, cmd, o.cfg.NetworkDisabled); err != nil {
			return err
		}
	}

	if !upload {
		logging.UserSuccess("Dry run complete, nothing published")
		return nil
	}

	publishArgs := []string{"--token", token}
	if verify {
		publishArgs = append([]string{"--no-verify"}, publishArgs...)
	}
	publishArgs = append(publishArgs, args...)
	cmd, err := o.CargoCommand("publish", publishArgs)
	if err != nil {
		return err
	}
	logging.UserInfo("Publishing: %s", DisplayCommand(cmd))
	if err := o.RunEphemeral(ctx, PurposePublish, cmd, false); err != nil {
		return err
	}
	logging.UserSuccess("Published %s", o.project)
	return nil
}

// DisplayCommand renders argv as a shell-quoted string with the values of
// --token arguments replaced, for logs and error messages.
func DisplayCommand(argv []string) string {
	shown := make([]string, len(argv))
	copy(shown, argv)
	for i := 0; i < len(shown); i++ {
		switch {
		case shown[i] == "--token" && i+1 < len(shown):
			shown[i+1] = redacted
			i++
		case strings.HasPrefix(shown[i], "--token="):
			shown[i] = "--token=" + redacted
		}
	}
	return shellquote.Join(shown...)
}
