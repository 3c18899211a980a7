package sandbox

import (
	"context"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/stream"
)

// classify maps runtime and stream failures onto exit-coded errors. Errors
// that already carry an exit code and context cancellation pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var sandboxErr *errors.SandboxError
	if errors.As(err, &sandboxErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var connErr *runtime.ConnectionError
	if errors.As(err, &connErr) {
		return errors.ConnectionFailed(connErr.Socket, err)
	}
	var apiErr *runtime.APIError
	if errors.As(err, &apiErr) {
		return errors.RuntimeRejected(op, err)
	}
	var protoErr *runtime.ProtocolError
	if errors.As(err, &protoErr) {
		return errors.ProtocolError(op, err)
	}
	var tagErr *stream.InvalidTagError
	if errors.As(err, &tagErr) {
		return errors.ProtocolError(op, err)
	}
	if errors.Is(err, stream.ErrTruncated) {
		return errors.StreamTruncated(op, err)
	}
	return errors.Wrap(errors.ExitGeneralError, op, err)
}
