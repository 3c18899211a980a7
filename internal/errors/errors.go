package errors

import (
	"errors"
	"fmt"
)

// Exit codes for cargo-sandbox
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitConnectionError   = 2
	ExitProtocolError     = 3
	ExitRuntimeRejected   = 4
	ExitStreamTruncated   = 5
	ExitConfigError       = 6
	ExitContainerNotFound = 7
)

// SandboxError is the base error type for cargo-sandbox
type SandboxError struct {
	Code    int
	Message string
	Cause   error
}

func (e *SandboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SandboxError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *SandboxError) ExitCode() int {
	return e.Code
}

// New creates a new SandboxError
func New(code int, message string) *SandboxError {
	return &SandboxError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SandboxError
func Wrap(code int, message string, cause error) *SandboxError {
	return &SandboxError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ConnectionFailed returns an error for an unreachable engine socket
func ConnectionFailed(socket string, cause error) *SandboxError {
	return Wrap(ExitConnectionError, fmt.Sprintf("cannot connect to container engine at %s", socket), cause)
}

// ProtocolError returns an error for a response the engine should never have sent
func ProtocolError(op string, cause error) *SandboxError {
	return Wrap(ExitProtocolError, fmt.Sprintf("%s: unexpected engine response", op), cause)
}

// RuntimeRejected returns an error for a request the engine refused
func RuntimeRejected(op string, cause error) *SandboxError {
	return Wrap(ExitRuntimeRejected, fmt.Sprintf("%s rejected by container engine", op), cause)
}

// StreamTruncated returns an error for an output stream that ended mid-frame
func StreamTruncated(op string, cause error) *SandboxError {
	return Wrap(ExitStreamTruncated, fmt.Sprintf("%s: output stream truncated", op), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *SandboxError {
	return Wrap(ExitConfigError, message, cause)
}

// ContainerNotFound returns an error for a sandbox container that should exist but does not
func ContainerNotFound(project, purpose string) *SandboxError {
	return New(ExitContainerNotFound, fmt.Sprintf("no %s container found for project %s", purpose, project))
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *SandboxError {
	return New(ExitGeneralError, message)
}

// CommandFailed returns an error for a sandboxed command that exited non-zero.
// The process exits with the command's own status.
func CommandFailed(command string, status int) *SandboxError {
	code := status
	if code <= 0 || code > 255 {
		code = ExitGeneralError
	}
	return New(code, fmt.Sprintf("%s exited with status %d", command, status))
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var sandboxErr *SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join joins errors, discarding nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
