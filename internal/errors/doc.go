// Package errors provides typed errors with exit codes for cargo-sandbox.
//
// # Error Types
//
// SandboxError is the base error type that wraps an error with an exit code:
//
//	type SandboxError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess           = 0  // Success
//	ExitGeneralError      = 1  // General/unknown errors
//	ExitConnectionError   = 2  // Engine socket missing, not a socket, or refused
//	ExitProtocolError     = 3  // Malformed response or invalid stream frame
//	ExitRuntimeRejected   = 4  // Engine returned a non-2xx status
//	ExitStreamTruncated   = 5  // Attach/exec stream closed mid-frame
//	ExitConfigError       = 6  // Configuration error
//	ExitContainerNotFound = 7  // Sandbox container missing
//
// A sandboxed command that exits non-zero is reported with CommandFailed,
// whose code is the command's own exit status.
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
