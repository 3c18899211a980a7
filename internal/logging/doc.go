// Package logging provides logging utilities for cargo-sandbox.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted status lines for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("creating container", "project", project, "purpose", purpose)
//	logging.Warn("container in unexpected state", "id", id, "state", state)
//
// # User Output
//
// User-facing messages are prefixed with a styled status glyph:
//
//	logging.UserInfo("Running %s", command)
//	logging.UserSuccess("Removed %d containers", n)
//	logging.UserWarning("Container %s is %s, leaving it alone", id, state)
//	logging.UserError("cleanup failed: %v", err)
//
// User output goes to UserOutput (stderr by default). Standard output is
// reserved for the sandboxed command's own stdout.
package logging
