// Package runtime is a client for the Docker Engine HTTP API, reached over
// the engine's local Unix domain socket.
//
// # Transport
//
// Transport binds an http.Transport to a socket path. Requests use the
// placeholder host "localhost"; the dialer ignores it. Connect dials once
// and fails fast when the path is missing or is not a socket.
//
// # Client
//
// Client implements Runtime with one typed method per engine operation:
// list, create, start, kill, remove, wait, attach, and the exec family.
// Request and response bodies are fixed structs carrying the engine's own
// JSON field names. Attach and StartExec return the raw multiplexed body;
// decode it with the stream package.
//
// Errors fall into three types:
//   - ConnectionError: the socket could not be dialed
//   - ProtocolError: a response body or status could not be interpreted
//   - APIError: the engine refused the request; unwraps to a
//     github.com/containerd/errdefs class (errdefs.IsNotFound, ...)
//
// Every call runs inside an OpenTelemetry client span from the global
// tracer provider.
//
// # Mock Runtime
//
// For testing, use NewMockRuntime() to create an in-memory engine that
// tracks container state, records calls and can be configured with errors
// and canned output streams.
package runtime
