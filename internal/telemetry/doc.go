// Package telemetry turns the runtime client's OpenTelemetry spans into
// debug log lines.
//
// Every Engine API call runs inside a client span. Without a tracer
// provider those spans go to the global no-op provider; with -v the CLI
// installs a LogOutput so each call is logged with its operation, object
// ID, duration and status:
//
//	out := telemetry.NewLogOutput(logging.With("component", "runtime"))
//	defer out.Close()
//	client, err := runtime.NewClient(socket, runtime.WithTracerProvider(out.TracerProvider()))
package telemetry
