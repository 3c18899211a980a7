package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func newTestOutput(t *testing.T) (*LogOutput, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	out := NewLogOutput(logger)
	t.Cleanup(out.Close)
	return out, &buf
}

func TestLogOutput_LogsEndedSpans(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		err     error
		want    []string
		notWant []string
	}{
		{
			name:    "success",
			id:      "abc123",
			want:    []string{"msg=\"engine call\"", "op=\"start container\"", "id=abc123", "status=Ok", "duration="},
			notWant: []string{"error="},
		},
		{
			name:    "failure without id",
			err:     errors.New("engine returned 500"),
			want:    []string{"op=\"start container\"", "status=Error", "error=\"engine returned 500\""},
			notWant: []string{"id="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf := newTestOutput(t)
			tracer := out.TracerProvider().Tracer("test")

			var opts []trace.SpanStartOption
			if tt.id != "" {
				opts = append(opts, trace.WithAttributes(ObjectIDKey.String(tt.id)))
			}
			_, span := tracer.Start(context.Background(), "start container", opts...)
			if tt.err != nil {
				span.SetStatus(codes.Error, tt.err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.End()

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
			for _, unwanted := range tt.notWant {
				if strings.Contains(output, unwanted) {
					t.Errorf("output should not contain %q, got: %s", unwanted, output)
				}
			}
		})
	}
}

func TestLogOutput_Close(t *testing.T) {
	out, buf := newTestOutput(t)
	out.Close()

	_, span := out.TracerProvider().Tracer("test").Start(context.Background(), "ping")
	span.End()
	if buf.Len() != 0 {
		t.Errorf("spans after Close should not be logged, got: %s", buf.String())
	}
}

func TestLogOutput_Nil(t *testing.T) {
	var out *LogOutput
	if out.TracerProvider() == nil {
		t.Error("nil LogOutput should fall back to the global provider")
	}
	out.Close()
}
