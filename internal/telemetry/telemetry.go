package telemetry

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ObjectIDKey is the span attribute naming the container or exec a call targets
const ObjectIDKey = attribute.Key("engine.object_id")

// LogOutput owns a tracer provider that logs every ended span
type LogOutput struct {
	provider *sdktrace.TracerProvider
}

// NewLogOutput creates a LogOutput writing to logger at debug level
func NewLogOutput(logger *slog.Logger) *LogOutput {
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&logSpanProcessor{log: logger}))
	return &LogOutput{provider: provider}
}

// TracerProvider returns the provider to hand to the runtime client.
// A nil LogOutput yields the global provider.
func (o *LogOutput) TracerProvider() trace.TracerProvider {
	if o == nil || o.provider == nil {
		return otel.GetTracerProvider()
	}
	return o.provider
}

// Close shuts the provider down
func (o *LogOutput) Close() {
	if o == nil || o.provider == nil {
		return
	}
	_ = o.provider.Shutdown(context.Background())
}

type logSpanProcessor struct {
	log *slog.Logger
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if p == nil || p.log == nil {
		return
	}

	args := []any{"op", span.Name()}
	if id := attributeValue(span.Attributes(), ObjectIDKey); id != "" {
		args = append(args, "id", id)
	}
	args = append(args, "duration", span.EndTime().Sub(span.StartTime()))

	status := span.Status()
	args = append(args, "status", status.Code.String())
	if status.Code == codes.Error {
		args = append(args, "error", strings.TrimSpace(status.Description))
	}
	p.log.Debug("engine call", args...)
}

func (p *logSpanProcessor) Shutdown(context.Context) error {
	return nil
}

func (p *logSpanProcessor) ForceFlush(context.Context) error {
	return nil
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value.AsString()
		}
	}
	return ""
}
