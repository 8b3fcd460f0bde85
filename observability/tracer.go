package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/version"
)

// InstrumentationName names the tracer and meter used by buildprobe.
const InstrumentationName = "github.com/kbukum/buildprobe"

// TracerConfig configures the OpenTelemetry tracer.
type TracerConfig struct {
	// ServiceName is reported as service.name.
	ServiceName string
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64
	// Synchronous exports each span as it ends instead of batching.
	Synchronous bool
}

// DefaultTracerConfig samples everything and exports synchronously,
// which suits short-lived test binaries.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		ServiceName: "buildprobe",
		SampleRate:  1.0,
		Synchronous: true,
	}
}

// InitTracer installs a global TracerProvider that exports to exporter.
// Returns a TracerProvider that should be shut down when the test binary exits.
func InitTracer(config TracerConfig, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	var sampler sdktrace.Sampler
	switch {
	case config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SampleRate)
	}

	export := sdktrace.WithBatcher(exporter)
	if config.Synchronous {
		export = sdktrace.WithSyncer(exporter)
	}

	tp := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(newResource(config.ServiceName)),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Debug("tracer initialized", logger.Fields(
		"service", config.ServiceName,
		"sample_rate", config.SampleRate,
	))

	return tp
}

// newResource creates an OpenTelemetry resource with service metadata.
func newResource(serviceName string) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version.GetShortVersion()),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name, trace.WithInstrumentationVersion(instrumentationVersion()))
}

var instrumentationVersion = sync.OnceValue(func() string {
	return version.GetVersionInfo().Version
})

// StartSpan starts a new span using the buildprobe tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(InstrumentationName).Start(ctx, name, opts...)
}

// SpanFromContext returns the span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanAttribute sets an attribute on the current span in context.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case []string:
		span.SetAttributes(attribute.StringSlice(key, v))
	}
}

// SetSpanError records an error on the current span in context and marks it failed.
func SetSpanError(ctx context.Context, err error) {
	span := SpanFromContext(ctx)
	if span != nil && span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Span names.
const (
	SpanProcess = "buildprobe.process"
	SpanStage   = "buildprobe.stage"
	SpanInject  = "buildprobe.inject"
	SpanRun     = "buildprobe.run"
)

// Attribute keys.
const (
	AttrTemplate     = "buildprobe.template"
	AttrFixture      = "buildprobe.fixture"
	AttrSession      = "buildprobe.session"
	AttrDialect      = "buildprobe.dialect"
	AttrVersion      = "buildprobe.tool.version"
	AttrTasks        = "buildprobe.tasks"
	AttrExitCode     = "buildprobe.exit_code"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorMessage = "error.message"
)
