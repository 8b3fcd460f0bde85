package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Result attribute values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is reported as service.name.
	ServiceName string
}

// DefaultMeterConfig returns the default meter configuration.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{ServiceName: "buildprobe"}
}

// InitMeter installs a global MeterProvider that collects through reader.
// Returns a MeterProvider that should be shut down when the test binary exits.
func InitMeter(config MeterConfig, reader sdkmetric.Reader) *sdkmetric.MeterProvider {
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(newResource(config.ServiceName)),
	)
	otel.SetMeterProvider(mp)
	return mp
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name, metric.WithInstrumentationVersion(instrumentationVersion()))
}

// Metrics holds the buildprobe instruments. A nil *Metrics records nothing.
type Metrics struct {
	stagings    metric.Int64Counter
	injections  metric.Int64Counter
	runs        metric.Int64Counter
	runDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stagings, err := meter.Int64Counter("buildprobe.stagings",
		metric.WithDescription("Templates staged into workspaces"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buildprobe.stagings counter: %w", err)
	}

	injections, err := meter.Int64Counter("buildprobe.injections",
		metric.WithDescription("Fields assigned by the injector"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buildprobe.injections counter: %w", err)
	}

	runs, err := meter.Int64Counter("buildprobe.runs",
		metric.WithDescription("Build tool invocations by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buildprobe.runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("buildprobe.run.duration",
		metric.WithDescription("Duration of build tool invocations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating buildprobe.run.duration histogram: %w", err)
	}

	return &Metrics{
		stagings:    stagings,
		injections:  injections,
		runs:        runs,
		runDuration: runDuration,
	}, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns instruments bound to the global meter provider.
// They follow whatever provider is installed later through otel.SetMeterProvider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(Meter(InstrumentationName))
		if err == nil {
			defaultMetrics = m
		}
	})
	return defaultMetrics
}

// RecordStaging counts one staging attempt for template.
func (m *Metrics) RecordStaging(ctx context.Context, template string, err error) {
	if m == nil {
		return
	}
	m.stagings.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("result", resultOf(err)),
	))
}

// RecordInjection counts one assigned field.
func (m *Metrics) RecordInjection(ctx context.Context, marker string) {
	if m == nil {
		return
	}
	m.injections.Add(ctx, 1, metric.WithAttributes(attribute.String("marker", marker)))
}

// RecordRun counts a tool invocation and records its duration in milliseconds.
func (m *Metrics) RecordRun(ctx context.Context, result string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("result", result))
	m.runs.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
