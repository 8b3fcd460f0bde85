package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/buildprobe/logger"
)

// ExportConfig configures OTLP/HTTP export of spans and metrics.
// Export is off while Endpoint is empty.
type ExportConfig struct {
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP (for local collectors).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// ServiceName is reported as service.name.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// SampleRate is the trace sampling rate (0.0 to 1.0). Zero means 1.0.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *ExportConfig) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "buildprobe"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 10 * time.Second
	}
}

// Enabled reports whether an endpoint is configured.
func (c ExportConfig) Enabled() bool { return c.Endpoint != "" }

// NewTraceExporter creates an OTLP/HTTP span exporter.
func NewTraceExporter(ctx context.Context, cfg ExportConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return exporter, nil
}

// NewMetricReader creates a periodic reader exporting over OTLP/HTTP.
func NewMetricReader(ctx context.Context, cfg ExportConfig) (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	return sdkmetric.NewPeriodicReader(exporter, readerOpts...), nil
}

// Setup installs global tracer and meter providers exporting to cfg.Endpoint.
// When export is off it installs nothing and the returned shutdown is a no-op.
// Shutdown flushes pending spans and metrics.
func Setup(ctx context.Context, cfg ExportConfig) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled() {
		return noop, nil
	}
	cfg.ApplyDefaults()

	spans, err := NewTraceExporter(ctx, cfg)
	if err != nil {
		return noop, err
	}
	reader, err := NewMetricReader(ctx, cfg)
	if err != nil {
		return noop, err
	}

	tp := InitTracer(TracerConfig{
		ServiceName: cfg.ServiceName,
		SampleRate:  cfg.SampleRate,
	}, spans)
	mp := InitMeter(MeterConfig{ServiceName: cfg.ServiceName}, reader)

	logger.Info("telemetry export enabled", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
