package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig()

	if cfg.ServiceName != "buildprobe" {
		t.Errorf("expected ServiceName 'buildprobe', got %s", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Synchronous {
		t.Error("expected Synchronous to be true")
	}
}

func TestInitTracerExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	exporter := tracetest.NewInMemoryExporter()
	tp := InitTracer(DefaultTracerConfig(), exporter)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := StartSpan(context.Background(), SpanStage)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 exported span, got %d", len(spans))
	}
	if spans[0].Name != SpanStage {
		t.Errorf("expected span %q, got %q", SpanStage, spans[0].Name)
	}
	if spans[0].InstrumentationScope.Name != InstrumentationName {
		t.Errorf("expected scope %q, got %q", InstrumentationName, spans[0].InstrumentationScope.Name)
	}
}

func TestInitTracerSamplingRates(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tests := []struct {
		rate      float64
		wantSpans int
	}{
		{1.0, 1},
		{0, 0},
	}
	for _, tc := range tests {
		exporter := tracetest.NewInMemoryExporter()
		cfg := DefaultTracerConfig()
		cfg.SampleRate = tc.rate
		tp := InitTracer(cfg, exporter)

		_, span := StartSpan(context.Background(), SpanRun)
		span.End()

		if got := len(exporter.GetSpans()); got != tc.wantSpans {
			t.Errorf("rate %v: expected %d spans, got %d", tc.rate, tc.wantSpans, got)
		}
		_ = tp.Shutdown(context.Background())
	}
}

func TestStartOperationEndSuccess(t *testing.T) {
	sr := installRecorder(t)

	_, op := StartOperation(context.Background(), SpanProcess, attribute.String(AttrTemplate, "demo"))
	op.End(nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanProcess {
		t.Errorf("expected %q, got %q", SpanProcess, s.Name())
	}
	attrs := attrMap(s.Attributes())
	if attrs[AttrTemplate] != "demo" {
		t.Errorf("expected template attribute, got %v", attrs)
	}
	if attrs[AttrStatus] != ResultSuccess {
		t.Errorf("expected status success, got %v", attrs[AttrStatus])
	}
	if s.Status().Code == codes.Error {
		t.Error("expected non-error span status")
	}
}

func TestStartOperationEndWithError(t *testing.T) {
	sr := installRecorder(t)

	_, op := StartOperation(context.Background(), SpanRun)
	op.End(errors.New("tool crashed"))

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	if len(s.Events()) == 0 {
		t.Error("expected recorded error event")
	}
	if attrMap(s.Attributes())[AttrErrorMessage] != "tool crashed" {
		t.Errorf("expected error message attribute, got %v", s.Attributes())
	}
}

func TestOperationFromContext(t *testing.T) {
	installRecorder(t)

	ctx, op := StartOperation(context.Background(), SpanInject)
	defer op.End(nil)
	ctx = WithOperation(ctx, op)

	if OperationFromContext(ctx) != op {
		t.Fatal("expected operation from context")
	}
	if OperationFromContext(context.Background()) != nil {
		t.Error("expected nil when operation not set")
	}
}

func TestOperationDuration(t *testing.T) {
	op := &Operation{StartTime: time.Now().Add(-50 * time.Millisecond)}
	d := op.Duration()
	if d < 45*time.Millisecond || d > 2*time.Second {
		t.Errorf("expected duration around 50ms, got %v", d)
	}
}

func TestSetSpanAttribute(t *testing.T) {
	sr := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "attrs")
	SetSpanAttribute(ctx, "s", "v")
	SetSpanAttribute(ctx, "i", 3)
	SetSpanAttribute(ctx, "b", true)
	SetSpanAttribute(ctx, "ss", []string{"a", "b"})
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	if attrs["s"] != "v" || attrs["i"] != int64(3) || attrs["b"] != true {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if _, ok := attrs["ignored"]; ok {
		t.Error("expected unsupported type to be ignored")
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	// Should not panic
	SetSpanAttribute(context.Background(), "key", "value")
	SetSpanError(context.Background(), errors.New("x"))
}

func TestSetSpanError(t *testing.T) {
	sr := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "err")
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	if sr.Ended()[0].Status().Code != codes.Error {
		t.Error("expected error status")
	}
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordStaging(ctx, "demo", nil)
	metrics.RecordInjection(ctx, "runner")
	metrics.RecordRun(ctx, ResultSuccess, 100*time.Millisecond)
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordStaging(ctx, "demo", nil)
	m.RecordInjection(ctx, "file")
	m.RecordRun(ctx, ResultFailure, time.Second)
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordStaging(ctx, "demo", nil)
	metrics.RecordStaging(ctx, "missing", errors.New("not found"))
	metrics.RecordRun(ctx, ResultSuccess, 250*time.Millisecond)
	metrics.RecordRun(ctx, ResultFailure, 750*time.Millisecond)
	metrics.RecordInjection(ctx, "runner")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	if got := sumOf(t, rm, "buildprobe.stagings"); got != 2 {
		t.Errorf("expected 2 stagings, got %d", got)
	}
	if got := sumOf(t, rm, "buildprobe.runs"); got != 2 {
		t.Errorf("expected 2 runs, got %d", got)
	}
	if got := sumOf(t, rm, "buildprobe.injections"); got != 1 {
		t.Errorf("expected 1 injection, got %d", got)
	}

	hist := find(t, rm, "buildprobe.run.duration").Data.(metricdata.Histogram[float64])
	var count uint64
	var total float64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		total += dp.Sum
	}
	if count != 2 || total != 1000 {
		t.Errorf("expected 2 samples totalling 1000ms, got %d / %v", count, total)
	}
}

func TestDefaultMetricsFollowsGlobalProvider(t *testing.T) {
	if DefaultMetrics() == nil {
		t.Fatal("expected default metrics")
	}
	if DefaultMetrics() != DefaultMetrics() {
		t.Error("expected the same instance on every call")
	}
}

func find(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Metrics{}
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	sum, ok := find(t, rm, name).Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is not an int64 sum", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func attrMap(kvs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func TestSetupDisabled(t *testing.T) {
	prev := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), ExportConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Error("expected providers untouched when export is off")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestSetupInstallsProviders(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	shutdown, err := Setup(context.Background(), ExportConfig{
		Endpoint: "127.0.0.1:1",
		Insecure: true,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected SDK tracer provider, got %T", otel.GetTracerProvider())
	}
	if _, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider); !ok {
		t.Errorf("expected SDK meter provider, got %T", otel.GetMeterProvider())
	}

	// Nothing listens on the endpoint; only check that shutdown returns.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestExportConfigApplyDefaults(t *testing.T) {
	cfg := ExportConfig{}
	cfg.ApplyDefaults()
	if cfg.ServiceName != "buildprobe" || cfg.SampleRate != 1.0 || cfg.Interval != 10*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Enabled() {
		t.Error("expected export off without endpoint")
	}
}

func TestResourceCarriesVersion(t *testing.T) {
	res := newResource("svc")
	v, ok := res.Set().Value("service.version")
	if !ok || v.AsString() == "" {
		t.Errorf("expected service.version on resource, got %v", res.Attributes())
	}
}
