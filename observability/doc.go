// Package observability provides OpenTelemetry tracing and metrics for
// fixture processing and tool runs.
//
// Spans and instruments go through the global providers, so they are no-ops
// until an SDK is installed:
//
//	tp := observability.InitTracer(observability.DefaultTracerConfig(), exporter)
//	defer tp.Shutdown(ctx)
//
//	ctx, op := observability.StartOperation(ctx, observability.SpanStage,
//	    attribute.String(observability.AttrTemplate, name))
//	defer func() { op.End(err) }()
//
// Metrics:
//
//	mp := observability.InitMeter(observability.DefaultMeterConfig(), reader)
//	observability.DefaultMetrics().RecordRun(ctx, observability.ResultSuccess, d)
package observability
