// Package telemetry provides OpenTelemetry tracing and metrics for logscope.
//
// # Overview
//
// Scope open and close events are recorded on the active span when scope
// tracing is enabled. This package builds the TracerProvider those spans come
// from, and the MeterProvider behind the HTTP server metrics, and exports
// both over OTLP (gRPC or HTTP/protobuf).
//
// # Usage
//
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
//	ctx, span := tel.Tracer("logscope.demo").Start(ctx, "request")
//	defer span.End()
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc
//	  sampling_rate: 1.0
//	  metric_interval: 15s
//
// # Error Handling
//
// Exporter failures do not fail startup. The instance is marked degraded and
// falls back to the global (no-op) tracer provider.
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
