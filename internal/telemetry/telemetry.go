package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry owns the TracerProvider and MeterProvider and their shutdown.
//
// Telemetry failures do not crash the application; they degrade gracefully.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider

	healthy  atomic.Bool
	degraded atomic.Bool
	reason   atomic.Pointer[error]
}

// Option configures New.
type Option func(*options)

type options struct {
	exporter  trace.SpanExporter
	reader    metric.Reader
	setGlobal bool
}

// WithSpanExporter replaces the OTLP exporter, for tests and custom sinks.
func WithSpanExporter(exp trace.SpanExporter) Option {
	return func(o *options) { o.exporter = exp }
}

// WithMetricReader replaces the periodic OTLP metric reader, for tests and
// custom sinks.
func WithMetricReader(r metric.Reader) Option {
	return func(o *options) { o.reader = r }
}

// WithoutGlobal keeps the provider out of the otel globals.
func WithoutGlobal() Option {
	return func(o *options) { o.setGlobal = false }
}

// New creates a Telemetry instance.
//
// If telemetry is disabled in config, the instance is a no-op. Exporter
// errors mark it degraded instead of failing.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	o := options{setGlobal: true}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Telemetry{config: cfg}
	t.healthy.Store(true)

	if !cfg.Enabled {
		return t, nil
	}

	exporter := o.exporter
	if exporter == nil {
		exp, err := newExporter(ctx, cfg)
		if err != nil {
			t.setDegraded(err)
			return t, nil
		}
		exporter = exp
	}

	reader := o.reader
	if reader == nil {
		exp, err := newMetricExporter(ctx, cfg)
		if err != nil {
			t.setDegraded(err)
			return t, nil
		}
		reader = metric.NewPeriodicReader(exp, metric.WithInterval(cfg.MetricInterval.Duration()))
	}

	t.tracerProvider = newTracerProvider(cfg, exporter)
	t.meterProvider = newMeterProvider(cfg, reader)
	if o.setGlobal {
		otel.SetTracerProvider(t.tracerProvider)
		otel.SetMeterProvider(t.meterProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}
	return t, nil
}

// Tracer returns a tracer for the given instrumentation scope.
//
// Returns the global tracer if telemetry is disabled or degraded.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter for the given instrumentation scope.
//
// Returns the global meter if telemetry is disabled or degraded.
func (t *Telemetry) Meter(name string, opts ...otelmetric.MeterOption) otelmetric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// Shutdown flushes and stops both providers, bounded by the configured
// timeout when ctx has no deadline.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.tracerProvider == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.ShutdownAfter.Duration())
		defer cancel()
	}

	var errs []error
	if err := t.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	t.healthy.Store(false)
	return errors.Join(errs...)
}

// ForceFlush immediately exports all pending spans and metrics.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil || t.tracerProvider == nil {
		return nil
	}
	if err := t.tracerProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("trace flush: %w", err)
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.ForceFlush(ctx); err != nil {
			return fmt.Errorf("metric flush: %w", err)
		}
	}
	return nil
}

// HealthStatus reports the telemetry state.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
	Reason   error
}

// Health returns the current telemetry health status.
func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Healthy: false, Degraded: true}
	}
	h := HealthStatus{
		Healthy:  t.healthy.Load(),
		Degraded: t.degraded.Load(),
	}
	if r := t.reason.Load(); r != nil {
		h.Reason = *r
	}
	return h
}

// IsEnabled returns true if telemetry is enabled and exporting.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	return t.config.Enabled && t.tracerProvider != nil && t.healthy.Load()
}

func (t *Telemetry) setDegraded(err error) {
	t.reason.Store(&err)
	t.degraded.Store(true)
}
