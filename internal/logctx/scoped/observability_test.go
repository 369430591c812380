package scoped

import (
	"context"
	"testing"

	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMetrics_CountScopes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")
	p := New(WithMetrics(m))
	api := p.ContextAPI()

	outer, outerScope := api.WithNewScope(context.Background())
	_, innerScope := api.WithNewScope(outer)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OpenScopes))

	assert.Error(t, outerScope.Close())
	require.NoError(t, innerScope.Close())
	require.NoError(t, outerScope.Close())
	assert.Error(t, outerScope.Close())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScopesOpened))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScopesClosed))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenScopes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScopeErrors.WithLabelValues(errorKindOutOfOrder)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScopeErrors.WithLabelValues(errorKindDoubleClose)))

	count, err := testutil.GatherAndCount(reg, "test_scopes_opened_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.opened()
	m.closed()
	m.rejected(errorKindDoubleClose)
}

func TestTracing_AddsScopeEvents(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	p := New(WithTracing(true))

	ctx, span := tracer.Start(context.Background(), "request")
	err := logctx.Run(ctx, p.ContextAPI(), func(ctx context.Context) error {
		return logctx.Run(ctx, p.ContextAPI(), func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	events := spans[0].Events()
	require.Len(t, events, 4)
	assert.Equal(t, eventScopeOpen, events[0].Name)
	assert.Equal(t, eventScopeOpen, events[1].Name)
	assert.Equal(t, eventScopeClose, events[2].Name)
	assert.Equal(t, eventScopeClose, events[3].Name)

	assert.Contains(t, events[1].Attributes, attribute.Int(attrScopeDepth, 2))
	assert.Equal(t, events[1].Attributes, events[2].Attributes, "inner open and close describe the same scope")
}

func TestTracing_DisabledByDefault(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	err := logctx.Run(ctx, New().ContextAPI(), func(context.Context) error { return nil })
	require.NoError(t, err)
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Empty(t, recorder.Ended()[0].Events())
}
