// internal/logctx/scoped/metrics.go
package scoped

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds reported in the scope_errors_total metric.
const (
	errorKindDoubleClose = "double_close"
	errorKindOutOfOrder  = "out_of_order"
)

// Metrics counts scope activity. A nil *Metrics records nothing.
type Metrics struct {
	// ScopesOpened counts scopes opened.
	ScopesOpened prometheus.Counter

	// ScopesClosed counts scopes closed successfully.
	ScopesClosed prometheus.Counter

	// ScopeErrors counts rejected closes.
	// Labels: kind (double_close, out_of_order)
	ScopeErrors *prometheus.CounterVec

	// OpenScopes is the number of scopes currently open.
	OpenScopes prometheus.Gauge
}

// NewMetrics registers scope metrics with reg under namespace.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "logscope"
	}
	factory := promauto.With(reg)
	return &Metrics{
		ScopesOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scopes_opened_total",
			Help:      "Total number of logging scopes opened",
		}),
		ScopesClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scopes_closed_total",
			Help:      "Total number of logging scopes closed",
		}),
		ScopeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_errors_total",
			Help:      "Total number of rejected logging scope closes by kind",
		}, []string{"kind"}),
		OpenScopes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_scopes",
			Help:      "Number of logging scopes currently open",
		}),
	}
}

func (m *Metrics) opened() {
	if m == nil {
		return
	}
	m.ScopesOpened.Inc()
	m.OpenScopes.Inc()
}

func (m *Metrics) closed() {
	if m == nil {
		return
	}
	m.ScopesClosed.Inc()
	m.OpenScopes.Dec()
}

func (m *Metrics) rejected(kind string) {
	if m == nil {
		return
	}
	m.ScopeErrors.WithLabelValues(kind).Inc()
}
