package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fyrsmithlabs/logscope/internal/logctx/scoped"
	"github.com/fyrsmithlabs/logscope/internal/logging"
	"github.com/fyrsmithlabs/logscope/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_MetricsMiddleware(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	m := NewHTTPMetrics(tt.Meter(httpInstrumentationName), nil)

	e := echo.New()
	e.Use(m.MetricsMiddleware())
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "hello")
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no")
	})

	for _, path := range []string{"/test", "/test", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	requests, ok := tt.MetricByName(t, "logscope.http.requests_total")
	require.True(t, ok)
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[int64]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value("status")
		byStatus[status.AsInt64()] += dp.Value
	}
	assert.Equal(t, map[int64]int64{http.StatusOK: 2, http.StatusTeapot: 1}, byStatus)

	duration, ok := tt.MetricByName(t, "logscope.http.request_duration_seconds")
	require.True(t, ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestHTTPMetrics_LevelOverrides(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	srv, err := NewServer(logging.NewNop(), scoped.New(), testConfig(), WithMeter(tt.Meter(httpInstrumentationName)))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Log-Levels", "store=debug")
	do(t, srv, req)
	do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))

	overrides, ok := tt.MetricByName(t, "logscope.http.level_overrides_total")
	require.True(t, ok)
	sum := overrides.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestHTTPMetrics_NilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.levelOverride(t.Context(), "/health")
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "/"},
		{"/health", "/health"},
		{"/api/v1/log", "/api/v1/log"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizePath(tt.input))
	}
}
