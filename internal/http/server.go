// Package http provides the logscope HTTP API. Every request runs inside its
// own logging scope, tagged with the request id, method and route.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fyrsmithlabs/logscope/internal/config"
	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/logging"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Server provides HTTP endpoints for logscope.
type Server struct {
	echo     *echo.Echo
	base     *logging.Logger
	logger   *logging.Logger
	provider logctx.Provider
	gatherer prometheus.Gatherer
	tracer   oteltrace.Tracer
	meter    metric.Meter
	metrics  *HTTPMetrics
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// AllowLevelOverride lets a request attach a level map to its scope
	// through LevelHeader, e.g. "X-Log-Levels: store=debug,*=info".
	AllowLevelOverride bool
	LevelHeader        string
	// TagHeader carries extra scope tags as key=value pairs.
	TagHeader string
}

// ConfigFromSettings builds a Config from the server section of the
// application configuration.
func ConfigFromSettings(s config.ServerConfig) *Config {
	return &Config{
		Host:               s.Host,
		Port:               s.Port,
		AllowLevelOverride: s.AllowLevelOverride,
		LevelHeader:        s.LevelHeader,
		TagHeader:          s.TagHeader,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithTracer starts a server span for every request.
func WithTracer(t oteltrace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithMeter records HTTP metrics on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Server) { s.meter = m }
}

// NewServer creates a new HTTP server. Request scopes are opened with
// provider's API, and logger consults provider.
func NewServer(logger *logging.Logger, provider logctx.Provider, cfg *Config, opts ...Option) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if provider == nil {
		provider = logctx.NoOp()
	}
	if cfg == nil {
		cfg = &Config{
			Host:        "localhost",
			Port:        9090,
			LevelHeader: "X-Log-Levels",
			TagHeader:   "X-Log-Tag",
		}
	}
	if cfg.AllowLevelOverride && cfg.LevelHeader == "" {
		return nil, fmt.Errorf("level header is required when level override is allowed")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	base := logger.WithProvider(provider)
	s := &Server{
		echo:     e,
		base:     base,
		logger:   base.Named("http"),
		provider: provider,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = NewHTTPMetrics(s.meter, s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.metrics.MetricsMiddleware())
	e.Use(s.scopeMiddleware)

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")
	v1.GET("/scope", s.handleScope)
	v1.POST("/log", s.handleLog)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// scopeMiddleware runs the rest of the chain inside a new logging scope and
// writes the access log from within it.
func (s *Server) scopeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()

		if s.tracer != nil {
			var span oteltrace.Span
			ctx, span = s.tracer.Start(ctx, req.Method+" "+normalizePath(c.Path()),
				oteltrace.WithSpanKind(oteltrace.SpanKindServer))
			defer span.End()
		}

		b := logctx.NewContext(s.provider.ContextAPI()).WithTags(s.requestTags(c))
		levels, ok, err := s.requestLevels(req)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if ok {
			b = b.WithLogLevelMap(levels)
			s.metrics.levelOverride(ctx, c.Path())
		}

		return b.Run(ctx, func(ctx context.Context) error {
			c.SetRequest(req.WithContext(ctx))

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			s.logger.Info(ctx, "http request",
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Int64("size", res.Size),
			)
			return nil
		})
	}
}

// requestTags builds the tags of a request scope.
func (s *Server) requestTags(c echo.Context) tags.Tags {
	b := tags.NewBuilder().
		AddTag("method", c.Request().Method).
		AddTag("route", normalizePath(c.Path()))
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		b.AddTag("request_id", id)
	}
	if s.config.TagHeader != "" {
		for _, h := range c.Request().Header.Values(s.config.TagHeader) {
			for k, v := range parsePairs(h) {
				b.AddTag(k, v)
			}
		}
	}
	return b.Build()
}

// requestLevels parses the level header. The "*" name sets the default
// level. ok is false when overrides are disabled or the header is absent.
func (s *Server) requestLevels(req *http.Request) (m levelmap.LevelMap, ok bool, err error) {
	if !s.config.AllowLevelOverride {
		return levelmap.LevelMap{}, false, nil
	}
	h := req.Header.Get(s.config.LevelHeader)
	if strings.TrimSpace(h) == "" {
		return levelmap.LevelMap{}, false, nil
	}

	rules := parsePairs(h)
	def := rules["*"]
	delete(rules, "*")
	m, err = levelmap.Parse(rules, def)
	if err != nil {
		return levelmap.LevelMap{}, false, fmt.Errorf("invalid %s header: %w", s.config.LevelHeader, err)
	}
	return m, true, nil
}

// parsePairs parses "a=1,b=2". Entries without "=" or with an empty key
// are ignored.
func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	name := "scoped"
	if s.provider == logctx.NoOp() {
		name = "noop"
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Provider: name})
}

// levelMapper is implemented by providers that expose their level map.
type levelMapper interface {
	LevelMap(ctx context.Context) levelmap.LevelMap
}

// handleScope returns the logging context of the request.
func (s *Server) handleScope(c echo.Context) error {
	ctx := c.Request().Context()

	resp := ScopeResponse{Tags: make(map[string][]any)}
	s.provider.Tags(ctx).Range(func(key string, values []tags.Value) bool {
		vs := make([]any, len(values))
		for i, v := range values {
			vs[i] = v.Any()
		}
		resp.Tags[key] = vs
		return true
	})
	if lm, ok := s.provider.(levelMapper); ok {
		if m := lm.LevelMap(ctx); !m.IsEmpty() {
			resp.Levels = m.String()
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleLog writes one statement through a named logger in the request
// scope and reports whether it was written.
func (s *Server) handleLog(c echo.Context) error {
	var req LogRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid log request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}

	level := zapcore.InfoLevel
	if req.Level != "" {
		l, err := levelmap.ParseLevel(req.Level)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid level %q", req.Level))
		}
		level = l
	}
	if level >= zapcore.DPanicLevel {
		return echo.NewHTTPError(http.StatusBadRequest, "level must be below dpanic")
	}

	ctx := c.Request().Context()
	logger := s.base
	if req.Logger != "" {
		logger = logger.Named(req.Logger)
	}

	fields := make([]zap.Field, 0, len(req.Fields))
	for k, v := range req.Fields {
		fields = append(fields, zap.String(k, v))
	}

	enabled := logger.Enabled(level)
	forced := s.provider.ShouldForceLogging(ctx, logger.Name(), level, enabled)
	logger.Log(ctx, level, req.Message, fields...)

	return c.JSON(http.StatusOK, LogResponse{
		Logger:  logger.Name(),
		Level:   levelmap.LevelName(level),
		Enabled: enabled,
		Forced:  forced,
		Written: enabled || forced,
	})
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
