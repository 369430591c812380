// Package app assembles the logscope components from configuration: the
// logging context provider, the logger consulting it, scope metrics, and
// telemetry.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/logscope/internal/config"
	httpserver "github.com/fyrsmithlabs/logscope/internal/http"
	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/logctx/scoped"
	"github.com/fyrsmithlabs/logscope/internal/logging"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"github.com/fyrsmithlabs/logscope/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
)

// instrumentationName is the tracer and meter scope of logscope itself.
const instrumentationName = "github.com/fyrsmithlabs/logscope"

// App holds the assembled components.
type App struct {
	config    *config.Config
	logger    *logging.Logger
	provider  logctx.Provider
	registry  *prometheus.Registry
	metrics   *scoped.Metrics
	telemetry *telemetry.Telemetry
}

// Option configures New.
type Option func(*options)

type options struct {
	registry      *prometheus.Registry
	telemetryOpts []telemetry.Option
	logProvider   log.LoggerProvider
	install       bool
}

// WithRegistry registers scope metrics in reg instead of a new registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithTelemetryOptions passes opts to telemetry.New.
func WithTelemetryOptions(opts ...telemetry.Option) Option {
	return func(o *options) { o.telemetryOpts = append(o.telemetryOpts, opts...) }
}

// WithLoggerProvider sends OTEL log output to p instead of the global
// logger provider.
func WithLoggerProvider(p log.LoggerProvider) Option {
	return func(o *options) { o.logProvider = p }
}

// WithoutInstall leaves the process-wide logging context provider alone.
func WithoutInstall() Option {
	return func(o *options) { o.install = false }
}

// New validates cfg and assembles an App. Unless WithoutInstall is given,
// the provider becomes the process-wide provider; New fails if another one
// is already installed.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := options{install: true}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{config: cfg, registry: o.registry}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry), o.telemetryOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.telemetry = tel

	if cfg.Metrics.Enabled {
		a.metrics = scoped.NewMetrics(a.registry, cfg.Metrics.Namespace)
	}

	provider, err := NewProvider(cfg.Scope, a.metrics)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	a.provider = provider

	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	logProvider := o.logProvider
	if logProvider == nil && logCfg.Output.OTEL {
		logProvider = global.GetLoggerProvider()
	}
	logger, err := logging.NewLogger(logCfg, logProvider, logging.WithContextProvider(provider))
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if o.install {
		if err := logctx.Install(provider); err != nil {
			_ = tel.Shutdown(ctx)
			return nil, fmt.Errorf("failed to install logging context provider: %w", err)
		}
	}

	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.NamedError("reason", h.Reason))
	}
	logger.Debug(ctx, "logscope initialized",
		zap.String("provider", cfg.Scope.Provider),
		zap.String("policy", cfg.Scope.Policy),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("telemetry", tel.IsEnabled()),
	)
	return a, nil
}

// NewProvider builds the logging context provider selected by cfg.
func NewProvider(cfg config.ScopeConfig, metrics *scoped.Metrics) (logctx.Provider, error) {
	switch cfg.Provider {
	case config.ProviderNoop:
		return logctx.NoOp(), nil
	case config.ProviderScoped, "":
	default:
		return nil, fmt.Errorf("unknown scope provider %q", cfg.Provider)
	}

	policy, err := scoped.PolicyByName(cfg.Policy)
	if err != nil {
		return nil, err
	}
	levels, err := levelmap.Parse(cfg.Levels, cfg.DefaultLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid scope levels: %w", err)
	}

	return scoped.New(
		scoped.WithPolicy(policy),
		scoped.WithBaseTags(baseTags(cfg.Tags)),
		scoped.WithBaseLevelMap(levels),
		scoped.WithMetrics(metrics),
		scoped.WithTracing(cfg.Tracing),
	), nil
}

func baseTags(m map[string]string) tags.Tags {
	if len(m) == 0 {
		return tags.Empty()
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := tags.NewBuilder()
	for _, k := range keys {
		b.AddTag(k, m[k])
	}
	return b.Build()
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger { return a.logger }

// Provider returns the logging context provider.
func (a *App) Provider() logctx.Provider { return a.provider }

// API returns the provider's scope API.
func (a *App) API() logctx.ScopedContext { return a.provider.ContextAPI() }

// Registry returns the Prometheus registry holding scope metrics.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Metrics returns the scope metrics, or nil when disabled.
func (a *App) Metrics() *scoped.Metrics { return a.metrics }

// Telemetry returns the telemetry instance.
func (a *App) Telemetry() *telemetry.Telemetry { return a.telemetry }

// NewServer builds the HTTP server over the App's components.
func (a *App) NewServer() (*httpserver.Server, error) {
	return httpserver.NewServer(a.logger, a.provider,
		httpserver.ConfigFromSettings(a.config.Server),
		httpserver.WithGatherer(a.registry),
		httpserver.WithTracer(a.telemetry.Tracer(instrumentationName)),
		httpserver.WithMeter(a.telemetry.Meter(instrumentationName)),
	)
}

// Close flushes the logger and shuts telemetry down.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.logger.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
