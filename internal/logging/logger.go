// internal/logging/logger.go
package logging

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ForcedFieldKey marks entries written because the logging context forced
// them.
const ForcedFieldKey = "forced"

// Logger wraps Zap with context-aware methods.
//
// Every call consults the logging context provider: scope tags are added as
// fields, and a statement the provider forces is written even below the
// configured level, bypassing sampling.
type Logger struct {
	zap      *zap.Logger
	forced   *zap.Logger
	config   *Config
	provider logctx.Provider
	name     string
}

// Option configures a Logger.
type Option func(*Logger)

// WithContextProvider makes the logger consult p instead of the
// process-wide provider.
func WithContextProvider(p logctx.Provider) Option {
	return func(l *Logger) { l.provider = p }
}

// NewLogger creates a logger from config.
// otelProvider can be nil to disable OTEL output.
func NewLogger(cfg *Config, otelProvider log.LoggerProvider, opts ...Option) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	core, err := newOutputCore(cfg, otelProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return newLogger(cfg, newSampledCore(core, cfg.Sampling), core, opts...), nil
}

// NewNop returns a logger that writes nothing.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop(), forced: zap.NewNop(), config: NewDefaultConfig()}
}

// newLogger builds a Logger over core, writing forced entries to raw.
func newLogger(cfg *Config, core, raw zapcore.Core, opts ...Option) *Logger {
	zapOpts := []zap.Option{}
	if cfg.Caller.Enabled {
		zapOpts = append(zapOpts, zap.AddCaller(), zap.AddCallerSkip(cfg.Caller.Skip))
	}
	if cfg.Stacktrace.Level != 0 {
		zapOpts = append(zapOpts, zap.AddStacktrace(cfg.Stacktrace.Level))
	}

	l := &Logger{
		zap:    zap.New(core, zapOpts...),
		forced: zap.New(&forcedCore{Core: raw}, zapOpts...),
		config: cfg,
	}

	// Add constant fields from config
	if len(cfg.Fields) > 0 {
		fields := make([]zap.Field, 0, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields = append(fields, zap.String(k, v))
		}
		l.zap = l.zap.With(fields...)
		l.forced = l.forced.With(fields...)
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = encodeLevel

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// encodeLevel names the trace level instead of printing Level(-2).
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

// Context-aware logging methods

func (l *Logger) Trace(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, TraceLevel, msg, fields)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) DPanic(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.DPanicLevel, msg, fields)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.FatalLevel, msg, fields)
}

// Log writes at an arbitrary level.
func (l *Logger) Log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	l.log(ctx, level, msg, fields)
}

// log is the shared write path. It must be called directly from the
// exported methods so caller skipping stays correct.
func (l *Logger) log(ctx context.Context, lvl zapcore.Level, msg string, fields []zap.Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	p := l.contextProvider()
	enabled := l.zap.Core().Enabled(lvl)

	if p.ShouldForceLogging(ctx, l.name, lvl, enabled) {
		if ce := l.forced.Check(lvl, msg); ce != nil {
			all := append(contextFields(ctx, p), fields...)
			ce.Write(append(all, zap.Bool(ForcedFieldKey, true))...)
		}
		return
	}
	// DPanic and above must reach zap even when disabled so their
	// terminal actions run.
	if !enabled && lvl < zapcore.DPanicLevel {
		return
	}
	if ce := l.zap.Check(lvl, msg); ce != nil {
		ce.Write(append(contextFields(ctx, p), fields...)...)
	}
}

func (l *Logger) contextProvider() logctx.Provider {
	if l.provider != nil {
		return l.provider
	}
	return logctx.Current()
}

// Child logger creation

func (l *Logger) With(fields ...zap.Field) *Logger {
	child := *l
	child.zap = l.zap.With(fields...)
	child.forced = l.forced.With(fields...)
	return &child
}

// Named adds a segment to the logger name. Names are joined with "." and
// matched against level map rules.
func (l *Logger) Named(name string) *Logger {
	child := *l
	child.zap = l.zap.Named(name)
	child.forced = l.forced.Named(name)
	child.name = name
	if l.name != "" {
		child.name = l.name + "." + name
	}
	return &child
}

// WithProvider returns a copy of the logger consulting p.
func (l *Logger) WithProvider(p logctx.Provider) *Logger {
	child := *l
	child.provider = p
	return &child
}

// Name returns the logger name used for level map lookups.
func (l *Logger) Name() string {
	return l.name
}

// Enabled returns true if the given level is enabled by configuration.
func (l *Logger) Enabled(level zapcore.Level) bool {
	return l.zap.Core().Enabled(level)
}

// EnabledFor reports whether a statement at level would be written in ctx,
// either by configuration or because the logging context forces it.
func (l *Logger) EnabledFor(ctx context.Context, level zapcore.Level) bool {
	enabled := l.Enabled(level)
	return enabled || l.contextProvider().ShouldForceLogging(ctx, l.name, level, enabled)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	err := l.zap.Sync()
	// Ignore sync errors on stdout/stderr (common on Linux)
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// Underlying returns the underlying zap.Logger.
// Useful when integrating with libraries that require a *zap.Logger.
func (l *Logger) Underlying() *zap.Logger {
	return l.zap
}

// isStdoutSyncError checks if error is harmless stdout/stderr sync error.
// On Linux, syncing stdout/stderr returns EINVAL or ENOTTY which are safe to ignore.
func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
