package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/logctx/scoped"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = false // Skip OTEL for basic test

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.NotNil(t, logger.zap)
	assert.NotNil(t, logger.forced)
	assert.Equal(t, cfg, logger.config)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLogger_ContextAwareMethods(t *testing.T) {
	logctx.SwapForTest(t, logctx.NoOp())
	tl := NewTestLoggerWith(TraceLevel, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{
			name:    "trace",
			logFunc: func() { tl.Trace(ctx, "trace message", zap.String("key", "val")) },
			level:   TraceLevel,
			message: "trace message",
		},
		{
			name:    "debug",
			logFunc: func() { tl.Debug(ctx, "debug message", zap.String("key", "val")) },
			level:   zapcore.DebugLevel,
			message: "debug message",
		},
		{
			name:    "info",
			logFunc: func() { tl.Info(ctx, "info message", zap.String("key", "val")) },
			level:   zapcore.InfoLevel,
			message: "info message",
		},
		{
			name:    "warn",
			logFunc: func() { tl.Warn(ctx, "warn message", zap.String("key", "val")) },
			level:   zapcore.WarnLevel,
			message: "warn message",
		},
		{
			name:    "error",
			logFunc: func() { tl.Error(ctx, "error message", zap.String("key", "val")) },
			level:   zapcore.ErrorLevel,
			message: "error message",
		},
		{
			name:    "log",
			logFunc: func() { tl.Log(ctx, zapcore.WarnLevel, "log message", zap.String("key", "val")) },
			level:   zapcore.WarnLevel,
			message: "log message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl.Reset()
			tt.logFunc()

			logs := tl.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			assert.Equal(t, tt.message, logs[0].Message)
			assert.Len(t, logs[0].Context, 1) // "key" field
		})
	}
}

func TestLogger_DisabledLevelDropped(t *testing.T) {
	tl := NewTestLoggerWith(zapcore.InfoLevel, logctx.NoOp())

	tl.Debug(context.Background(), "hidden")
	tl.Trace(context.Background(), "hidden")

	assert.Empty(t, tl.All())
}

func TestLogger_With(t *testing.T) {
	tl := NewTestLoggerWith(zapcore.InfoLevel, logctx.NoOp())

	child := tl.With(zap.String("child_field", "value"))
	child.Info(context.Background(), "child log")

	tl.AssertField(t, "child log", "child_field", "value")
}

func TestLogger_Named(t *testing.T) {
	tl := NewTestLoggerWith(zapcore.InfoLevel, logctx.NoOp())

	named := tl.Named("subsystem")
	nested := named.Named("cache")
	assert.Equal(t, "subsystem", named.Name())
	assert.Equal(t, "subsystem.cache", nested.Name())

	named.Info(context.Background(), "named log")

	logs := tl.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "subsystem", logs[0].LoggerName)
}

func TestLogger_Enabled(t *testing.T) {
	tl := NewTestLoggerWith(zapcore.InfoLevel, logctx.NoOp())

	assert.False(t, tl.Enabled(TraceLevel))
	assert.False(t, tl.Enabled(zapcore.DebugLevel))
	assert.True(t, tl.Enabled(zapcore.InfoLevel))
	assert.True(t, tl.Enabled(zapcore.ErrorLevel))
}

func TestLogger_ScopeTagsInjected(t *testing.T) {
	p := scoped.New()
	tl := NewTestLoggerWith(zapcore.InfoLevel, p)

	err := logctx.NewContext(p.ContextAPI()).
		WithTags(tags.Of("request_id", "r-42")).
		Run(context.Background(), func(ctx context.Context) error {
			tl.Info(ctx, "handled", zap.String("key", "value"))
			return nil
		})
	require.NoError(t, err)

	tl.AssertTag(t, "handled", "request_id", "r-42")
	tl.AssertField(t, "handled", "key", "value")
	assert.NotContains(t, tl.All()[0].ContextMap(), ForcedFieldKey)
}

func TestLogger_ForcedByLevelMap(t *testing.T) {
	p := scoped.New()
	tl := NewTestLoggerWith(zapcore.InfoLevel, p)
	store := tl.Named("store")
	other := tl.Named("http")

	levels := levelmap.NewBuilder().Add(TraceLevel, "store").Build()
	err := logctx.NewContext(p.ContextAPI()).
		WithLogLevelMap(levels).
		Run(context.Background(), func(ctx context.Context) error {
			assert.True(t, store.EnabledFor(ctx, TraceLevel))
			assert.False(t, other.EnabledFor(ctx, zapcore.DebugLevel))

			store.Trace(ctx, "store trace")
			other.Debug(ctx, "http debug")
			store.Info(ctx, "store info")
			return nil
		})
	require.NoError(t, err)

	tl.AssertForced(t, "store trace")
	tl.AssertForced(t, "store info")
	tl.AssertNotLogged(t, zapcore.DebugLevel, "http debug")

	// Outside the scope nothing is forced
	store.Trace(context.Background(), "after scope")
	tl.AssertNotLogged(t, TraceLevel, "after scope")
}

func TestLogger_ForcedThroughGlobalProvider(t *testing.T) {
	p := scoped.New()
	logctx.SwapForTest(t, p)
	tl := NewTestLoggerWith(zapcore.WarnLevel, nil)

	levels := levelmap.NewBuilder().SetDefault(zapcore.DebugLevel).Build()
	err := logctx.NewContext(logctx.API()).
		WithLogLevelMap(levels).
		Run(context.Background(), func(ctx context.Context) error {
			tl.Debug(ctx, "debug under default rule")
			return nil
		})
	require.NoError(t, err)

	tl.AssertForced(t, "debug under default rule")
}

func TestLogger_WithProvider(t *testing.T) {
	p := scoped.New()
	tl := NewTestLoggerWith(zapcore.InfoLevel, logctx.NoOp())
	bound := tl.WithProvider(p)

	err := logctx.Run(context.Background(), p.ContextAPI(), func(ctx context.Context) error {
		p.ContextAPI().AddTags(ctx, tags.Of("job", 7))
		tl.Info(ctx, "noop provider")
		bound.Info(ctx, "scoped provider")
		return nil
	})
	require.NoError(t, err)

	assert.NotContains(t, tl.FilterMessage("noop provider").All()[0].ContextMap(), "tag.job")
	tl.AssertTag(t, "scoped provider", "job", int64(7))
}

func TestLogger_ErrorPriorityWithLogging(t *testing.T) {
	p := scoped.New()
	tl := NewTestLoggerWith(zapcore.InfoLevel, p)
	bodyErr := errors.New("body failed")

	err := logctx.Run(context.Background(), p.ContextAPI(), func(ctx context.Context) error {
		tl.Error(ctx, "failing")
		return bodyErr
	})

	assert.Same(t, bodyErr, err)
	tl.AssertLogged(t, zapcore.ErrorLevel, "failing")
}

func TestLogger_NilContext(t *testing.T) {
	tl := NewTestLoggerWith(zapcore.InfoLevel, scoped.New())

	tl.Info(nil, "no context")

	tl.AssertLogged(t, zapcore.InfoLevel, "no context")
}

func TestLogger_ForcedCoreWritesBelowLevel(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	forced := &forcedCore{Core: core}

	assert.True(t, forced.Enabled(TraceLevel))

	zl := zap.New(forced).With(zap.String("component", "test"))
	zl.Debug("below level")

	logs := observed.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "test", logs[0].ContextMap()["component"])
}

func TestLogger_CallerPointsAtApplication(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	cfg := NewDefaultConfig()
	logger := newLogger(cfg, core, core, WithContextProvider(logctx.NoOp()))

	logger.Info(context.Background(), "with caller")

	logs := observed.All()
	require.Len(t, logs, 1)
	require.True(t, logs[0].Caller.Defined)
	assert.Contains(t, logs[0].Caller.File, "logger_test.go")
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info(context.Background(), "dropped")
		l.Named("x").Debug(context.Background(), "dropped")
	})
	assert.NoError(t, l.Sync())
}
