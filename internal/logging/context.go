// internal/logging/context.go
package logging

import (
	"context"

	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TagFieldPrefix prefixes the field key of every scope tag.
const TagFieldPrefix = "tag."

// ContextFields extracts correlation data from context using the
// process-wide logging context provider.
func ContextFields(ctx context.Context) []zap.Field {
	return contextFields(ctx, logctx.Current())
}

func contextFields(ctx context.Context, p logctx.Provider) []zap.Field {
	if ctx == nil {
		return nil
	}

	t := p.Tags(ctx)
	fields := make([]zap.Field, 0, 3+t.Len())

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	return append(fields, TagFields(t)...)
}

// TagFields converts tags into zap fields keyed "tag.<key>". A key with one
// value becomes a typed field, a key with several an array, and a key
// without values a true boolean.
func TagFields(t tags.Tags) []zap.Field {
	if t.IsEmpty() {
		return nil
	}
	fields := make([]zap.Field, 0, t.Len())
	t.Range(func(key string, values []tags.Value) bool {
		name := TagFieldPrefix + key
		switch len(values) {
		case 0:
			fields = append(fields, zap.Bool(name, true))
		case 1:
			fields = append(fields, valueField(name, values[0]))
		default:
			fields = append(fields, zap.Array(name, tagValues(values)))
		}
		return true
	})
	return fields
}

func valueField(key string, v tags.Value) zap.Field {
	switch v.Kind() {
	case tags.KindBool:
		b, _ := v.AsBool()
		return zap.Bool(key, b)
	case tags.KindInt:
		i, _ := v.AsInt()
		return zap.Int64(key, i)
	case tags.KindFloat:
		f, _ := v.AsFloat()
		return zap.Float64(key, f)
	}
	return zap.String(key, v.String())
}

// tagValues marshals a multi-valued tag as a typed array.
type tagValues []tags.Value

func (vs tagValues) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, v := range vs {
		switch v.Kind() {
		case tags.KindBool:
			b, _ := v.AsBool()
			enc.AppendBool(b)
		case tags.KindInt:
			i, _ := v.AsInt()
			enc.AppendInt64(i)
		case tags.KindFloat:
			f, _ := v.AsFloat()
			enc.AppendFloat64(f)
		default:
			enc.AppendString(v.String())
		}
	}
	return nil
}

// loggerCtxKey is the context key for Logger.
type loggerCtxKey struct{}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
