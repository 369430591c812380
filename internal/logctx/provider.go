// internal/logctx/provider.go
package logctx

import (
	"context"
	"io"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"go.uber.org/zap/zapcore"
)

// Provider exposes the logging context visible at a point of execution.
type Provider interface {
	// Tags returns the merged tags of every scope open in ctx.
	// It returns tags.Empty() when there are none and never fails.
	Tags(ctx context.Context) tags.Tags

	// ShouldForceLogging reports whether a statement from loggerName at level
	// must be emitted regardless of the configured level. isEnabledByLevel is
	// the ordinary enablement decision. It has no side effects.
	ShouldForceLogging(ctx context.Context, loggerName string, level zapcore.Level, isEnabledByLevel bool) bool

	// ContextAPI returns the provider's scope API. The same value is
	// returned for the lifetime of the provider.
	ContextAPI() ScopedContext
}

// ScopedContext opens scopes and modifies the innermost open scope.
type ScopedContext interface {
	// WithNewScope opens a scope nested in the one carried by ctx. The
	// returned context carries the new scope; the Scope must be closed
	// exactly once, after every scope opened inside it.
	WithNewScope(ctx context.Context) (context.Context, Scope)

	// AddTags merges t into the innermost scope of ctx. It returns false if
	// there is no open scope or the provider does not support tags.
	AddTags(ctx context.Context, t tags.Tags) bool

	// ApplyLogLevelMap installs m on the innermost scope of ctx. It returns
	// false if there is no open scope or the provider does not support
	// level maps.
	ApplyLogLevelMap(ctx context.Context, m levelmap.LevelMap) bool
}

// Scope is the releasable handle of an open scope.
type Scope interface {
	io.Closer
}
