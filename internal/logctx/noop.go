// internal/logctx/noop.go
package logctx

import (
	"context"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"go.uber.org/zap/zapcore"
)

// NoOp returns the provider used when no context system is installed.
// It never reports tags or forced logging, and its API accepts every call
// without effect.
func NoOp() Provider { return noopProvider{} }

type noopProvider struct{}

func (noopProvider) Tags(context.Context) tags.Tags { return tags.Empty() }

func (noopProvider) ShouldForceLogging(context.Context, string, zapcore.Level, bool) bool {
	return false
}

func (noopProvider) ContextAPI() ScopedContext { return noopAPI{} }

type noopAPI struct{}

// WithNewScope returns ctx itself: nothing would observably change.
func (noopAPI) WithNewScope(ctx context.Context) (context.Context, Scope) {
	return ctx, noopScope{}
}

func (noopAPI) AddTags(context.Context, tags.Tags) bool { return false }

func (noopAPI) ApplyLogLevelMap(context.Context, levelmap.LevelMap) bool { return false }

type noopScope struct{}

func (noopScope) Close() error { return nil }
