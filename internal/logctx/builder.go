// internal/logctx/builder.go
package logctx

import (
	"context"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/tags"
)

// ContextBuilder configures a scope before it is opened. Tags and level
// maps given to the builder are applied to the new scope as soon as it is
// opened; whether the provider accepted them is not reported.
type ContextBuilder struct {
	api       ScopedContext
	tags      tags.Tags
	levels    levelmap.LevelMap
	hasLevels bool
}

// NewContext returns a builder for a scope opened with api.
func NewContext(api ScopedContext) *ContextBuilder {
	if api == nil {
		api = noopAPI{}
	}
	return &ContextBuilder{api: api}
}

// WithTags adds t to the tags of the new scope.
func (b *ContextBuilder) WithTags(t tags.Tags) *ContextBuilder {
	b.tags = b.tags.Merge(t)
	return b
}

// WithLogLevelMap installs m on the new scope. Repeated calls merge.
func (b *ContextBuilder) WithLogLevelMap(m levelmap.LevelMap) *ContextBuilder {
	b.levels = b.levels.Merge(m)
	b.hasLevels = true
	return b
}

// Install opens the configured scope. The caller must close it.
func (b *ContextBuilder) Install(ctx context.Context) (context.Context, Scope) {
	scoped, scope := b.api.WithNewScope(ctx)
	if !b.tags.IsEmpty() {
		b.api.AddTags(scoped, b.tags)
	}
	if b.hasLevels {
		b.api.ApplyLogLevelMap(scoped, b.levels)
	}
	return scoped, scope
}

// Run calls fn in the configured scope with the same error handling as Run.
func (b *ContextBuilder) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, builderAPI{b}, fn)
}

// CallWith calls fn in the scope configured by b with the same error
// handling as Call.
func CallWith[T any](ctx context.Context, b *ContextBuilder, fn func(ctx context.Context) (T, error)) (T, error) {
	return Call(ctx, builderAPI{b}, fn)
}

// builderAPI opens scopes through the builder so Run and Call apply its
// configuration.
type builderAPI struct {
	b *ContextBuilder
}

func (a builderAPI) WithNewScope(ctx context.Context) (context.Context, Scope) {
	return a.b.Install(ctx)
}

func (a builderAPI) AddTags(ctx context.Context, t tags.Tags) bool {
	return a.b.api.AddTags(ctx, t)
}

func (a builderAPI) ApplyLogLevelMap(ctx context.Context, m levelmap.LevelMap) bool {
	return a.b.api.ApplyLogLevelMap(ctx, m)
}
