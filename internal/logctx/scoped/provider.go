// internal/logctx/scoped/provider.go
package scoped

import (
	"context"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"go.uber.org/zap/zapcore"
)

// Provider is a logctx.Provider backed by scopes stored in contexts.
type Provider struct {
	policy     LevelMapPolicy
	baseTags   tags.Tags
	baseLevels levelmap.LevelMap
	metrics    *Metrics
	tracing    bool

	api *contextAPI
}

// Option configures a Provider.
type Option func(*Provider)

// WithPolicy sets how nested level maps combine. Defaults to MergePolicy.
func WithPolicy(policy LevelMapPolicy) Option {
	return func(p *Provider) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithBaseTags sets tags visible everywhere, below every scope.
func WithBaseTags(t tags.Tags) Option {
	return func(p *Provider) { p.baseTags = t }
}

// WithBaseLevelMap sets the level map in effect outside every scope.
func WithBaseLevelMap(m levelmap.LevelMap) Option {
	return func(p *Provider) { p.baseLevels = m }
}

// WithMetrics records scope activity in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithTracing adds scope open and close events to recording spans.
func WithTracing(enabled bool) Option {
	return func(p *Provider) { p.tracing = enabled }
}

// New creates a Provider.
func New(opts ...Option) *Provider {
	p := &Provider{policy: MergePolicy{}}
	for _, opt := range opts {
		opt(p)
	}
	p.api = &contextAPI{p: p}
	return p
}

var _ logctx.Provider = (*Provider)(nil)

// Tags returns the base tags merged with the tags of every open scope in
// ctx, outermost first.
func (p *Provider) Tags(ctx context.Context) tags.Tags {
	f := p.frameFrom(ctx)
	if f == nil {
		return p.baseTags
	}
	out := p.baseTags
	f.tree.mu.Lock()
	defer f.tree.mu.Unlock()
	for _, fr := range openChain(f) {
		out = out.Merge(fr.tags)
	}
	return out
}

// LevelMap returns the level map in effect for ctx.
func (p *Provider) LevelMap(ctx context.Context) levelmap.LevelMap {
	f := p.frameFrom(ctx)
	if f == nil {
		return p.baseLevels
	}
	out := p.baseLevels
	f.tree.mu.Lock()
	defer f.tree.mu.Unlock()
	for _, fr := range openChain(f) {
		if fr.hasLevels {
			out = p.policy.Combine(out, fr.levels)
		}
	}
	return out
}

// ShouldForceLogging reports whether the level map in effect for ctx enables
// level for loggerName. A statement forced this way is emitted even when it
// is already enabled by level, so callers can bypass sampling for it.
func (p *Provider) ShouldForceLogging(ctx context.Context, loggerName string, level zapcore.Level, _ bool) bool {
	m := p.LevelMap(ctx)
	if m.IsEmpty() {
		return false
	}
	return m.Enabled(loggerName, level)
}

// ContextAPI returns the provider's scope API.
func (p *Provider) ContextAPI() logctx.ScopedContext {
	return p.api
}

// frameKey keys frames per provider so providers never see each other's
// scopes.
type frameKey struct {
	p *Provider
}

func (p *Provider) frameFrom(ctx context.Context) *frame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(frameKey{p: p}).(*frame)
	return f
}

// contextAPI is the logctx.ScopedContext of a Provider.
type contextAPI struct {
	p *Provider
}

func (a *contextAPI) WithNewScope(ctx context.Context) (context.Context, logctx.Scope) {
	if ctx == nil {
		ctx = context.Background()
	}
	f := a.p.open(ctx)
	return context.WithValue(ctx, frameKey{p: a.p}, f), f
}

func (a *contextAPI) AddTags(ctx context.Context, t tags.Tags) bool {
	f := a.p.frameFrom(ctx)
	if f == nil {
		return false
	}
	f.tree.mu.Lock()
	defer f.tree.mu.Unlock()
	if f.closed {
		return false
	}
	f.tags = f.tags.Merge(t)
	return true
}

func (a *contextAPI) ApplyLogLevelMap(ctx context.Context, m levelmap.LevelMap) bool {
	f := a.p.frameFrom(ctx)
	if f == nil {
		return false
	}
	f.tree.mu.Lock()
	defer f.tree.mu.Unlock()
	if f.closed {
		return false
	}
	f.levels = f.levels.Merge(m)
	f.hasLevels = true
	return true
}
