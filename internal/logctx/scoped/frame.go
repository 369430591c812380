// internal/logctx/scoped/frame.go
package scoped

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	eventScopeOpen  = "logscope.scope.open"
	eventScopeClose = "logscope.scope.close"
	attrScopeID     = "logscope.scope.id"
	attrScopeDepth  = "logscope.scope.depth"
)

// tree guards every frame opened from one root context.
type tree struct {
	mu sync.Mutex
}

// frame is one open scope. All fields below tree are guarded by tree.mu.
type frame struct {
	id       string
	provider *Provider
	tree     *tree
	span     trace.Span

	parent    *frame
	children  map[*frame]struct{}
	depth     int
	tags      tags.Tags
	levels    levelmap.LevelMap
	hasLevels bool
	closed    bool
}

// open creates a frame nested in the innermost open frame of ctx.
func (p *Provider) open(ctx context.Context) *frame {
	parent := p.frameFrom(ctx)
	f := &frame{
		id:       uuid.NewString(),
		provider: p,
	}

	if parent == nil {
		f.tree = &tree{}
	} else {
		f.tree = parent.tree
		f.tree.mu.Lock()
		for parent != nil && parent.closed {
			parent = parent.parent
		}
		if parent != nil {
			if parent.children == nil {
				parent.children = make(map[*frame]struct{})
			}
			parent.children[f] = struct{}{}
			f.parent = parent
			f.depth = parent.depth + 1
		}
		f.tree.mu.Unlock()
	}

	p.metrics.opened()
	if p.tracing {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			f.span = span
			span.AddEvent(eventScopeOpen, trace.WithAttributes(
				attribute.String(attrScopeID, f.id),
				attribute.Int(attrScopeDepth, f.depth+1),
			))
		}
	}
	return f
}

// ID returns the scope's unique identifier.
func (f *frame) ID() string { return f.id }

// Close releases the scope. It fails without side effects if the scope is
// already closed or a scope opened inside it is still open.
func (f *frame) Close() error {
	f.tree.mu.Lock()
	if f.closed {
		f.tree.mu.Unlock()
		f.provider.metrics.rejected(errorKindDoubleClose)
		return fmt.Errorf("scope %s: %w", f.id, logctx.ErrScopeClosed)
	}
	if len(f.children) > 0 {
		inner, depth := deepestOpen(f)
		f.tree.mu.Unlock()
		f.provider.metrics.rejected(errorKindOutOfOrder)
		return &logctx.ScopeOrderError{Scope: f.id, Innermost: inner.id, Depth: depth}
	}
	f.closed = true
	if f.parent != nil {
		delete(f.parent.children, f)
	}
	f.tree.mu.Unlock()

	f.provider.metrics.closed()
	if f.span != nil {
		f.span.AddEvent(eventScopeClose, trace.WithAttributes(
			attribute.String(attrScopeID, f.id),
			attribute.Int(attrScopeDepth, f.depth+1),
		))
	}
	return nil
}

// openChain returns the open frames from the root to f. Closed frames are
// skipped. The caller holds the tree lock.
func openChain(f *frame) []*frame {
	var chain []*frame
	for fr := f; fr != nil; fr = fr.parent {
		if !fr.closed {
			chain = append(chain, fr)
		}
	}
	slices.Reverse(chain)
	return chain
}

// deepestOpen returns the deepest open descendant of f and how many levels
// below f it is. The caller holds the tree lock.
func deepestOpen(f *frame) (*frame, int) {
	best, bestDepth := f, 0
	for child := range f.children {
		d, depth := deepestOpen(child)
		if depth+1 > bestDepth {
			best, bestDepth = d, depth+1
		}
	}
	return best, bestDepth
}
