package scopes

import "context"

type Scope interface {
	Close() error
}

type API struct{}

func (API) WithNewScope(ctx context.Context) (context.Context, Scope) { return ctx, nil }

type Other struct{}

func (Other) WithNewScope(ctx context.Context) (context.Context, int) { return ctx, 0 }

type holder struct {
	scope Scope
}

func goodDeferred(ctx context.Context, api API) {
	ctx, scope := api.WithNewScope(ctx)
	defer scope.Close()
	_ = ctx
}

func goodDeferredClosure(ctx context.Context, api API) {
	_, scope := api.WithNewScope(ctx)
	defer func() {
		_ = scope.Close()
	}()
}

func goodMethodValue(ctx context.Context, api API) func() error {
	_, scope := api.WithNewScope(ctx)
	return scope.Close
}

func goodReturned(ctx context.Context, api API) (context.Context, Scope) {
	ctx, scope := api.WithNewScope(ctx)
	return ctx, scope
}

func goodPassed(ctx context.Context, api API) {
	_, scope := api.WithNewScope(ctx)
	closeLater(scope)
}

func goodStored(ctx context.Context, api API) *holder {
	_, scope := api.WithNewScope(ctx)
	return &holder{scope: scope}
}

func goodVarDecl(ctx context.Context, api API) {
	var _, scope = api.WithNewScope(ctx)
	defer scope.Close()
}

func goodNotAScope(ctx context.Context, o Other) {
	o.WithNewScope(ctx)
}

func badDiscardedBlank(ctx context.Context, api API) {
	ctx, _ = api.WithNewScope(ctx) // want `scope opened by WithNewScope is discarded`
	_ = ctx
}

func badDiscardedStatement(ctx context.Context, api API) {
	api.WithNewScope(ctx) // want `scope opened by WithNewScope is discarded`
}

func badNeverClosed(ctx context.Context, api API) {
	_, scope := api.WithNewScope(ctx) // want `scope "scope" opened by WithNewScope is never closed`
	_ = scope
}

func badInClosure(ctx context.Context, api API) {
	run(func() {
		_, inner := api.WithNewScope(ctx) // want `scope "inner" opened by WithNewScope is never closed`
		_ = inner
	})
}

func ignoredSameLine(ctx context.Context, api API) {
	api.WithNewScope(ctx) //scopeclose:ignore
}

func ignoredLineAbove(ctx context.Context, api API) {
	//scopeclose:ignore - closed by the framework
	api.WithNewScope(ctx)
}

func closeLater(s Scope) { _ = s.Close() }

func run(fn func()) { fn() }
