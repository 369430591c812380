// Package logctx propagates scoped logging metadata through a
// context.Context.
//
// # Overview
//
// A scope is one nesting level of logging context. While a scope is open,
// every log statement made with the scope's context sees the tags added to it
// and the level overrides installed on it, merged with those of every
// enclosing scope. When the scope is released its state disappears and the
// enclosing scope is current again.
//
// Two pieces make up the contract:
//   - Provider: consulted by log call sites for the visible tags and for
//     whether a statement must be force-logged.
//   - ScopedContext: used by application code to open scopes and to add
//     tags or level maps to the innermost one.
//
// # Usage
//
// Run a block in a new scope:
//
//	api := logctx.API()
//	err := logctx.Run(ctx, api, func(ctx context.Context) error {
//	    api.AddTags(ctx, tags.Of("request", id))
//	    return handle(ctx)
//	})
//
// Or with the builder:
//
//	err := logctx.NewContext(api).
//	    WithTags(tags.Of("job", name)).
//	    WithLogLevelMap(debugDB).
//	    Run(ctx, process)
//
// # Error Priority
//
// If the block returns an error, that exact error is returned and any failure
// to release the scope is discarded. If only the release fails, Run returns
// an *InvalidScopeStateError wrapping the release error. A panicking block
// still releases its scope before the panic continues.
//
// # No-Op Provider
//
// Until a provider is installed with Install, Current returns the no-op
// provider: configuration calls report false, scopes do nothing and Tags is
// always empty. Call sites behave exactly as if no context system existed.
//
// # Concurrency Safety
//
// Providers and APIs are safe for concurrent use. Scope state travels with
// the context, so goroutines working from unrelated contexts never observe
// each other's scopes.
package logctx
