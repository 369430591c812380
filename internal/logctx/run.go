// internal/logctx/run.go
package logctx

import (
	"context"
)

// Run opens a new scope with api, calls fn with the scoped context and
// releases the scope on every exit path.
//
// An error returned by fn is returned unchanged, and a failure to release the
// scope is then discarded. If fn succeeds but the release fails, Run returns
// an *InvalidScopeStateError wrapping the release error. If fn panics, the
// scope is released and the panic continues. A nil api behaves like the
// no-op API.
func Run(ctx context.Context, api ScopedContext, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, api, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Call is Run for blocks that produce a value. The value returned by fn is
// returned even when fn also returns an error.
func Call[T any](ctx context.Context, api ScopedContext, fn func(ctx context.Context) (T, error)) (result T, err error) {
	if api == nil {
		api = noopAPI{}
	}
	scoped, scope := api.WithNewScope(ctx)

	completed := false
	defer func() {
		closeErr := scope.Close()
		// A panic or an error from fn takes priority over the release failure.
		if !completed || err != nil || closeErr == nil {
			return
		}
		err = &InvalidScopeStateError{Err: closeErr}
	}()

	result, err = fn(scoped)
	completed = true
	return result, err
}
