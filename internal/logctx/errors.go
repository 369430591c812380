// internal/logctx/errors.go
package logctx

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScopeState matches any *InvalidScopeStateError.
	ErrInvalidScopeState = errors.New("invalid logging scope state")

	// ErrScopeDiscipline matches every misuse of the scope stack: closing
	// twice or closing out of order.
	ErrScopeDiscipline = errors.New("logging scope closed out of discipline")

	// ErrScopeClosed is returned when a scope is closed more than once.
	ErrScopeClosed = fmt.Errorf("%w: scope already closed", ErrScopeDiscipline)

	// ErrProviderInstalled is returned by Install after a provider has
	// already been installed.
	ErrProviderInstalled = errors.New("logging context provider already installed")

	// ErrNilProvider is returned by Install for a nil provider.
	ErrNilProvider = errors.New("logging context provider cannot be nil")
)

// InvalidScopeStateError reports that releasing a scope failed while the
// scope's body succeeded. Err holds the release failure.
type InvalidScopeStateError struct {
	Err error
}

func (e *InvalidScopeStateError) Error() string {
	return "invalid logging scope state: " + e.Err.Error()
}

// Unwrap returns the release failure.
func (e *InvalidScopeStateError) Unwrap() error { return e.Err }

// Is matches ErrInvalidScopeState.
func (e *InvalidScopeStateError) Is(target error) bool { return target == ErrInvalidScopeState }

// ScopeOrderError reports an attempt to close a scope while a scope nested
// inside it is still open. The scope stack is left unchanged.
type ScopeOrderError struct {
	// Scope identifies the scope being closed.
	Scope string
	// Innermost identifies the innermost scope still open.
	Innermost string
	// Depth is the number of scopes open above Scope.
	Depth int
}

func (e *ScopeOrderError) Error() string {
	return fmt.Sprintf("logging scope %s closed out of order: %d nested scope(s) still open, innermost %s",
		e.Scope, e.Depth, e.Innermost)
}

// Is matches ErrScopeDiscipline.
func (e *ScopeOrderError) Is(target error) bool { return target == ErrScopeDiscipline }
