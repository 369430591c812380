// internal/logctx/global.go
package logctx

import (
	"sync/atomic"
)

// installed holds the process-wide provider once Install succeeds.
var installed atomic.Pointer[providerBox]

type providerBox struct {
	p Provider
}

// Current returns the process-wide provider, or the no-op provider when none
// has been installed.
func Current() Provider {
	if b := installed.Load(); b != nil {
		return b.p
	}
	return NoOp()
}

// API returns the scope API of the current provider.
func API() ScopedContext {
	return Current().ContextAPI()
}

// Install sets the process-wide provider. It succeeds once; later calls
// return ErrProviderInstalled and leave the first provider in place.
// Install is meant for program startup, before any scope is opened.
func Install(p Provider) error {
	if p == nil {
		return ErrNilProvider
	}
	if !installed.CompareAndSwap(nil, &providerBox{p: p}) {
		return ErrProviderInstalled
	}
	return nil
}

// IsInstalled reports whether Install has succeeded.
func IsInstalled() bool {
	return installed.Load() != nil
}
