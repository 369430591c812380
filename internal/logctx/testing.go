// internal/logctx/testing.go
package logctx

import (
	"testing"
)

// SwapForTest installs p as the process-wide provider for the duration of
// the test, replacing any provider already installed, and restores the
// previous state on cleanup. Tests using it must not run in parallel.
func SwapForTest(tb testing.TB, p Provider) {
	tb.Helper()
	prev := installed.Load()
	if p == nil {
		installed.Store(nil)
	} else {
		installed.Store(&providerBox{p: p})
	}
	tb.Cleanup(func() {
		installed.Store(prev)
	})
}
