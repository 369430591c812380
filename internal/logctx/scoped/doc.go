// Package scoped implements a logctx.Provider whose scopes travel in a
// context.Context.
//
// # Scope Tree
//
// Each scope is a frame stored in the context returned by WithNewScope. A
// frame points at the nearest open frame it was opened in, so scopes opened
// from one root context form a tree: the frames of one goroutine form a
// stack, and goroutines started inside a scope grow branches of their own.
//
// A frame can only be closed once and only when no scope opened inside it is
// still open. Both violations are reported (logctx.ErrScopeClosed,
// *logctx.ScopeOrderError) and leave the tree unchanged.
//
// # Level Maps
//
// Level maps of nested scopes are combined by a LevelMapPolicy, MergePolicy
// by default. The combined map decides ShouldForceLogging.
//
// # Observability
//
// With WithMetrics, scope activity is counted in Prometheus. With
// WithTracing, opening and closing a scope adds events to the recording
// OpenTelemetry span of the context, if any. Neither path logs.
package scoped
