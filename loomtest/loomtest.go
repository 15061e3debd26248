// Package loomtest provides test helpers for containers: a container
// bound to a testing.TB that stops itself on test cleanup, Require*
// wrappers, and auto-restoring overrides.
package loomtest

import (
	"context"

	"github.com/danpasecinic/loom"
)

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// TestContainer wraps a loom.Container with failure-is-fatal helpers.
type TestContainer struct {
	*loom.Container
	tb TB
}

// New builds a container that is stopped automatically when the test
// finishes.
func New(tb TB, opts ...loom.Option) *TestContainer {
	tb.Helper()

	c := loom.New(opts...)
	tc := &TestContainer{
		Container: c,
		tb:        tb,
	}

	tb.Cleanup(func() {
		if err := c.Stop(context.Background()); err != nil {
			tb.Fatalf("failed to stop container: %v", err)
		}
	})

	return tc
}

func (tc *TestContainer) RequireStart(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Start(ctx); err != nil {
		tc.tb.Fatalf("failed to start container: %v", err)
	}
}

func (tc *TestContainer) RequireValidate() {
	tc.tb.Helper()

	if err := tc.Validate(); err != nil {
		tc.tb.Fatalf("container validation failed: %v", err)
	}
}

// RequireEnterScope opens a contextual scope that closes automatically
// on test cleanup.
func (tc *TestContainer) RequireEnterScope(ctx context.Context) context.Context {
	tc.tb.Helper()

	scopedCtx, handle, err := tc.EnterScope(ctx)
	if err != nil {
		tc.tb.Fatalf("failed to enter scope: %v", err)
	}

	tc.tb.Cleanup(func() {
		if err := handle.Close(context.Background()); err != nil && !loom.IsScopeOrderingViolation(err) {
			tc.tb.Fatalf("failed to close scope: %v", err)
		}
	})

	return scopedCtx
}

// Provide registers a provider, failing the test on error.
func Provide[T any](tc *TestContainer, provider loom.Provider[T], opts ...loom.ProviderOption) {
	tc.tb.Helper()

	if err := loom.Provide(tc.Container, provider, opts...); err != nil {
		tc.tb.Fatalf("failed to provide: %v", err)
	}
}

// ProvideValue registers a value, failing the test on error.
func ProvideValue[T any](tc *TestContainer, value T, opts ...loom.ProviderOption) {
	tc.tb.Helper()

	if err := loom.ProvideValue(tc.Container, value, opts...); err != nil {
		tc.tb.Fatalf("failed to provide value: %v", err)
	}
}

// Invoke resolves T, failing the test on error.
func Invoke[T any](tc *TestContainer) T {
	tc.tb.Helper()

	v, err := loom.Invoke[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to invoke: %v", err)
	}
	return v
}

// InvokeCtx resolves T with ctx, failing the test on error.
func InvokeCtx[T any](tc *TestContainer, ctx context.Context) T {
	tc.tb.Helper()

	v, err := loom.InvokeCtx[T](ctx, tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to invoke: %v", err)
	}
	return v
}

// Override swaps in a stub provider for T and restores the original
// binding on test cleanup.
func Override[T any](tc *TestContainer, provider loom.Provider[T], opts ...loom.ProviderOption) {
	tc.tb.Helper()

	restore, err := loom.Override(tc.Container, provider, opts...)
	if err != nil {
		tc.tb.Fatalf("failed to override: %v", err)
	}
	tc.tb.Cleanup(restore)
}

// OverrideValue swaps in a fixed value for T and restores the original
// binding on test cleanup.
func OverrideValue[T any](tc *TestContainer, value T, opts ...loom.ProviderOption) {
	tc.tb.Helper()

	restore, err := loom.OverrideValue(tc.Container, value, opts...)
	if err != nil {
		tc.tb.Fatalf("failed to override value: %v", err)
	}
	tc.tb.Cleanup(restore)
}
