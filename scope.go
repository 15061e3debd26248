package loom

import (
	"context"

	"go.uber.org/multierr"

	"github.com/danpasecinic/loom/internal/container"
	"github.com/danpasecinic/loom/internal/scope"
)

// Scope is the lifetime policy of a provider.
type Scope = scope.Scope

const (
	// Singleton instances live for the lifetime of the container.
	Singleton = scope.Singleton
	// Contextual instances live for one entered scope, e.g. one
	// request.
	Contextual = scope.Contextual
	// Transient instances are built fresh per resolution; the caller
	// owns them and the engine performs no cleanup.
	Transient = scope.Transient
)

// ScopeHandle identifies one entered contextual scope. Closing it
// tears down everything the scope constructed, in reverse construction
// order.
type ScopeHandle struct {
	c  *Container
	sc *container.ScopeContext
}

// ID is the unique identity of the scope activation, for logs.
func (h *ScopeHandle) ID() string {
	return h.sc.ID()
}

// Close exits the scope. Scopes nest and must close in LIFO order;
// closing while a nested scope is still open, or closing twice, fails
// with ScopeOrderingViolation.
func (h *ScopeHandle) Close(ctx context.Context) error {
	return h.c.internal.ExitScope(ctx, h.sc)
}

// EnterScope opens a contextual scope nested under the innermost scope
// already carried by ctx. The returned context routes contextual
// resolutions on this call path to the new scope.
func (c *Container) EnterScope(ctx context.Context) (context.Context, *ScopeHandle, error) {
	scopedCtx, sc, err := c.internal.EnterScope(ctx)
	if err != nil {
		return ctx, nil, err
	}
	return scopedCtx, &ScopeHandle{c: c, sc: sc}, nil
}

// InScope runs fn inside a freshly entered contextual scope and closes
// the scope when fn returns, combining fn's error with any teardown
// failure.
func (c *Container) InScope(ctx context.Context, fn func(ctx context.Context) error) error {
	scopedCtx, handle, err := c.EnterScope(ctx)
	if err != nil {
		return err
	}

	fnErr := fn(scopedCtx)
	return multierr.Append(fnErr, handle.Close(ctx))
}
