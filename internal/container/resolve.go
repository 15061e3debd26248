package container

import (
	"context"
	"errors"
	"time"

	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

// Resolve returns the instance for key, constructing it and its
// declared dependencies as needed. The target scope context comes from
// the descriptor: singletons always resolve against the root,
// contextual providers against the innermost scope entered on ctx, and
// transients are built fresh and never retained.
func (c *Container) Resolve(ctx context.Context, key keys.Key) (any, error) {
	start := time.Now()
	instance, err := c.resolve(ctx, key)
	c.observeResolve(key, time.Since(start), err)
	return instance, err
}

func (c *Container) resolve(ctx context.Context, key keys.Key) (any, error) {
	d, ok := c.registry.Get(key)
	if !ok {
		err := errUnknownDependency(key)
		if f, inTree := ctx.Value(frameCtxKey{}).(*frame); inTree {
			err = err.withChain(append(f.chain(), key))
		}
		return nil, err
	}

	if d.Kind == KindValue {
		return d.Value, nil
	}

	ctx, f := enterFrame(ctx)

	switch d.Scope {
	case scope.Transient:
		return c.construct(ctx, f, d, nil)
	case scope.Singleton:
		return c.resolveCached(ctx, f, d, c.root)
	case scope.Contextual:
		// Catches resolutions the dependent never declared: a
		// contextual instance cached under a singleton origin would
		// outlive its scope.
		if f.origin() == scope.Singleton {
			from := key
			if chain := f.chain(); len(chain) > 0 {
				from = chain[len(chain)-1]
			}
			return nil, errScopeMismatch(
				from, key,
				"singleton-owned instance cannot depend on a contextual-scoped instance",
			).withChain(append(f.chain(), key))
		}
		sc := ScopeFrom(ctx)
		if sc == nil {
			return nil, errScopeInactive(key).withChain(append(f.chain(), key))
		}
		return c.resolveCached(ctx, f, d, sc)
	default:
		return nil, errInvalidScope(key, "unknown scope")
	}
}

// resolveCached is the single-flight path for cacheable scopes. At
// most one resolver claims the Empty slot and runs the factory; every
// concurrent resolver of the same key in the same scope activation
// waits on that slot and observes the same instance or failure.
func (c *Container) resolveCached(ctx context.Context, f *frame, d *Descriptor, sc *ScopeContext) (any, error) {
	// A repeat within this call tree means the in-progress slot ahead
	// is our own ancestor; waiting on it would deadlock. Report the
	// cycle instead.
	if cycle, ok := f.push(d.Key); !ok {
		return nil, errCyclicDependency(cycle)
	}
	f.pop(d.Key)

	s, claimed, err := sc.claim(d.Key)
	if err != nil {
		return nil, err
	}

	if !claimed {
		if instance, serr, done := s.settled(); done {
			// Ready or Failed: failures stay terminal until the scope
			// closes, there is no automatic retry.
			return instance, serr
		}
		c.logger.Debug("awaiting in-flight construction", "key", d.Key.String(), "scope", sc.id)
		return s.wait(ctx)
	}

	instance, err := c.construct(ctx, f, d, sc)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.complete(instance)

	if sc == c.root && d.Lazy {
		if err := c.runLazyHooks(ctx, d); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// construct resolves the declared dependencies in order, invokes the
// factory, and records the construction in sc's log. sc is nil for
// transients: the engine keeps no reference to the result and runs no
// cleanup on it.
func (c *Container) construct(ctx context.Context, f *frame, d *Descriptor, sc *ScopeContext) (any, error) {
	if cycle, ok := f.push(d.Key); !ok {
		return nil, errCyclicDependency(cycle)
	}
	defer f.pop(d.Key)

	f.pushOrigin(d.Scope)
	defer f.popOrigin()

	for _, dep := range d.DependsOn {
		depDesc, ok := c.registry.Get(dep)
		if !ok {
			return nil, errUnknownDependency(dep).withChain(append(f.chain(), dep))
		}
		if f.origin() == scope.Singleton && depDesc.Scope == scope.Contextual {
			return nil, errScopeMismatch(
				d.Key, dep,
				"singleton-owned instance cannot depend on a contextual-scoped instance",
			).withChain(f.chain())
		}
		// A declared transient dependency is built when the factory
		// asks for it; constructing it here would run its factory a
		// second time and discard the result.
		if depDesc.Scope == scope.Transient {
			continue
		}
		if _, err := c.Resolve(ctx, dep); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, errCancelled(d.Key, err)
	}

	c.logger.Debug("constructing", "key", d.Key.String(), "scope", d.Scope.String())
	instance, err := d.Factory(ctx, c)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, errCancelled(d.Key, err)
		}
		// Resolution failures surfacing through a factory keep their
		// original classification; only domain errors become
		// ProviderFailure.
		var engineErr *Error
		if errors.As(err, &engineErr) {
			return nil, err
		}
		return nil, errProviderFailure(d.Key, err).withChain(f.chain())
	}

	if sc != nil {
		var cleanup Cleanup
		if d.Kind == KindResource {
			cleanup = d.Cleanup
		}
		sc.record(d.Key, instance, cleanup)
	}
	return instance, nil
}
