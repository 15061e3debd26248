package container

import (
	"go.uber.org/multierr"

	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

// Validate walks the whole registry eagerly: missing dependencies,
// cycles, and scope relationships are all reported up front so a
// mis-wired registry fails at startup instead of at first resolution.
// The per-resolve checks remain in place either way; Validate is the
// fail-fast option.
func (c *Container) Validate() error {
	var errs error

	for _, missing := range c.graph.Missing() {
		errs = multierr.Append(errs, errUnknownDependency(missing).withChain(c.pathTo(missing)))
	}

	for _, cycle := range c.graph.CyclePaths() {
		errs = multierr.Append(errs, errCyclicDependency(cycle))
	}

	errs = multierr.Append(errs, c.validateScopes())

	if errs != nil {
		return errValidationFailed("registry validation failed", errs)
	}
	return nil
}

// validateScopes rejects any singleton provider that can reach a
// contextual-scoped provider through its dependency closure: a
// contextual instance cannot outlive the scope that produced it.
func (c *Container) validateScopes() error {
	var errs error

	for _, key := range c.graph.Keys() {
		d, ok := c.registry.Get(key)
		if !ok || d.Scope != scope.Singleton {
			continue
		}

		for _, reached := range c.graph.Closure(key) {
			reachedDesc, ok := c.registry.Get(reached)
			if !ok || reachedDesc.Scope != scope.Contextual {
				continue
			}
			errs = multierr.Append(errs, errScopeMismatch(
				key, reached,
				"singleton-owned instance cannot depend on a contextual-scoped instance",
			))
		}
	}

	return errs
}

// pathTo reconstructs one declared dependency path leading to target,
// for diagnosable missing-dependency reports.
func (c *Container) pathTo(target keys.Key) []keys.Key {
	for _, key := range c.graph.Keys() {
		for _, dep := range c.graph.DependsOn(key) {
			if dep == target {
				return []keys.Key{key, target}
			}
		}
	}
	return []keys.Key{target}
}
