package container

import (
	"context"
	"time"

	"go.uber.org/multierr"
)

// teardown finalizes a closed scope's constructions in strict reverse
// construction order, so no dependency is finalized before its
// dependents. Every cleanup is attempted even when earlier ones fail;
// the failures are reported together as one aggregate error.
func (c *Container) teardown(ctx context.Context, scopeID string, log []construction) error {
	var errs error
	for i := len(log) - 1; i >= 0; i-- {
		entry := log[i]
		if entry.cleanup == nil {
			continue
		}

		c.logger.Debug("cleaning up", "key", entry.key.String(), "scope", scopeID)
		if err := entry.cleanup(ctx, entry.instance); err != nil {
			errs = multierr.Append(errs, newError(
				CodeProviderFailure,
				entry.key,
				"cleanup failed",
				err,
			))
		}
	}

	if errs != nil {
		return errTeardownFailure(scopeID, errs)
	}
	return nil
}

// Stop shuts the engine down: OnStop hooks and resource cleanups run
// over the root construction log in reverse, then the root scope
// becomes inert. After Stop every singleton resolution fails with
// ScopeClosed.
func (c *Container) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateStopping || c.state == StateStopped {
		c.mu.Unlock()
		return nil
	}
	prev := c.state
	c.state = StateStopping
	c.mu.Unlock()

	log, err := c.root.close()
	if err != nil {
		// Root still open (e.g. a child scope is); a later Stop must
		// get another chance at the teardown.
		c.mu.Lock()
		c.state = prev
		c.mu.Unlock()
		return err
	}

	var errs error
	for i := len(log) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, c.stopOne(ctx, log[i]))
	}

	// Value providers never hit the construction log; their OnStop
	// hooks still run, after everything the log tracked.
	for _, key := range c.graph.Keys() {
		d, ok := c.registry.Get(key)
		if !ok || d.Kind != KindValue {
			continue
		}
		for i := len(d.OnStop) - 1; i >= 0; i-- {
			if hookErr := d.OnStop[i](ctx); hookErr != nil {
				errs = multierr.Append(errs, newError(CodeProviderFailure, key, "OnStop hook failed", hookErr))
			}
		}
	}

	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()

	if errs != nil {
		return errTeardownFailure(c.root.id, errs)
	}
	return nil
}

func (c *Container) stopOne(ctx context.Context, entry construction) error {
	start := time.Now()
	var errs error

	d, ok := c.registry.Get(entry.key)
	if ok {
		for i := len(d.OnStop) - 1; i >= 0; i-- {
			c.logger.Debug("running OnStop hook", "key", entry.key.String())
			if err := d.OnStop[i](ctx); err != nil {
				errs = multierr.Append(errs, newError(CodeProviderFailure, entry.key, "OnStop hook failed", err))
			}
		}
	}

	if entry.cleanup != nil {
		c.logger.Debug("cleaning up", "key", entry.key.String(), "scope", c.root.id)
		if err := entry.cleanup(ctx, entry.instance); err != nil {
			errs = multierr.Append(errs, newError(CodeProviderFailure, entry.key, "cleanup failed", err))
		}
	}

	c.observeStop(entry.key, time.Since(start), errs)
	return errs
}
