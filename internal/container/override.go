package container

// Override swaps the binding for d.Key with d and returns a restore
// func that reinstates the previous binding. While the override is
// active, every resolution of the key, direct or transitive, hits the
// replacement. Any instance the original or the override left in the
// root cache is evicted on both swap and restore, so each side always
// constructs its own instance; cleanups already recorded still run at
// teardown.
func (c *Container) Override(d *Descriptor) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Has(d.Key) {
		return nil, errUnknownDependency(d.Key)
	}

	prev, err := c.registry.Replace(d)
	if err != nil {
		return nil, err
	}
	c.graph.Add(d.Key, d.DependsOn)

	if c.graph.HasCycle() {
		cycle := c.graph.CyclePath(d.Key)
		c.registry.Restore(d.Key, prev)
		c.restoreGraph(d, prev)
		return nil, errCyclicDependency(cycle)
	}

	c.root.evict(d.Key)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.registry.Restore(d.Key, prev)
		c.restoreGraph(d, prev)
		c.root.evict(d.Key)
	}, nil
}

func (c *Container) restoreGraph(d *Descriptor, prev *Descriptor) {
	if prev == nil {
		c.graph.Remove(d.Key)
		return
	}
	c.graph.Add(prev.Key, prev.DependsOn)
}
