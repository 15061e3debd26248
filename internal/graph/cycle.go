package graph

import "github.com/danpasecinic/loom/internal/keys"

// HasCycle reports whether any registered key can reach itself. The
// result is cached until the edge set changes.
func (g *Graph) HasCycle() bool {
	g.mu.RLock()
	if !g.dirty {
		cycle := g.cycle
		g.mu.RUnlock()
		return cycle
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dirty {
		g.cycle = g.detectLocked()
		g.dirty = false
	}
	return g.cycle
}

func (g *Graph) detectLocked() bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[keys.Key]int, len(g.edges))

	var dfs func(k keys.Key) bool
	dfs = func(k keys.Key) bool {
		state[k] = visiting
		for _, dep := range g.edges[k] {
			if _, ok := g.edges[dep]; !ok {
				continue
			}
			switch state[dep] {
			case visiting:
				return true
			case unvisited:
				if dfs(dep) {
					return true
				}
			}
		}
		state[k] = done
		return false
	}

	for k := range g.edges {
		if state[k] == unvisited && dfs(k) {
			return true
		}
	}
	return false
}

// CyclePath returns one dependency path starting at start that closes
// back on itself, or nil if start cannot reach a cycle. The returned
// path repeats the closing key, e.g. [a b a].
func (g *Graph) CyclePath(start keys.Key) []keys.Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[keys.Key]struct{})
	onPath := make(map[keys.Key]struct{})
	var path []keys.Key

	var dfs func(k keys.Key) []keys.Key
	dfs = func(k keys.Key) []keys.Key {
		if _, ok := onPath[k]; ok {
			// Close the loop from the first occurrence of k.
			for i, p := range path {
				if p == k {
					out := make([]keys.Key, 0, len(path)-i+1)
					out = append(out, path[i:]...)
					return append(out, k)
				}
			}
			return nil
		}
		if _, ok := visited[k]; ok {
			return nil
		}
		visited[k] = struct{}{}
		onPath[k] = struct{}{}
		path = append(path, k)

		for _, dep := range g.edges[k] {
			if _, ok := g.edges[dep]; !ok {
				continue
			}
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		delete(onPath, k)
		return nil
	}

	return dfs(start)
}

// CyclePaths returns one representative path per detected cycle.
func (g *Graph) CyclePaths() [][]keys.Key {
	if !g.HasCycle() {
		return nil
	}

	var out [][]keys.Key
	reported := make(map[keys.Key]struct{})
	for _, k := range g.Keys() {
		if _, ok := reported[k]; ok {
			continue
		}
		cycle := g.CyclePath(k)
		if cycle == nil {
			continue
		}
		for _, member := range cycle {
			reported[member] = struct{}{}
		}
		out = append(out, cycle)
	}
	return out
}
