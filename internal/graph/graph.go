package graph

import (
	"sort"
	"sync"

	"github.com/danpasecinic/loom/internal/keys"
)

// Graph tracks the declared dependency edges between registered
// providers. Edges point from a provider to the providers it depends
// on. Unregistered dependencies are tolerated as dangling edges until
// Missing is consulted.
type Graph struct {
	mu    sync.RWMutex
	edges map[keys.Key][]keys.Key
	dirty bool
	cycle bool
}

func New() *Graph {
	return &Graph{
		edges: make(map[keys.Key][]keys.Key),
	}
}

func (g *Graph) Add(key keys.Key, dependsOn []keys.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	deps := make([]keys.Key, len(dependsOn))
	copy(deps, dependsOn)
	g.edges[key] = deps
	g.dirty = true
}

func (g *Graph) Remove(key keys.Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.edges, key)
	g.dirty = true
}

func (g *Graph) Has(key keys.Key) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.edges[key]
	return ok
}

// DependsOn returns the declared dependencies of key, in declared order.
func (g *Graph) DependsOn(key keys.Key) []keys.Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	deps, ok := g.edges[key]
	if !ok {
		return nil
	}
	out := make([]keys.Key, len(deps))
	copy(out, deps)
	return out
}

// Dependents returns the registered keys that depend on key, sorted.
func (g *Graph) Dependents(key keys.Key) []keys.Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []keys.Key
	for from, deps := range g.edges {
		for _, dep := range deps {
			if dep == key {
				out = append(out, from)
				break
			}
		}
	}
	sortKeys(out)
	return out
}

// Keys returns all registered keys, sorted for deterministic walks.
func (g *Graph) Keys() []keys.Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.sortedKeysLocked()
}

func (g *Graph) sortedKeysLocked() []keys.Key {
	out := make([]keys.Key, 0, len(g.edges))
	for k := range g.edges {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}

func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}

// Missing returns dependency keys that are referenced by an edge but
// never registered, sorted, each reported once.
func (g *Graph) Missing() []keys.Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[keys.Key]struct{})
	var missing []keys.Key
	for _, deps := range g.edges {
		for _, dep := range deps {
			if _, ok := g.edges[dep]; ok {
				continue
			}
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			missing = append(missing, dep)
		}
	}
	sortKeys(missing)
	return missing
}

// Closure returns every key reachable from start through declared
// edges, excluding start itself unless it is reachable via a cycle.
func (g *Graph) Closure(start keys.Key) []keys.Key {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[keys.Key]struct{})
	var out []keys.Key
	var walk func(k keys.Key)
	walk = func(k keys.Key) {
		for _, dep := range g.edges[k] {
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}
			out = append(out, dep)
			walk(dep)
		}
	}
	walk(start)
	return out
}

func sortKeys(ks []keys.Key) {
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
}
