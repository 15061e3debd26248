package graph

import (
	"errors"
	"sort"

	"github.com/danpasecinic/loom/internal/keys"
)

var ErrCycle = errors.New("cycle detected in dependency graph")

// StartupOrder returns all registered keys sorted so that every key
// appears after its dependencies. Ties are broken alphabetically so
// the order is stable across runs.
func (g *Graph) StartupOrder() ([]keys.Key, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inDegree := make(map[keys.Key]int, len(g.edges))
	dependents := make(map[keys.Key][]keys.Key, len(g.edges))
	for k := range g.edges {
		inDegree[k] = 0
	}
	for from, deps := range g.edges {
		for _, dep := range deps {
			if _, ok := g.edges[dep]; !ok {
				continue
			}
			dependents[dep] = append(dependents[dep], from)
			inDegree[from]++
		}
	}

	var ready []keys.Key
	for k, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, k)
		}
	}
	sortKeys(ready)

	order := make([]keys.Key, 0, len(g.edges))
	for len(ready) > 0 {
		k := ready[0]
		ready = ready[1:]
		order = append(order, k)

		next := dependents[k]
		sortKeys(next)
		for _, dep := range next {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	if len(order) != len(g.edges) {
		return nil, ErrCycle
	}
	return order, nil
}

// ShutdownOrder is StartupOrder reversed: dependents before their
// dependencies.
func (g *Graph) ShutdownOrder() ([]keys.Key, error) {
	order, err := g.StartupOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// StartupGroups partitions the registered keys into levels: every key
// in level n depends only on keys in levels < n, so members of one
// level can be constructed concurrently.
func (g *Graph) StartupGroups() ([][]keys.Key, error) {
	if g.HasCycle() {
		return nil, ErrCycle
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	levels := make(map[keys.Key]int, len(g.edges))
	var levelOf func(k keys.Key) int
	levelOf = func(k keys.Key) int {
		if lvl, ok := levels[k]; ok {
			return lvl
		}
		max := -1
		for _, dep := range g.edges[k] {
			if _, ok := g.edges[dep]; !ok {
				continue
			}
			if l := levelOf(dep); l > max {
				max = l
			}
		}
		levels[k] = max + 1
		return max + 1
	}

	maxLevel := 0
	for k := range g.edges {
		if l := levelOf(k); l > maxLevel {
			maxLevel = l
		}
	}

	groups := make([][]keys.Key, maxLevel+1)
	for k, lvl := range levels {
		groups[lvl] = append(groups[lvl], k)
	}
	for _, group := range groups {
		sortKeys(group)
	}
	return groups, nil
}

func insertSorted(ks []keys.Key, k keys.Key) []keys.Key {
	i := sort.Search(len(ks), func(i int) bool { return ks[i] >= k })
	ks = append(ks, "")
	copy(ks[i+1:], ks[i:])
	ks[i] = k
	return ks
}
