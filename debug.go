package loom

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/danpasecinic/loom/internal/keys"
)

type GraphInfo struct {
	Providers []ProviderInfo
}

type ProviderInfo struct {
	Key          string
	Dependencies []string
	Dependents   []string
	Scope        string
	Kind         string
	Instantiated bool
}

// Graph snapshots the registered providers and their declared edges,
// sorted by key, for inspection and debugging.
func (c *Container) Graph() GraphInfo {
	ks := c.internal.Keys()
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })

	providers := make([]ProviderInfo, 0, len(ks))
	for _, key := range ks {
		d, ok := c.internal.Descriptor(key)
		if !ok {
			continue
		}

		providers = append(providers, ProviderInfo{
			Key:          key.String(),
			Dependencies: keyStrings(c.internal.DependsOn(key)),
			Dependents:   keyStrings(c.internal.Dependents(key)),
			Scope:        d.Scope.String(),
			Kind:         d.Kind.String(),
			Instantiated: c.internal.Instantiated(key),
		})
	}

	return GraphInfo{Providers: providers}
}

// FprintGraph writes a human-readable dependency listing: one line per
// provider, a filled marker for materialized singletons.
func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Providers) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	for _, p := range info.Providers {
		marker := "○"
		if p.Instantiated {
			marker = "●"
		}

		if len(p.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, "%s %s [%s]\n", marker, p.Key, p.Scope)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s [%s] ← %s\n", marker, p.Key, p.Scope, strings.Join(p.Dependencies, ", "))
		}
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

// FprintGraphDOT writes the dependency graph in Graphviz DOT form.
func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, p := range info.Providers {
		style := ""
		if p.Instantiated {
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", p.Key, shortLabel(p.Key), style)
	}

	_, _ = fmt.Fprintln(w)

	for _, p := range info.Providers {
		for _, dep := range p.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", p.Key, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}

func shortLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}

func keyStrings(ks []keys.Key) []string {
	if len(ks) == 0 {
		return nil
	}
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}
	return out
}
