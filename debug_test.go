package loom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/loom"
)

func TestGraphSnapshot(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideConfig(c))
	require.NoError(t, provideDatabase(c))

	info := c.Graph()
	require.Len(t, info.Providers, 2)

	byKey := make(map[string]loom.ProviderInfo)
	for _, p := range info.Providers {
		byKey[p.Key] = p
	}

	cfg := byKey[loom.KeyOf[*Config]()]
	assert.Empty(t, cfg.Dependencies)
	assert.Equal(t, []string{loom.KeyOf[*Database]()}, cfg.Dependents)
	assert.Equal(t, "singleton", cfg.Scope)
	assert.False(t, cfg.Instantiated)

	db := byKey[loom.KeyOf[*Database]()]
	assert.Equal(t, []string{loom.KeyOf[*Config]()}, db.Dependencies)
	assert.Equal(t, "factory", db.Kind)
}

func TestGraphTracksInstantiation(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideConfig(c))

	_, err := loom.Invoke[*Config](c)
	require.NoError(t, err)

	info := c.Graph()
	require.Len(t, info.Providers, 1)
	assert.True(t, info.Providers[0].Instantiated)
}

func TestSprintGraph(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideConfig(c))
	require.NoError(t, provideDatabase(c))

	out := c.SprintGraph()
	assert.Contains(t, out, "Config")
	assert.Contains(t, out, "Database")
	assert.Contains(t, out, "←")
}

func TestSprintGraphEmpty(t *testing.T) {
	t.Parallel()

	c := loom.New()
	assert.Contains(t, c.SprintGraph(), "empty container")
}

func TestSprintGraphDOT(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideConfig(c))
	require.NoError(t, provideDatabase(c))

	out := c.SprintGraphDOT()
	assert.Contains(t, out, "digraph dependencies {")
	assert.Contains(t, out, "->")
	assert.Contains(t, out, "}")
}
