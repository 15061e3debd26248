package loom_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/loom"
)

func TestResolveObserver(t *testing.T) {
	t.Parallel()

	var resolved atomic.Int32
	var lastKey atomic.Value

	c := loom.New(loom.WithResolveObserver(func(key string, duration time.Duration, err error) {
		resolved.Add(1)
		lastKey.Store(key)
	}))
	require.NoError(t, provideConfig(c))

	_, err := loom.Invoke[*Config](c)
	require.NoError(t, err)

	assert.Equal(t, int32(1), resolved.Load())
	assert.Equal(t, loom.KeyOf[*Config](), lastKey.Load())
}

func TestResolveObserverSeesFailures(t *testing.T) {
	t.Parallel()

	var observedErr atomic.Value

	c := loom.New(loom.WithResolveObserver(func(key string, duration time.Duration, err error) {
		if err != nil {
			observedErr.Store(err)
		}
	}))

	_, err := loom.Invoke[*Config](c)
	require.Error(t, err)

	stored, ok := observedErr.Load().(error)
	require.True(t, ok)
	assert.True(t, loom.IsUnknownDependency(stored))
}

func TestProvideObserver(t *testing.T) {
	t.Parallel()

	var provided []string
	c := loom.New(loom.WithProvideObserver(func(key string) {
		provided = append(provided, key)
	}))

	require.NoError(t, provideConfig(c))
	require.NoError(t, provideDatabase(c))

	assert.Equal(t, []string{loom.KeyOf[*Config](), loom.KeyOf[*Database]()}, provided)
}

func TestStartStopObservers(t *testing.T) {
	t.Parallel()

	var started, stopped atomic.Int32
	c := loom.New(
		loom.WithStartObserver(func(key string, duration time.Duration, err error) {
			started.Add(1)
		}),
		loom.WithStopObserver(func(key string, duration time.Duration, err error) {
			stopped.Add(1)
		}),
	)
	require.NoError(t, provideConfig(c))

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, int32(1), started.Load())

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, int32(1), stopped.Load())
}
