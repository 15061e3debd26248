package loom_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/loom"
)

func TestConcurrentResolveSingleFlight(t *testing.T) {
	t.Parallel()

	c := loom.New()
	var calls atomic.Int32
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Database, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &Database{Name: "shared"}, nil
	}))

	const n = 16
	results := make([]*Database, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			db, err := loom.Invoke[*Database](c)
			assert.NoError(t, err)
			results[i] = db
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestConcurrentResolveSharesFailure(t *testing.T) {
	t.Parallel()

	c := loom.New()
	var calls atomic.Int32
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Database, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return nil, assert.AnError
	}))

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := loom.Invoke[*Database](c)
			assert.Error(t, err)
			assert.True(t, loom.IsProviderFailure(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestWaiterCancellationLeavesOwnerAlone(t *testing.T) {
	t.Parallel()

	c := loom.New()
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Database, error) {
		close(started)
		<-release
		return &Database{Name: "slow"}, nil
	}))

	ownerDone := make(chan error, 1)
	go func() {
		_, err := loom.Invoke[*Database](c)
		ownerDone <- err
	}()
	<-started

	// A waiter joins the in-flight construction, then gives up.
	waiterCtx, cancelWaiter := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		_, err := loom.InvokeCtx[*Database](waiterCtx, c)
		waiterDone <- err
	}()
	cancelWaiter()

	err := <-waiterDone
	require.Error(t, err)
	assert.True(t, loom.IsCancelled(err))

	// The owner is unaffected and the instance lands in the cache.
	close(release)
	require.NoError(t, <-ownerDone)

	db, err := loom.Invoke[*Database](c)
	require.NoError(t, err)
	assert.Equal(t, "slow", db.Name)
}

func TestOwnerCancellationFailsWaiters(t *testing.T) {
	t.Parallel()

	c := loom.New()
	started := make(chan struct{})
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Database, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	ownerCtx, cancelOwner := context.WithCancel(context.Background())
	ownerDone := make(chan error, 1)
	go func() {
		_, err := loom.InvokeCtx[*Database](ownerCtx, c)
		ownerDone <- err
	}()
	<-started

	waiterDone := make(chan error, 1)
	go func() {
		_, err := loom.Invoke[*Database](c)
		waiterDone <- err
	}()

	cancelOwner()

	ownerErr := <-ownerDone
	require.Error(t, ownerErr)
	assert.True(t, loom.IsCancelled(ownerErr))

	waiterErr := <-waiterDone
	require.Error(t, waiterErr)
	assert.True(t, loom.IsCancelled(waiterErr))

	// The failure is terminal for the scope.
	_, err := loom.Invoke[*Database](c)
	require.Error(t, err)
	assert.True(t, loom.IsCancelled(err))
}

func TestInvokeCtxCancelledBeforeConstruction(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideConfig(c))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loom.InvokeCtx[*Config](ctx, c)
	require.Error(t, err)
	assert.True(t, loom.IsCancelled(err))
}

func TestConcurrentScopesAreIndependent(t *testing.T) {
	t.Parallel()

	c := loom.New()
	var calls atomic.Int32
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Session, error) {
		calls.Add(1)
		return &Session{ID: int(calls.Load())}, nil
	}, loom.WithScope(loom.Contextual)))

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			err := c.InScope(context.Background(), func(ctx context.Context) error {
				first, err := loom.InvokeCtx[*Session](ctx, c)
				if err != nil {
					return err
				}
				second, err := loom.InvokeCtx[*Session](ctx, c)
				if err != nil {
					return err
				}
				assert.Same(t, first, second)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(n), calls.Load())
}
