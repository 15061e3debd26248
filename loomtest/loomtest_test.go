package loomtest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danpasecinic/loom"
	"github.com/danpasecinic/loom/loomtest"
)

type clock struct {
	now string
}

type useClock struct {
	clock *clock
}

func TestProvideAndInvoke(t *testing.T) {
	tc := loomtest.New(t)

	loomtest.Provide(tc, func(ctx context.Context, r loom.Resolver) (*clock, error) {
		return &clock{now: "real"}, nil
	})

	c := loomtest.Invoke[*clock](tc)
	assert.Equal(t, "real", c.now)
}

func TestProvideValue(t *testing.T) {
	tc := loomtest.New(t)

	loomtest.ProvideValue(tc, &clock{now: "fixed"})
	tc.RequireValidate()

	assert.Equal(t, "fixed", loomtest.Invoke[*clock](tc).now)
}

// recorderTB captures Cleanup registrations so the test can run them
// at a point of its choosing.
type recorderTB struct {
	*testing.T
	cleanups []func()
}

func (r *recorderTB) Cleanup(f func()) {
	r.cleanups = append(r.cleanups, f)
}

func (r *recorderTB) runCleanups() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
	r.cleanups = nil
}

func TestOverrideRestoredOnCleanup(t *testing.T) {
	rec := &recorderTB{T: t}
	tc := loomtest.New(rec)
	loomtest.Provide(tc, func(ctx context.Context, r loom.Resolver) (*clock, error) {
		return &clock{now: "real"}, nil
	})
	// Pin the container's own stop cleanup before the override's.
	stop := rec.cleanups
	rec.cleanups = nil

	loomtest.Override(tc, func(ctx context.Context, r loom.Resolver) (*clock, error) {
		return &clock{now: "stub"}, nil
	})
	assert.Equal(t, "stub", loomtest.Invoke[*clock](tc).now)

	rec.runCleanups()
	assert.Equal(t, "real", loomtest.Invoke[*clock](tc).now)

	rec.cleanups = stop
	t.Cleanup(rec.runCleanups)
}

func TestOverrideValueStubsTransitively(t *testing.T) {
	tc := loomtest.New(t)

	loomtest.Provide(tc, func(ctx context.Context, r loom.Resolver) (*clock, error) {
		return &clock{now: "real"}, nil
	})
	loomtest.Provide(tc, func(ctx context.Context, r loom.Resolver) (*useClock, error) {
		c, err := loom.ResolveAs[*clock](ctx, r, loom.KeyOf[*clock]())
		if err != nil {
			return nil, err
		}
		return &useClock{clock: c}, nil
	}, loom.WithDependencies(loom.KeyOf[*clock]()), loom.WithScope(loom.Transient))

	loomtest.OverrideValue(tc, &clock{now: "stub"})

	assert.Equal(t, "stub", loomtest.Invoke[*useClock](tc).clock.now)
}

func TestRequireStart(t *testing.T) {
	tc := loomtest.New(t)

	built := false
	loomtest.Provide(tc, func(ctx context.Context, r loom.Resolver) (*clock, error) {
		built = true
		return &clock{}, nil
	})

	tc.RequireStart(context.Background())
	assert.True(t, built)
}

func TestRequireEnterScope(t *testing.T) {
	tc := loomtest.New(t)

	loomtest.Provide(tc, func(ctx context.Context, r loom.Resolver) (*clock, error) {
		return &clock{now: "scoped"}, nil
	}, loom.WithScope(loom.Contextual))

	ctx := tc.RequireEnterScope(context.Background())
	first := loomtest.InvokeCtx[*clock](tc, ctx)
	second := loomtest.InvokeCtx[*clock](tc, ctx)
	assert.Same(t, first, second)
}
