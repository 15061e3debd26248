package loom_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/loom"
)

type Session struct {
	ID int
}

func provideSession(c *loom.Container) error {
	var counter int
	return loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Session, error) {
		counter++
		return &Session{ID: counter}, nil
	}, loom.WithScope(loom.Contextual))
}

func TestContextualRequiresScope(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideSession(c))

	_, err := loom.Invoke[*Session](c)
	require.Error(t, err)
	assert.True(t, loom.IsScopeMismatch(err))
}

func TestContextualCachedWithinScope(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideSession(c))

	ctx, handle, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	defer handle.Close(context.Background())

	first, err := loom.InvokeCtx[*Session](ctx, c)
	require.NoError(t, err)
	second, err := loom.InvokeCtx[*Session](ctx, c)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestContextualDistinctAcrossScopes(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideSession(c))

	ctx1, h1, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	s1, err := loom.InvokeCtx[*Session](ctx1, c)
	require.NoError(t, err)
	require.NoError(t, h1.Close(context.Background()))

	ctx2, h2, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	s2, err := loom.InvokeCtx[*Session](ctx2, c)
	require.NoError(t, err)
	require.NoError(t, h2.Close(context.Background()))

	assert.NotSame(t, s1, s2)
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestSingletonSurvivesScopes(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideConfig(c))
	require.NoError(t, provideSession(c))

	var fromScope *Config
	require.NoError(t, c.InScope(context.Background(), func(ctx context.Context) error {
		cfg, err := loom.InvokeCtx[*Config](ctx, c)
		fromScope = cfg
		return err
	}))

	root, err := loom.Invoke[*Config](c)
	require.NoError(t, err)
	assert.Same(t, fromScope, root)
}

func TestTransientAlwaysFresh(t *testing.T) {
	t.Parallel()

	c := loom.New()
	var counter int
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Session, error) {
		counter++
		return &Session{ID: counter}, nil
	}, loom.WithScope(loom.Transient)))

	first, err := loom.Invoke[*Session](c)
	require.NoError(t, err)
	second, err := loom.Invoke[*Session](c)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, counter)
}

func TestDeclaredTransientDependencyBuiltOnce(t *testing.T) {
	t.Parallel()

	c := loom.New()
	builds := 0
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Session, error) {
		builds++
		return &Session{ID: builds}, nil
	}, loom.WithScope(loom.Transient)))
	require.NoError(t, loom.Provide(c, func(ctx context.Context, r loom.Resolver) (*Server, error) {
		_, err := loom.ResolveAs[*Session](ctx, r, loom.KeyOf[*Session]())
		if err != nil {
			return nil, err
		}
		return &Server{}, nil
	}, loom.WithDependencies(loom.KeyOf[*Session]())))

	_, err := loom.Invoke[*Server](c)
	require.NoError(t, err)

	// The declared edge orders and validates; only the factory's own
	// resolution constructs the transient.
	assert.Equal(t, 1, builds)
}

func TestScopeCloseTwice(t *testing.T) {
	t.Parallel()

	c := loom.New()

	_, handle, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	require.NoError(t, handle.Close(context.Background()))

	err = handle.Close(context.Background())
	require.Error(t, err)
	assert.True(t, loom.IsScopeOrderingViolation(err))
}

func TestNestedScopesCloseInOrder(t *testing.T) {
	t.Parallel()

	c := loom.New()

	outerCtx, outer, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	_, inner, err := c.EnterScope(outerCtx)
	require.NoError(t, err)

	require.NoError(t, inner.Close(context.Background()))
	require.NoError(t, outer.Close(context.Background()))
}

func TestClosingOuterScopeFirst(t *testing.T) {
	t.Parallel()

	c := loom.New()

	outerCtx, outer, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	_, inner, err := c.EnterScope(outerCtx)
	require.NoError(t, err)

	err = outer.Close(context.Background())
	require.Error(t, err)
	assert.True(t, loom.IsScopeOrderingViolation(err))

	require.NoError(t, inner.Close(context.Background()))
	require.NoError(t, outer.Close(context.Background()))
}

func TestResolveInClosedScope(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideSession(c))

	ctx, handle, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	require.NoError(t, handle.Close(context.Background()))

	_, err = loom.InvokeCtx[*Session](ctx, c)
	require.Error(t, err)
	assert.True(t, loom.IsScopeClosed(err))
}

func TestNestedScopesHaveOwnInstances(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideSession(c))

	outerCtx, outer, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	innerCtx, inner, err := c.EnterScope(outerCtx)
	require.NoError(t, err)

	outerSession, err := loom.InvokeCtx[*Session](outerCtx, c)
	require.NoError(t, err)
	innerSession, err := loom.InvokeCtx[*Session](innerCtx, c)
	require.NoError(t, err)
	assert.NotSame(t, outerSession, innerSession)

	require.NoError(t, inner.Close(context.Background()))
	require.NoError(t, outer.Close(context.Background()))
}

func TestInScopeCombinesErrors(t *testing.T) {
	t.Parallel()

	c := loom.New()
	require.NoError(t, provideSession(c))

	err := c.InScope(context.Background(), func(ctx context.Context) error {
		_, err := loom.InvokeCtx[*Session](ctx, c)
		return err
	})
	require.NoError(t, err)
}

func TestScopeHandleID(t *testing.T) {
	t.Parallel()

	c := loom.New()

	_, h1, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	defer h1.Close(context.Background())
	_, h2, err := c.EnterScope(context.Background())
	require.NoError(t, err)
	defer h2.Close(context.Background())

	assert.NotEmpty(t, h1.ID())
	assert.NotEqual(t, h1.ID(), h2.ID())
}
