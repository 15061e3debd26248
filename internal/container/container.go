package container

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danpasecinic/loom/internal/graph"
	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

type State int

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

// Observer callbacks fire around resolution and lifecycle transitions.
type (
	ResolveObserver func(key keys.Key, duration time.Duration, err error)
	ProvideObserver func(key keys.Key)
	StartObserver   func(key keys.Key, duration time.Duration, err error)
	StopObserver    func(key keys.Key, duration time.Duration, err error)
)

type Config struct {
	Logger    *slog.Logger
	OnResolve []ResolveObserver
	OnProvide []ProvideObserver
	OnStart   []StartObserver
	OnStop    []StopObserver
}

// Container is the resolution engine. It owns the provider registry,
// the dependency graph used for eager validation and startup ordering,
// and the root singleton scope context.
type Container struct {
	mu       sync.RWMutex
	registry *Registry
	graph    *graph.Graph
	logger   *slog.Logger
	root     *ScopeContext
	state    State

	hookMu  sync.Mutex
	hookRan map[keys.Key]bool

	onResolve []ResolveObserver
	onProvide []ProvideObserver
	onStart   []StartObserver
	onStop    []StopObserver
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Container{
		registry:  NewRegistry(),
		graph:     graph.New(),
		logger:    logger,
		root:      newScopeContext(scope.Singleton, nil),
		hookRan:   make(map[keys.Key]bool),
		onResolve: cfg.OnResolve,
		onProvide: cfg.OnProvide,
		onStart:   cfg.OnStart,
		onStop:    cfg.OnStop,
	}
}

// Register adds a provider descriptor. Registration-time cycle checks
// reject a descriptor whose declared dependencies close a loop, so a
// broken registry fails at wiring time rather than first resolution.
func (c *Container) Register(d *Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.registry.Register(d); err != nil {
		return err
	}
	c.graph.Add(d.Key, d.DependsOn)

	if c.graph.HasCycle() {
		cycle := c.graph.CyclePath(d.Key)
		c.registry.Remove(d.Key)
		c.graph.Remove(d.Key)
		return errCyclicDependency(cycle)
	}

	for _, hook := range c.onProvide {
		hook(d.Key)
	}
	return nil
}

func (c *Container) Has(key keys.Key) bool {
	return c.registry.Has(key)
}

func (c *Container) Keys() []keys.Key {
	return c.registry.Keys()
}

func (c *Container) Size() int {
	return c.registry.Size()
}

func (c *Container) Descriptor(key keys.Key) (*Descriptor, bool) {
	return c.registry.Get(key)
}

// Instantiated reports whether the root context holds a ready instance
// for key.
func (c *Container) Instantiated(key keys.Key) bool {
	_, ok := c.root.instance(key)
	return ok
}

// Instance returns the ready root-scope instance for key, if any.
// Value providers count as always materialized.
func (c *Container) Instance(key keys.Key) (any, bool) {
	if d, ok := c.registry.Get(key); ok && d.Kind == KindValue {
		return d.Value, true
	}
	return c.root.instance(key)
}

func (c *Container) DependsOn(key keys.Key) []keys.Key {
	return c.graph.DependsOn(key)
}

func (c *Container) Dependents(key keys.Key) []keys.Key {
	return c.graph.Dependents(key)
}

func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// EnterScope opens a contextual scope nested under the innermost scope
// already on ctx (or the root). The returned context carries the new
// scope for resolutions on this call path.
func (c *Container) EnterScope(ctx context.Context) (context.Context, *ScopeContext, error) {
	parent := ScopeFrom(ctx)
	if parent == nil {
		parent = c.root
	}
	if err := parent.addChild(); err != nil {
		return ctx, nil, err
	}

	sc := newScopeContext(scope.Contextual, parent)
	c.logger.Debug("scope entered", "scope", sc.id, "parent", parent.id)
	return WithScope(ctx, sc), sc, nil
}

// ExitScope closes sc and tears down everything it constructed, in
// reverse construction order. Scopes must close innermost-first.
func (c *Container) ExitScope(ctx context.Context, sc *ScopeContext) error {
	if sc == c.root {
		return errScopeOrdering("the root scope is closed by Stop, not ExitScope")
	}

	log, err := sc.close()
	if err != nil {
		return err
	}
	if sc.parent != nil {
		sc.parent.removeChild()
	}

	c.logger.Debug("scope exited", "scope", sc.id, "constructed", len(log))
	return c.teardown(ctx, sc.id, log)
}

// Start eagerly constructs every non-lazy singleton provider in
// dependency order and runs its OnStart hooks. Providers with no
// dependency relationship between them start concurrently, level by
// level.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateNew {
		c.mu.Unlock()
		return newError(CodeAlreadyStarted, "", "engine already started", nil)
	}
	c.state = StateStarting
	c.mu.Unlock()

	groups, err := c.graph.StartupGroups()
	if err != nil {
		return errValidationFailed("cannot determine startup order", err)
	}

	for _, group := range groups {
		eg, gctx := errgroup.WithContext(ctx)
		for _, key := range group {
			d, ok := c.registry.Get(key)
			if !ok || d.Lazy || d.Scope != scope.Singleton {
				continue
			}
			eg.Go(func() error {
				return c.startOne(gctx, d)
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.state = StateRunning
	c.mu.Unlock()
	return nil
}

func (c *Container) startOne(ctx context.Context, d *Descriptor) error {
	start := time.Now()

	if d.Kind != KindValue {
		if _, err := c.Resolve(ctx, d.Key); err != nil {
			c.observeStart(d.Key, time.Since(start), err)
			return err
		}
	}

	var startErr error
	for _, hook := range d.OnStart {
		c.logger.Debug("running OnStart hook", "key", d.Key.String())
		if err := hook(ctx); err != nil {
			startErr = newError(CodeProviderFailure, d.Key, "OnStart hook failed", err)
			break
		}
	}

	c.hookMu.Lock()
	c.hookRan[d.Key] = true
	c.hookMu.Unlock()

	c.observeStart(d.Key, time.Since(start), startErr)
	return startErr
}

// runLazyHooks fires OnStart hooks for a lazy singleton constructed
// after the engine reached Running.
func (c *Container) runLazyHooks(ctx context.Context, d *Descriptor) error {
	if len(d.OnStart) == 0 || c.State() != StateRunning {
		return nil
	}

	c.hookMu.Lock()
	if c.hookRan[d.Key] {
		c.hookMu.Unlock()
		return nil
	}
	c.hookRan[d.Key] = true
	c.hookMu.Unlock()

	for _, hook := range d.OnStart {
		c.logger.Debug("running lazy OnStart hook", "key", d.Key.String())
		if err := hook(ctx); err != nil {
			return newError(CodeProviderFailure, d.Key, "OnStart hook failed", err)
		}
	}
	return nil
}

func (c *Container) observeResolve(key keys.Key, d time.Duration, err error) {
	for _, hook := range c.onResolve {
		hook(key, d, err)
	}
}

func (c *Container) observeStart(key keys.Key, d time.Duration, err error) {
	for _, hook := range c.onStart {
		hook(key, d, err)
	}
}

func (c *Container) observeStop(key keys.Key, d time.Duration, err error) {
	for _, hook := range c.onStop {
		hook(key, d, err)
	}
}
