package loom

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danpasecinic/loom/internal/container"
)

// Container is the public face of the resolution engine. Providers are
// registered against it, instances are resolved from it, and its
// lifecycle brackets the singleton scope: New creates the root scope,
// Stop tears it down.
type Container struct {
	internal *container.Container
	config   *containerConfig
}

type containerConfig struct {
	logger    *slog.Logger
	onResolve []ResolveObserver
	onProvide []ProvideObserver
	onStart   []StartObserver
	onStop    []StopObserver
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	internal := container.New(
		&container.Config{
			Logger:    cfg.logger,
			OnResolve: adaptResolveObservers(cfg.onResolve),
			OnProvide: adaptProvideObservers(cfg.onProvide),
			OnStart:   adaptStartObservers(cfg.onStart),
			OnStop:    adaptStopObservers(cfg.onStop),
		},
	)

	return &Container{
		internal: internal,
		config:   cfg,
	}
}

// Validate eagerly checks the whole registry: missing dependencies,
// cycles, and singleton-to-contextual scope violations.
func (c *Container) Validate() error {
	return c.internal.Validate()
}

func (c *Container) Size() int {
	return c.internal.Size()
}

func (c *Container) Keys() []string {
	keys := c.internal.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// Start constructs all non-lazy singleton providers in dependency
// order and runs their OnStart hooks.
func (c *Container) Start(ctx context.Context) error {
	return c.internal.Start(ctx)
}

// Stop shuts the engine down: OnStop hooks and resource cleanups run
// in reverse construction order and the singleton scope closes for
// good.
func (c *Container) Stop(ctx context.Context) error {
	return c.internal.Stop(ctx)
}

// Run starts the container and blocks until ctx is done or the process
// receives SIGINT/SIGTERM, then stops it.
func (c *Container) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-quit:
	}

	signal.Stop(quit)
	close(quit)

	return c.Stop(context.Background())
}
