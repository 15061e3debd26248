package loom

import (
	"context"

	"github.com/danpasecinic/loom/internal/container"
	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

// Provider constructs one instance of T. It receives the caller's
// context and a Resolver for fetching dependencies; it may block, and
// cancellation arrives through ctx.
type Provider[T any] func(ctx context.Context, r Resolver) (T, error)

// CleanupFunc finalizes an instance produced by a resource provider.
// It runs during scope teardown, in reverse construction order.
type CleanupFunc[T any] func(ctx context.Context, instance T) error

// Hook runs around engine start and stop.
type Hook func(ctx context.Context) error

type ProviderOption func(*providerConfig)

type providerConfig struct {
	name         string
	dependencies []string
	onStart      []Hook
	onStop       []Hook
	scope        Scope
	lazy         bool
}

// KeyOf returns the dependency key string for type T, for use with
// WithDependencies.
func KeyOf[T any]() string {
	return keys.For[T]().String()
}

// NamedKeyOf returns the dependency key string for type T qualified
// with name.
func NamedKeyOf[T any](name string) string {
	return keys.Named[T](name).String()
}

// Provide registers a factory provider for T.
func Provide[T any](c *Container, provider Provider[T], opts ...ProviderOption) error {
	cfg := applyOptions(opts)
	return c.internal.Register(descriptor(c, cfg, keyFor[T](cfg), container.KindFactory, provider, nil, nil))
}

// ProvideValue registers an already-built instance of T. Values are
// singleton scoped and never torn down by the engine.
func ProvideValue[T any](c *Container, value T, opts ...ProviderOption) error {
	cfg := applyOptions(opts)
	if cfg.scope != scope.Singleton {
		return &Error{Code: ErrCodeInvalidScope, Key: keyFor[T](cfg), Message: "value providers are always singleton scoped"}
	}

	d := &container.Descriptor{
		Key:     keyFor[T](cfg),
		Scope:   scope.Singleton,
		Kind:    container.KindValue,
		Value:   value,
		OnStart: hooks(cfg.onStart),
		OnStop:  hooks(cfg.onStop),
	}
	return c.internal.Register(d)
}

// ProvideResource registers a provider whose instances need an
// explicit cleanup step. The cleanup runs when the owning scope closes,
// after everything constructed later has already been finalized.
// Resources cannot be transient: the engine keeps no reference to
// transient instances and so cannot schedule their cleanup.
func ProvideResource[T any](c *Container, provider Provider[T], cleanup CleanupFunc[T], opts ...ProviderOption) error {
	cfg := applyOptions(opts)
	return c.internal.Register(descriptor(c, cfg, keyFor[T](cfg), container.KindResource, provider, cleanup, nil))
}

// ProvideNamed registers a provider for T under a qualified key.
func ProvideNamed[T any](c *Container, name string, provider Provider[T], opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return Provide(c, provider, opts...)
}

// ProvideNamedValue registers a value for T under a qualified key.
func ProvideNamedValue[T any](c *Container, name string, value T, opts ...ProviderOption) error {
	opts = append(opts, WithName(name))
	return ProvideValue(c, value, opts...)
}

// Alias registers I as an alias resolving to the provider registered
// for T. The alias shares T's instance and lifetime.
func Alias[I, T any](c *Container, opts ...ProviderOption) error {
	cfg := applyOptions(opts)

	aliasKey := keys.For[I]()
	if cfg.name != "" {
		aliasKey = keys.Named[I](cfg.name)
	}
	implKey := keys.For[T]()

	d := &container.Descriptor{
		Key:       aliasKey,
		DependsOn: []keys.Key{implKey},
		Scope:     scope.Transient,
		Kind:      container.KindFactory,
		Factory: func(ctx context.Context, r container.Resolver) (any, error) {
			return r.Resolve(ctx, implKey)
		},
		OnStart: hooks(cfg.onStart),
		OnStop:  hooks(cfg.onStop),
	}
	return c.internal.Register(d)
}

func WithName(name string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.name = name
	}
}

// WithDependencies declares the dependency keys this provider needs,
// in construction order. The engine resolves them before invoking the
// factory and uses them for cycle and scope validation.
func WithDependencies(deps ...string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.dependencies = deps
	}
}

func WithOnStart(hook Hook) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.onStart = append(cfg.onStart, hook)
	}
}

func WithOnStop(hook Hook) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.onStop = append(cfg.onStop, hook)
	}
}

func WithScope(s Scope) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.scope = s
	}
}

// WithLazy exempts a singleton provider from eager construction during
// Start; it is built on first resolution instead.
func WithLazy() ProviderOption {
	return func(cfg *providerConfig) {
		cfg.lazy = true
	}
}

func applyOptions(opts []ProviderOption) *providerConfig {
	cfg := &providerConfig{scope: scope.Singleton}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func keyFor[T any](cfg *providerConfig) keys.Key {
	if cfg.name != "" {
		return keys.Named[T](cfg.name)
	}
	return keys.For[T]()
}

func descriptor[T any](
	c *Container,
	cfg *providerConfig,
	key keys.Key,
	kind container.Kind,
	provider Provider[T],
	cleanup CleanupFunc[T],
	value any,
) *container.Descriptor {
	deps := make([]keys.Key, len(cfg.dependencies))
	for i, dep := range cfg.dependencies {
		deps[i] = keys.Key(dep)
	}

	d := &container.Descriptor{
		Key:       key,
		DependsOn: deps,
		Scope:     cfg.scope,
		Kind:      kind,
		Value:     value,
		OnStart:   hooks(cfg.onStart),
		OnStop:    hooks(cfg.onStop),
		Lazy:      cfg.lazy,
	}

	if provider != nil {
		d.Factory = func(ctx context.Context, r container.Resolver) (any, error) {
			return provider(ctx, &resolverAdapter{container: c})
		}
	}
	if cleanup != nil {
		d.Cleanup = func(ctx context.Context, instance any) error {
			typed, ok := instance.(T)
			if !ok {
				return &Error{Code: ErrCodeProviderFailure, Key: key, Message: "cleanup received unexpected instance type"}
			}
			return cleanup(ctx, typed)
		}
	}
	return d
}

func hooks(hs []Hook) []container.Hook {
	if len(hs) == 0 {
		return nil
	}
	out := make([]container.Hook, len(hs))
	for i, h := range hs {
		out[i] = container.Hook(h)
	}
	return out
}
