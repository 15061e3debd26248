package loom

import (
	"context"

	"github.com/danpasecinic/loom/internal/keys"
)

// Resolver is the dependency lookup surface handed to providers.
type Resolver interface {
	Resolve(ctx context.Context, key string) (any, error)
	Has(key string) bool
}

type resolverAdapter struct {
	container *Container
}

func (r *resolverAdapter) Resolve(ctx context.Context, key string) (any, error) {
	return r.container.internal.Resolve(ctx, keys.Key(key))
}

func (r *resolverAdapter) Has(key string) bool {
	return r.container.internal.Has(keys.Key(key))
}

// ResolveAs fetches a dependency through a Resolver and asserts its
// type, for use inside providers.
func ResolveAs[T any](ctx context.Context, r Resolver, key string) (T, error) {
	var zero T
	instance, err := r.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &Error{
			Code:    ErrCodeProviderFailure,
			Key:     keys.Key(key),
			Message: "resolved instance has unexpected type " + keys.FromValue(instance).String(),
		}
	}
	return typed, nil
}

// Invoke resolves T against the root scope.
func Invoke[T any](c *Container) (T, error) {
	return InvokeCtx[T](context.Background(), c)
}

// InvokeCtx resolves T. The context selects the contextual scope for
// contextual providers and carries cancellation into factories.
func InvokeCtx[T any](ctx context.Context, c *Container) (T, error) {
	return invokeKey[T](ctx, c, keys.For[T]())
}

func InvokeNamed[T any](c *Container, name string) (T, error) {
	return InvokeNamedCtx[T](context.Background(), c, name)
}

func InvokeNamedCtx[T any](ctx context.Context, c *Container, name string) (T, error) {
	return invokeKey[T](ctx, c, keys.Named[T](name))
}

func invokeKey[T any](ctx context.Context, c *Container, key keys.Key) (T, error) {
	var zero T

	instance, err := c.internal.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, &Error{
			Code:    ErrCodeProviderFailure,
			Key:     key,
			Message: "resolved instance has unexpected type " + keys.FromValue(instance).String(),
		}
	}
	return typed, nil
}

func MustInvoke[T any](c *Container) T {
	v, err := Invoke[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

func MustInvokeCtx[T any](ctx context.Context, c *Container) T {
	v, err := InvokeCtx[T](ctx, c)
	if err != nil {
		panic(err)
	}
	return v
}

func MustInvokeNamed[T any](c *Container, name string) T {
	v, err := InvokeNamed[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

func Has[T any](c *Container) bool {
	return c.internal.Has(keys.For[T]())
}

func HasNamed[T any](c *Container, name string) bool {
	return c.internal.Has(keys.Named[T](name))
}

// Optional wraps a dependency that may or may not be resolvable.
type Optional[T any] struct {
	value   T
	present bool
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Optional[T]) Value() T {
	return o.value
}

func (o Optional[T]) Present() bool {
	return o.present
}

func (o Optional[T]) OrElse(defaultValue T) T {
	if o.present {
		return o.value
	}
	return defaultValue
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// InvokeOptional resolves T if a provider is registered and resolution
// succeeds, and returns None otherwise.
func InvokeOptional[T any](c *Container) Optional[T] {
	return InvokeOptionalCtx[T](context.Background(), c)
}

func InvokeOptionalCtx[T any](ctx context.Context, c *Container) Optional[T] {
	if !Has[T](c) {
		return None[T]()
	}
	v, err := InvokeCtx[T](ctx, c)
	if err != nil {
		return None[T]()
	}
	return Some(v)
}
