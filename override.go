package loom

import (
	"github.com/danpasecinic/loom/internal/container"
)

// Override replaces the binding for T with a stub provider and returns
// a restore func that reinstates the original binding. While the
// override is active every resolution of T, direct or transitive,
// returns the stub's instance; after restore the original provider is
// back and constructs a fresh instance on next resolution.
//
// Unless WithScope says otherwise the override is transient, so the
// engine retains nothing from it once restored. Intended for tests;
// see the loomtest package for an auto-restoring wrapper.
func Override[T any](c *Container, provider Provider[T], opts ...ProviderOption) (func(), error) {
	cfg := &providerConfig{scope: Transient}
	for _, opt := range opts {
		opt(cfg)
	}
	return c.internal.Override(descriptor(c, cfg, keyFor[T](cfg), container.KindFactory, provider, nil, nil))
}

// OverrideValue replaces the binding for T with a fixed value.
func OverrideValue[T any](c *Container, value T, opts ...ProviderOption) (func(), error) {
	cfg := &providerConfig{scope: Singleton}
	for _, opt := range opts {
		opt(cfg)
	}

	d := &container.Descriptor{
		Key:   keyFor[T](cfg),
		Scope: Singleton,
		Kind:  container.KindValue,
		Value: value,
	}
	return c.internal.Override(d)
}

// WithOverride runs fn with T overridden by the stub provider,
// restoring the original binding before returning.
func WithOverride[T any](c *Container, provider Provider[T], fn func() error, opts ...ProviderOption) error {
	restore, err := Override(c, provider, opts...)
	if err != nil {
		return err
	}
	defer restore()
	return fn()
}

// WithOverrideValue runs fn with T overridden by a fixed value,
// restoring the original binding before returning.
func WithOverrideValue[T any](c *Container, value T, fn func() error, opts ...ProviderOption) error {
	restore, err := OverrideValue(c, value, opts...)
	if err != nil {
		return err
	}
	defer restore()
	return fn()
}
