package container

import (
	"context"
	"sync"

	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

// Kind distinguishes how a provider produces its instance.
type Kind int

const (
	// KindValue wraps an instance supplied at registration time.
	KindValue Kind = iota
	// KindFactory constructs the instance through a factory call.
	KindFactory
	// KindResource constructs through a factory and registers a
	// cleanup step to run on scope teardown.
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFactory:
		return "factory"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Factory produces one instance. It receives the caller's context and
// a Resolver for fetching dependencies; it may block, and cancellation
// arrives through ctx.
type Factory func(ctx context.Context, r Resolver) (any, error)

// Cleanup finalizes an instance produced by a resource provider.
type Cleanup func(ctx context.Context, instance any) error

// Hook runs around engine start and stop.
type Hook func(ctx context.Context) error

// Resolver is the dependency lookup surface handed to factories.
type Resolver interface {
	Resolve(ctx context.Context, key keys.Key) (any, error)
	Has(key keys.Key) bool
}

// Descriptor is the immutable recipe for one dependency key.
type Descriptor struct {
	Key       keys.Key
	DependsOn []keys.Key
	Scope     scope.Scope
	Kind      Kind
	Factory   Factory
	Cleanup   Cleanup
	Value     any
	OnStart   []Hook
	OnStop    []Hook
	Lazy      bool
}

// Registry maps dependency keys to provider descriptors. Descriptors
// are never mutated after registration; Replace swaps the whole entry.
type Registry struct {
	mu        sync.RWMutex
	providers map[keys.Key]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[keys.Key]*Descriptor),
	}
}

func (r *Registry) Register(d *Descriptor) error {
	if err := checkDescriptor(d); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[d.Key]; exists {
		return errDuplicateProvider(d.Key)
	}
	r.providers[d.Key] = d
	return nil
}

// Replace swaps the descriptor for d.Key and returns the previous one,
// if any. Used by the override layer; the engine itself never calls it.
func (r *Registry) Replace(d *Descriptor) (*Descriptor, error) {
	if err := checkDescriptor(d); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.providers[d.Key]
	r.providers[d.Key] = d
	return prev, nil
}

// Restore reinstates a descriptor previously returned by Replace. A
// nil prev removes the binding entirely.
func (r *Registry) Restore(key keys.Key, prev *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev == nil {
		delete(r.providers, key)
		return
	}
	r.providers[key] = prev
}

func (r *Registry) Get(key keys.Key) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.providers[key]
	return d, ok
}

func (r *Registry) Has(key keys.Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[key]
	return ok
}

func (r *Registry) Remove(key keys.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, key)
}

func (r *Registry) Keys() []keys.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]keys.Key, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	return out
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

func checkDescriptor(d *Descriptor) error {
	if !d.Scope.Valid() {
		return errInvalidScope(d.Key, "unknown scope")
	}
	if d.Kind == KindResource && d.Scope == scope.Transient {
		return errInvalidScope(d.Key, "transient providers cannot declare cleanup steps; the engine does not track transient lifetimes")
	}
	if d.Kind == KindValue && d.Scope != scope.Singleton {
		return errInvalidScope(d.Key, "value providers are always singleton scoped")
	}
	if d.Kind != KindValue && d.Factory == nil {
		return errInvalidScope(d.Key, "provider has no factory")
	}
	if d.Kind == KindResource && d.Cleanup == nil {
		return errInvalidScope(d.Key, "resource provider has no cleanup step")
	}
	return nil
}
