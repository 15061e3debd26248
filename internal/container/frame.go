package container

import (
	"context"

	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

// frame tracks the keys under construction on one resolve call tree.
// It exists only for cycle detection: it travels on the context so it
// follows the tree through factories that resolve their own
// dependencies, and it is never shared between independent
// resolutions, so concurrent trees cannot produce false cycles.
type frame struct {
	path []keys.Key
	seen map[keys.Key]struct{}

	// origins tracks the lifetime that will ultimately own each level
	// of the tree: transient providers inherit the origin of their
	// nearest cacheable ancestor, so a contextual dependency reached
	// through any chain below a singleton is still caught.
	origins []scope.Scope
}

type frameCtxKey struct{}

// enterFrame returns ctx carrying the call tree's frame, creating one
// at the top of the tree.
func enterFrame(ctx context.Context) (context.Context, *frame) {
	if f, ok := ctx.Value(frameCtxKey{}).(*frame); ok {
		return ctx, f
	}
	f := &frame{seen: make(map[keys.Key]struct{})}
	return context.WithValue(ctx, frameCtxKey{}, f), f
}

// push adds key to the frame, or reports the cycle it would create.
// The returned path runs from the first occurrence of key down to the
// repeated key.
func (f *frame) push(key keys.Key) ([]keys.Key, bool) {
	if _, ok := f.seen[key]; ok {
		cycle := make([]keys.Key, 0, len(f.path)+1)
		start := 0
		for i, k := range f.path {
			if k == key {
				start = i
				break
			}
		}
		cycle = append(cycle, f.path[start:]...)
		cycle = append(cycle, key)
		return cycle, false
	}
	f.seen[key] = struct{}{}
	f.path = append(f.path, key)
	return nil, true
}

func (f *frame) pop(key keys.Key) {
	delete(f.seen, key)
	if n := len(f.path); n > 0 && f.path[n-1] == key {
		f.path = f.path[:n-1]
	}
}

func (f *frame) pushOrigin(s scope.Scope) {
	if s == scope.Transient && len(f.origins) > 0 {
		s = f.origins[len(f.origins)-1]
	}
	f.origins = append(f.origins, s)
}

func (f *frame) popOrigin() {
	f.origins = f.origins[:len(f.origins)-1]
}

// origin is the lifetime owning the instance currently under
// construction.
func (f *frame) origin() scope.Scope {
	if len(f.origins) == 0 {
		return scope.Transient
	}
	return f.origins[len(f.origins)-1]
}

// chain is a snapshot of the current path for error payloads.
func (f *frame) chain() []keys.Key {
	out := make([]keys.Key, len(f.path))
	copy(out, f.path)
	return out
}
