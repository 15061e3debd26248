package container

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/danpasecinic/loom/internal/keys"
	"github.com/danpasecinic/loom/internal/scope"
)

// ScopeContext is one live activation of a cacheable scope: the root
// singleton context, or one entered contextual scope. It owns the
// instance cache for its keys and the construction log consumed by
// teardown.
type ScopeContext struct {
	id     string
	kind   scope.Scope
	parent *ScopeContext

	mu       sync.Mutex
	slots    map[keys.Key]*slot
	log      []construction
	closed   bool
	children int
}

// construction is one completed build, recorded in the order instances
// finished constructing. Teardown walks the log in reverse.
type construction struct {
	key      keys.Key
	instance any
	cleanup  Cleanup
}

func newScopeContext(kind scope.Scope, parent *ScopeContext) *ScopeContext {
	return &ScopeContext{
		id:     uuid.NewString(),
		kind:   kind,
		parent: parent,
		slots:  make(map[keys.Key]*slot),
	}
}

// ID is the unique identity of this activation, used in logs and
// error payloads.
func (sc *ScopeContext) ID() string {
	return sc.id
}

func (sc *ScopeContext) Kind() scope.Scope {
	return sc.kind
}

// claim atomically inspects or creates the slot for key. The second
// return is true when the caller created the slot and now owns its
// InProgress state; false means another resolver got there first and
// the caller must wait on the returned slot.
func (sc *ScopeContext) claim(key keys.Key) (*slot, bool, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.closed {
		return nil, false, errScopeClosed(key, sc.id)
	}
	if s, ok := sc.slots[key]; ok {
		return s, false, nil
	}
	s := newSlot(key)
	sc.slots[key] = s
	return s, true, nil
}

// record appends a completed construction to the log. Called by the
// slot owner after the factory succeeds, before the slot completes.
func (sc *ScopeContext) record(key keys.Key, instance any, cleanup Cleanup) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.log = append(sc.log, construction{key: key, instance: instance, cleanup: cleanup})
}

// evict drops the cache entry for key so the next resolution rebuilds
// it. Any already-recorded cleanup stays in the log and still runs at
// teardown. Used when a test override is withdrawn.
func (sc *ScopeContext) evict(key keys.Key) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	delete(sc.slots, key)
}

// instance returns the ready instance for key, if one is cached.
func (sc *ScopeContext) instance(key keys.Key) (any, bool) {
	sc.mu.Lock()
	s, ok := sc.slots[key]
	sc.mu.Unlock()
	if !ok {
		return nil, false
	}
	v, err, done := s.settled()
	if !done || err != nil {
		return nil, false
	}
	return v, true
}

// close marks the context inert and hands back the construction log
// for the teardown sweep. Scopes nest and close in LIFO order: closing
// while a child activation is still open is a usage error.
func (sc *ScopeContext) close() ([]construction, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.closed {
		return nil, errScopeOrdering("scope " + sc.id + " already closed")
	}
	if sc.children > 0 {
		return nil, errScopeOrdering("scope " + sc.id + " has open child scopes; close them first")
	}
	sc.closed = true

	log := sc.log
	sc.log = nil
	return log, nil
}

func (sc *ScopeContext) addChild() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.closed {
		return errScopeClosed("", sc.id)
	}
	sc.children++
	return nil
}

func (sc *ScopeContext) removeChild() {
	sc.mu.Lock()
	sc.children--
	sc.mu.Unlock()
}

type scopeCtxKey struct{}

// WithScope attaches an entered scope context to ctx so resolutions on
// this call path target it for contextual providers.
func WithScope(ctx context.Context, sc *ScopeContext) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, sc)
}

// ScopeFrom returns the innermost entered scope on ctx, or nil.
func ScopeFrom(ctx context.Context) *ScopeContext {
	sc, _ := ctx.Value(scopeCtxKey{}).(*ScopeContext)
	return sc
}
