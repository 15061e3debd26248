package container

import (
	"context"

	"github.com/danpasecinic/loom/internal/keys"
)

// slot is one instance cache entry. Absence from the cache is the
// Empty state; a live slot is InProgress until complete or fail is
// called, after which it is terminally Ready or Failed. Exactly one
// resolver owns the InProgress slot (the one that created it under the
// scope lock); everyone else waits on done.
type slot struct {
	key      keys.Key
	done     chan struct{}
	instance any
	err      error
}

func newSlot(key keys.Key) *slot {
	return &slot{
		key:  key,
		done: make(chan struct{}),
	}
}

// complete transitions InProgress -> Ready. Owner only, called once.
func (s *slot) complete(instance any) {
	s.instance = instance
	close(s.done)
}

// fail transitions InProgress -> Failed. Owner only, called once. The
// stored error poisons every later resolution of this key in this
// scope until the scope closes.
func (s *slot) fail(err error) {
	s.err = err
	close(s.done)
}

// wait blocks until the owning resolver settles the slot or the
// waiter's own context is cancelled. A waiter cancellation does not
// disturb the slot: other waiters and the owner proceed normally.
func (s *slot) wait(ctx context.Context) (any, error) {
	select {
	case <-s.done:
		return s.instance, s.err
	case <-ctx.Done():
		return nil, errCancelled(s.key, ctx.Err())
	}
}

// settled reports the outcome without blocking.
func (s *slot) settled() (any, error, bool) {
	select {
	case <-s.done:
		return s.instance, s.err, true
	default:
		return nil, nil, false
	}
}
