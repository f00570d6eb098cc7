package store

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNilStore is returned when a nil store is published.
var ErrNilStore = errors.New("store: publish nil store")

// Live is the single publish point for the active store. Readers see the
// current store through one atomic pointer load; a store under construction
// is never reachable. Swaps are serialized by a mutex because the migration
// chain is linear and two concurrent swaps from the same source would race to
// define the current version.
type Live struct {
	mu  sync.Mutex
	cur atomic.Pointer[Store]
}

// NewLive returns a holder publishing initial as the current store.
func NewLive(initial *Store) *Live {
	l := &Live{}
	if initial != nil {
		l.cur.Store(initial)
	}
	return l
}

// Current returns the published store. Callers that obtained a store before a
// swap keep a fully usable reference to it.
func (l *Live) Current() *Store {
	return l.cur.Load()
}

// Publish replaces the current store.
func (l *Live) Publish(s *Store) error {
	if s == nil {
		return ErrNilStore
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur.Store(s)
	return nil
}

// Swap runs fn against the current store and publishes its result. While fn
// runs the current store stays published and readable; the result becomes
// visible only when fn returns without error. Concurrent Swap calls are
// serialized.
func (l *Live) Swap(fn func(cur *Store) (*Store, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := fn(l.cur.Load())
	if err != nil {
		return err
	}
	if next == nil {
		return ErrNilStore
	}
	l.cur.Store(next)
	return nil
}
