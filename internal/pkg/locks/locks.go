// Package locks provides a keyed mutex for single-writer discipline on
// per-entity state, such as one character's wallet or one run session.
package locks

import "sync"

// Keyed hands out one mutex per key. Locks for distinct keys are
// independent; two holders of the same key serialize.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyed creates an empty keyed mutex
func NewKeyed() *Keyed {
	return &Keyed{
		locks: make(map[string]*entry),
	}
}

// Lock acquires the mutex for key and returns its unlock function.
// Entries are reference counted and removed once the last holder unlocks,
// so the map does not grow with the number of keys ever seen.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
