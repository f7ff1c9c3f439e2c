// Package registry tracks the live instances of one entity category.
//
// A [Registry] is an ordered slot arena. Register appends a slot and hands out
// a fresh sequential [ID]; Remove tombstones the slot; iteration walks the
// slots in registration order and skips tombstones. IDs are never reused.
package registry

import (
	"iter"
	"sync"

	"github.com/kamstrup/intmap"
)

// ID identifies a registered instance. The zero ID is never assigned.
type ID uint64

type slot[T any] struct {
	id    ID
	value T
	live  bool
}

// Registry is safe for concurrent use.
type Registry[T any] struct {
	mu     sync.RWMutex
	slots  []slot[T]
	index  *intmap.Map[ID, int]
	nextID ID
	live   int
}

func New[T any]() *Registry[T] {
	return &Registry[T]{
		slots:  make([]slot[T], 0, 16),
		index:  intmap.New[ID, int](16),
		nextID: 1,
	}
}

// Register appends v and returns its ID.
func (r *Registry[T]) Register(v T) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.index.Put(id, len(r.slots))
	r.slots = append(r.slots, slot[T]{id: id, value: v, live: true})
	r.live++
	return id
}

// Get returns the value registered under id.
func (r *Registry[T]) Get(id ID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	i, ok := r.index.Get(id)
	if !ok || !r.slots[i].live {
		return zero, false
	}
	return r.slots[i].value, true
}

func (r *Registry[T]) Alive(id ID) bool {
	_, ok := r.Get(id)
	return ok
}

// Remove tombstones the slot of id. It reports false when id is unknown or
// already removed.
func (r *Registry[T]) Remove(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index.Get(id)
	if !ok || !r.slots[i].live {
		return false
	}
	var zero T
	r.slots[i].value = zero
	r.slots[i].live = false
	r.index.Del(id)
	r.live--
	return true
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// Compact drops tombstoned slots. Registration order and IDs are preserved.
func (r *Registry[T]) Compact() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live == len(r.slots) {
		return
	}

	kept := make([]slot[T], 0, r.live)
	r.index.Clear()
	for _, s := range r.slots {
		if !s.live {
			continue
		}
		r.index.Put(s.id, len(kept))
		kept = append(kept, s)
	}
	r.slots = kept
}

// All yields every live entry in registration order. Entries registered
// while iterating are not visited; entries removed while iterating are
// skipped from then on. It is safe to call Register or Remove from the loop
// body.
func (r *Registry[T]) All() iter.Seq2[ID, T] {
	return func(yield func(ID, T) bool) {
		for _, id := range r.IDs() {
			v, ok := r.Get(id)
			if !ok {
				continue
			}
			if !yield(id, v) {
				return
			}
		}
	}
}

// Values is All without the IDs.
func (r *Registry[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range r.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// IDs returns the live IDs in registration order.
func (r *Registry[T]) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, r.live)
	for _, s := range r.slots {
		if s.live {
			ids = append(ids, s.id)
		}
	}
	return ids
}
