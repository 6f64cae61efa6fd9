// Package observe delivers size measurements to subscribers. Producers call
// Report whenever they measure something; subscribers are called back only
// when the size they observe actually changes.
package observe

import "sync"

// Size is a measured extent in terminal cells.
type Size struct {
	Width  int
	Height int
}

// Callback receives a new size for an observed key.
type Callback func(Size)

type subscription struct {
	id   uint64
	fn   Callback
	last Size
	seen bool
}

// Registry tracks one subscription per key. A key observed again replaces
// the previous subscription.
type Registry[K comparable] struct {
	mu     sync.Mutex
	subs   map[K]*subscription
	nextID uint64
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable]() *Registry[K] {
	return &Registry[K]{subs: make(map[K]*subscription)}
}

// Observe subscribes fn to sizes reported for key. The returned function
// unsubscribes and is safe to call more than once. Reports made after it
// returns never reach fn.
func (r *Registry[K]) Observe(key K, fn Callback) (unobserve func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[key] = &subscription{id: id, fn: fn}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if s, ok := r.subs[key]; ok && s.id == id {
			delete(r.subs, key)
		}
	}
}

// Report delivers size to key's subscriber if it differs from the last size
// delivered. Reports for keys nobody observes are dropped. Reports whether
// the callback ran.
func (r *Registry[K]) Report(key K, size Size) bool {
	r.mu.Lock()
	s, ok := r.subs[key]
	if !ok || (s.seen && s.last == size) {
		r.mu.Unlock()
		return false
	}
	s.last = size
	s.seen = true
	fn := s.fn
	r.mu.Unlock()

	// Called without the lock so callbacks may observe or unobserve.
	fn(size)
	return true
}

// Observed reports whether key has a subscriber.
func (r *Registry[K]) Observed(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[key]
	return ok
}

// Len returns the number of observed keys.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Reset drops every subscription.
func (r *Registry[K]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.subs)
}
