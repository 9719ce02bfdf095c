package vtree

import "sync"

// Ref holds a mutable reference to a value. Subscriptions use a Ref as the
// output slot the resolved service value is written into; it is also the
// general-purpose slot reconcilers hand out for host node references.
//
// A Ref distinguishes "no value" from a stored nil: IsSet reports whether
// anything has been written since creation or the last Clear. That makes a
// published nil service value observable as distinct from "not found".
//
// Ref[T] is safe for concurrent access.
type Ref[T any] struct {
	value T
	isSet bool
	mu    sync.RWMutex
}

// NewRef creates a new Ref with the given initial value.
// The Ref starts unset.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{value: initial}
}

// Current returns the current value of the ref.
func (r *Ref[T]) Current() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set stores a value and marks the ref as set.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = value
	r.isSet = true
}

// IsSet returns true if a value has been stored since creation or Clear.
func (r *Ref[T]) IsSet() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isSet
}

// Clear resets the ref to its zero value and marks it unset.
func (r *Ref[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.isSet = false
}
