package model

// ResultSlot is a write-once holder for a graph outcome. Graph nodes resolve
// it exactly once per invocation; a second Resolve is a programming-contract
// violation and panics rather than silently overwriting.
type ResultSlot[T any] struct {
	resolved bool
	value    T
}

// Resolve stores the outcome. Panics if the slot was already resolved.
func (s *ResultSlot[T]) Resolve(v T) {
	if s.resolved {
		panic("graph result already resolved")
	}
	s.resolved = true
	s.value = v
}

// Resolved reports whether an outcome has been stored.
func (s *ResultSlot[T]) Resolved() bool {
	return s.resolved
}

// Get returns the outcome and whether it has been resolved.
func (s *ResultSlot[T]) Get() (T, bool) {
	return s.value, s.resolved
}

// MustGet returns the outcome. Panics if the "ok" branch is read before any
// node resolved the slot.
func (s *ResultSlot[T]) MustGet() T {
	if !s.resolved {
		panic("graph result read before being resolved")
	}
	return s.value
}
