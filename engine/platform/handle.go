package platform

import (
	"fmt"
	"sync/atomic"
)

// Resource is one kind of platform resource: how to obtain a handle and how to
// give it back. Acquire must return the zero value of T on failure.
type Resource[T comparable] interface {
	Acquire() (T, error)
	Release(T)
}

// noCopy makes `go vet -copylocks` flag copies of the value that embeds it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Scoped owns exactly one handle of type T and releases it exactly once. A
// Scoped holding the zero value of T is the invalid sentinel and releases
// nothing. Always use it through a pointer.
type Scoped[T comparable] struct {
	_        noCopy
	value    T
	resource Resource[T]
	closed   atomic.Bool
}

// Make acquires a handle from r. On failure it returns the sentinel handle
// together with the error so callers can defer Close unconditionally.
func Make[T comparable](r Resource[T]) (*Scoped[T], error) {
	v, err := r.Acquire()
	if err != nil {
		var zero T
		return &Scoped[T]{value: zero}, fmt.Errorf("acquire %T: %w", r, err)
	}
	return &Scoped[T]{value: v, resource: r}, nil
}

func (s *Scoped[T]) Value() T {
	return s.value
}

// Valid reports whether s holds a live handle.
func (s *Scoped[T]) Valid() bool {
	var zero T
	return s.value != zero
}

// Move transfers ownership to a new Scoped. s is left holding the sentinel.
func (s *Scoped[T]) Move() *Scoped[T] {
	moved := &Scoped[T]{value: s.value, resource: s.resource}
	var zero T
	s.value = zero
	s.resource = nil
	return moved
}

// Close releases the handle. Further calls, and calls on the sentinel, do nothing.
func (s *Scoped[T]) Close() {
	if !s.Valid() || s.resource == nil || !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.resource.Release(s.value)
	var zero T
	s.value = zero
}
