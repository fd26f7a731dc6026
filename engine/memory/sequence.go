package memory

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// IndexError is the panic value for an out-of-range sequence access.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("sequence: index %d out of range [0:%d]", e.Index, e.Len)
}

// Sequence is a fixed-capacity list whose storage is reserved from an Arena at
// construction. It never reallocates. T must be a plain value type: the arena
// buffer is not scanned by the garbage collector, so T may hold C handles but
// no Go pointers.
type Sequence[T any] struct {
	data  []T
	count int
}

// NewSequence reserves capacity elements of T from a.
func NewSequence[T any](a *Arena, capacity int) (*Sequence[T], error) {
	if a == nil {
		return nil, errors.New("sequence: nil arena")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("sequence: negative capacity %d", capacity)
	}
	var zero T
	size := unsafe.Sizeof(zero) * uintptr(capacity)
	p, err := a.Allocate(size, unsafe.Alignof(zero))
	if err != nil {
		return nil, fmt.Errorf("sequence of %d x %T: %w", capacity, zero, err)
	}
	data := unsafe.Slice((*T)(p), capacity)
	clear(data)
	return &Sequence[T]{data: data}, nil
}

// Append adds v at the end. At capacity it fails with core.ErrCapacityExceeded
// and the sequence is unchanged.
func (s *Sequence[T]) Append(v T) error {
	if s.data == nil {
		return core.ErrUnbacked
	}
	if s.count == len(s.data) {
		return fmt.Errorf("sequence: append at capacity %d: %w", len(s.data), core.ErrCapacityExceeded)
	}
	s.data[s.count] = v
	s.count++
	return nil
}

// Grow exposes n more elements and returns them, zeroed, for the caller to fill.
func (s *Sequence[T]) Grow(n int) ([]T, error) {
	if s.data == nil {
		return nil, core.ErrUnbacked
	}
	if n < 0 || s.count+n > len(s.data) {
		return nil, fmt.Errorf("sequence: grow %d with %d of %d used: %w", n, s.count, len(s.data), core.ErrCapacityExceeded)
	}
	tail := s.data[s.count : s.count+n : s.count+n]
	clear(tail)
	s.count += n
	return tail, nil
}

// Truncate shrinks the sequence to n elements. n larger than Len is a no-op.
func (s *Sequence[T]) Truncate(n int) {
	if n >= 0 && n < s.count {
		s.count = n
	}
}

func (s *Sequence[T]) At(i int) T {
	return *s.Ptr(i)
}

// Ptr returns the address of element i. It stays valid for the arena's lifetime.
func (s *Sequence[T]) Ptr(i int) *T {
	if i < 0 || i >= s.count {
		panic(&IndexError{Index: i, Len: s.count})
	}
	return &s.data[i]
}

func (s *Sequence[T]) Get(i int) (T, bool) {
	if i < 0 || i >= s.count {
		var zero T
		return zero, false
	}
	return s.data[i], true
}

func (s *Sequence[T]) Len() int {
	return s.count
}

func (s *Sequence[T]) Cap() int {
	return len(s.data)
}

// Slice returns a view of the valid elements. Appending to it cannot grow the sequence.
func (s *Sequence[T]) Slice() []T {
	return s.data[:s.count:s.count]
}

// Reset empties the sequence but keeps its storage.
func (s *Sequence[T]) Reset() {
	s.count = 0
}

// Move hands the storage and contents to a new sequence. s is left empty and
// unbacked: Cap is zero and every mutation returns core.ErrUnbacked.
func (s *Sequence[T]) Move() *Sequence[T] {
	moved := &Sequence[T]{data: s.data, count: s.count}
	s.data = nil
	s.count = 0
	return moved
}

// Enumerate runs the two-call enumeration protocol into s: query is called
// once with a nil destination to learn the count, then with the grown tail to
// fill it. If the second call reports fewer elements, s is truncated.
func Enumerate[T any](s *Sequence[T], query func(count *uint32, dst []T) error) error {
	var count uint32
	if err := query(&count, nil); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	start := s.Len()
	dst, err := s.Grow(int(count))
	if err != nil {
		return err
	}
	if err := query(&count, dst); err != nil {
		s.Truncate(start)
		return err
	}
	if int(count) < len(dst) {
		s.Truncate(start + int(count))
	}
	return nil
}
