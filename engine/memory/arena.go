// Package memory provides the fixed-size arena that backs every enumeration
// result the renderer keeps, and the bounded sequences carved out of it.
package memory

import (
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// DefaultArenaSize is used when NewArena is given a non-positive size (2 MiB).
const DefaultArenaSize = 2 << 20

const pointerAlign = unsafe.Alignof(uintptr(0))

// Arena is a bump allocator over a single buffer fixed at construction. Results
// never move and are never individually reclaimed. Not goroutine-safe.
type Arena struct {
	buf  []byte
	used uintptr
}

// ArenaMetrics is a snapshot of arena usage.
type ArenaMetrics struct {
	Used        int
	Capacity    int
	Remaining   int
	Utilization float64
}

// NewArena creates an arena of size bytes. If size <= 0, DefaultArenaSize is used.
func NewArena(size int) *Arena {
	if size <= 0 {
		size = DefaultArenaSize
	}
	return &Arena{buf: make([]byte, size)}
}

// Allocate returns the address of size bytes aligned to align, which must be a
// power of two (0 means pointer alignment). On exhaustion the arena is left
// unchanged and the error wraps core.ErrOutOfCapacity.
func (a *Arena) Allocate(size, align uintptr) (unsafe.Pointer, error) {
	if a.buf == nil {
		return nil, core.ErrArenaReleased
	}
	if align == 0 {
		align = pointerAlign
	}
	if align&(align-1) != 0 {
		return nil, fmt.Errorf("arena: alignment %d is not a power of two", align)
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	off := alignUp(base+a.used, align) - base
	if off > uintptr(len(a.buf)) || size > uintptr(len(a.buf))-off {
		return nil, fmt.Errorf("arena: %d bytes (align %d) with %d of %d used: %w",
			size, align, a.used, len(a.buf), core.ErrOutOfCapacity)
	}
	a.used = off + size
	if size == 0 {
		// zero-sized requests get an address inside the buffer
		return unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.buf)), min(off, uintptr(len(a.buf)-1))), nil
	}
	return unsafe.Pointer(&a.buf[off]), nil
}

// MustAllocate is Allocate for callers that treat exhaustion as a sizing bug.
func (a *Arena) MustAllocate(size, align uintptr) unsafe.Pointer {
	p, err := a.Allocate(size, align)
	if err != nil {
		panic(err)
	}
	return p
}

// Free is a no-op. Memory is reclaimed only when the arena itself is dropped.
func (a *Arena) Free(unsafe.Pointer) {}

// Release drops the buffer. Further allocations return core.ErrArenaReleased.
func (a *Arena) Release() {
	a.buf = nil
	a.used = 0
}

func (a *Arena) Released() bool {
	return a.buf == nil
}

func (a *Arena) Used() int {
	return int(a.used)
}

func (a *Arena) Capacity() int {
	return len(a.buf)
}

func (a *Arena) Remaining() int {
	return len(a.buf) - int(a.used)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	m := ArenaMetrics{
		Used:      a.Used(),
		Capacity:  a.Capacity(),
		Remaining: a.Remaining(),
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.Used) / float64(m.Capacity)
	}
	return m
}

func (m ArenaMetrics) String() string {
	return fmt.Sprintf("%d/%d bytes (%.1f%%)", m.Used, m.Capacity, m.Utilization*100)
}

// alignUp rounds v up to the next multiple of align, a power of two.
func alignUp[T constraints.Unsigned](v, align T) T {
	mask := align - 1
	return (v + mask) &^ mask
}
