package memory

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkcore/engine/core"
)

func TestNewArenaDefaultSize(t *testing.T) {
	a := NewArena(0)
	assert.Equal(t, DefaultArenaSize, a.Capacity())
	assert.Zero(t, a.Used())
}

func TestAllocateAlignmentAndMonotonicity(t *testing.T) {
	a := NewArena(4096)

	var prev, prevSize uintptr
	for _, req := range []struct{ size, align uintptr }{
		{3, 1}, {8, 8}, {1, 1}, {16, 16}, {5, 4}, {32, 64}, {7, 0},
	} {
		p, err := a.Allocate(req.size, req.align)
		require.NoError(t, err)
		addr := uintptr(p)
		align := req.align
		if align == 0 {
			align = unsafe.Alignof(uintptr(0))
		}
		assert.Zero(t, addr%align, "address %#x not aligned to %d", addr, align)
		if prev != 0 {
			assert.GreaterOrEqual(t, addr, prev+prevSize, "allocation overlaps the previous one")
		}
		prev, prevSize = addr, req.size
	}
	assert.LessOrEqual(t, a.Used(), a.Capacity())
}

func TestAllocateExhaustionLeavesArenaUnchanged(t *testing.T) {
	a := NewArena(64)
	_, err := a.Allocate(48, 8)
	require.NoError(t, err)
	used := a.Used()

	_, err = a.Allocate(32, 8)
	require.ErrorIs(t, err, core.ErrOutOfCapacity)
	assert.Equal(t, used, a.Used())

	// the remainder is still usable
	_, err = a.Allocate(16, 8)
	require.NoError(t, err)
	assert.Equal(t, 64, a.Used())
	assert.Zero(t, a.Remaining())
}

func TestAllocateRejectsNonPowerOfTwoAlignment(t *testing.T) {
	a := NewArena(64)
	_, err := a.Allocate(4, 3)
	require.Error(t, err)
	assert.Zero(t, a.Used())
}

func TestMustAllocatePanicsOnExhaustion(t *testing.T) {
	a := NewArena(8)
	assert.Panics(t, func() { a.MustAllocate(16, 8) })
}

func TestEarlierAllocationsAreStable(t *testing.T) {
	a := NewArena(256)
	p := (*uint64)(a.MustAllocate(8, 8))
	*p = 0xdeadbeef
	for i := 0; i < 10; i++ {
		q := (*uint64)(a.MustAllocate(8, 8))
		*q = uint64(i)
	}
	a.Free(unsafe.Pointer(p))
	assert.Equal(t, uint64(0xdeadbeef), *p)
}

func TestReleasedArena(t *testing.T) {
	a := NewArena(64)
	a.Release()
	assert.True(t, a.Released())
	_, err := a.Allocate(1, 1)
	assert.ErrorIs(t, err, core.ErrArenaReleased)
	assert.Zero(t, a.Capacity())
}

func TestArenaMetrics(t *testing.T) {
	a := NewArena(100)
	a.MustAllocate(25, 1)
	m := a.Metrics()
	assert.Equal(t, 25, m.Used)
	assert.Equal(t, 75, m.Remaining)
	assert.InDelta(t, 0.25, m.Utilization, 1e-9)
	assert.Equal(t, "25/100 bytes (25.0%)", m.String())
}
