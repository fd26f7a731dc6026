package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type CommandBufferState int

const (
	CommandBufferNotAllocated CommandBufferState = iota
	CommandBufferReady
	CommandBufferRecording
	CommandBufferRecordingEnded
)

type CommandBuffer struct {
	Handle vk.CommandBuffer
	State  CommandBufferState
}

// AllocateCommandBuffers allocates n primary command buffers from the context's pool.
func (c *DeviceContext) AllocateCommandBuffers(n int) ([]CommandBuffer, error) {
	if c.CommandPool == vk.NullCommandPool {
		return nil, fmt.Errorf("allocate command buffers: no command pool")
	}
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.CommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}
	handles := make([]vk.CommandBuffer, n)
	if err := check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(c.Device, &info, handles)); err != nil {
		return nil, err
	}
	buffers := make([]CommandBuffer, n)
	for i, h := range handles {
		buffers[i] = CommandBuffer{Handle: h, State: CommandBufferReady}
	}
	return buffers, nil
}

// FreeCommandBuffers returns buffers to the pool.
func (c *DeviceContext) FreeCommandBuffers(buffers []CommandBuffer) {
	if len(buffers) == 0 || c.CommandPool == vk.NullCommandPool {
		return
	}
	handles := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		handles[i] = buffers[i].Handle
		buffers[i] = CommandBuffer{}
	}
	vk.FreeCommandBuffers(c.Device, c.CommandPool, uint32(len(handles)), handles)
}

// Begin starts recording. Simultaneous-use buffers may be resubmitted while
// still pending, which suits prerecorded per-image work.
func (cb *CommandBuffer) Begin(singleUse, simultaneousUse bool) error {
	info := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	if singleUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if simultaneousUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}
	if err := check("vkBeginCommandBuffer", vk.BeginCommandBuffer(cb.Handle, &info)); err != nil {
		return err
	}
	cb.State = CommandBufferRecording
	return nil
}

func (cb *CommandBuffer) End() error {
	if err := check("vkEndCommandBuffer", vk.EndCommandBuffer(cb.Handle)); err != nil {
		return err
	}
	cb.State = CommandBufferRecordingEnded
	return nil
}
