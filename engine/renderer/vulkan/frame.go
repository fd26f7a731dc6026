package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
)

// FrameConfig controls per-frame synchronisation.
type FrameConfig struct {
	// UseFences guards each submission with a fence so the CPU never records
	// into a frame the GPU is still executing. Off by default: the pair of
	// semaphores alone lets the CPU run ahead of the GPU.
	UseFences bool
}

// Frame drives acquire, submit and present against an initialized context.
// There is no swap-chain recreation: an out-of-date surface is returned as an
// error wrapping core.ErrSurfaceLost.
type Frame struct {
	ctx     *DeviceContext
	fence   *Fence
	acquire acquireFunc
}

type acquireFunc func(device vk.Device, swapchain vk.Swapchain, timeout uint64,
	semaphore vk.Semaphore, fence vk.Fence, index *uint32) vk.Result

func NewFrame(ctx *DeviceContext, cfg FrameConfig) (*Frame, error) {
	f := &Frame{ctx: ctx, acquire: vk.AcquireNextImage}
	if cfg.UseFences {
		fence, err := NewFence(ctx.Device, true)
		if err != nil {
			return nil, err
		}
		f.fence = fence
		ctx.log.Debugf("frame fences enabled")
	}
	return f, nil
}

// AcquireNextImage waits without timeout for the next swap-chain image. The
// image-available semaphore is signaled when it is ready. The frame fence is
// reset only once an image was acquired, so a failed acquire leaves it
// signaled and a retry does not block.
func (f *Frame) AcquireNextImage() (uint32, error) {
	if f.fence != nil {
		if err := f.fence.Wait(f.ctx.Device); err != nil {
			return 0, err
		}
	}
	var index uint32
	res := f.acquire(f.ctx.Device, f.ctx.Swapchain.Handle, math.MaxUint64,
		f.ctx.Swapchain.ImageAvailable, vk.NullFence, &index)
	if err := check("vkAcquireNextImageKHR", res); err != nil {
		return 0, err
	}
	if f.fence != nil {
		if err := f.fence.Reset(f.ctx.Device); err != nil {
			return 0, err
		}
	}
	return index, nil
}

// Submit queues cmd on the graphics queue after the acquired image is
// available, signaling render-finished on completion.
func (f *Frame) Submit(cmd vk.CommandBuffer, waitStage vk.PipelineStageFlagBits) error {
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{f.ctx.Swapchain.ImageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(waitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.ctx.Swapchain.RenderFinished},
	}
	fence := vk.NullFence
	if f.fence != nil {
		fence = f.fence.Handle
	}
	if err := check("vkQueueSubmit", vk.QueueSubmit(f.ctx.GraphicsQueue, 1, []vk.SubmitInfo{info}, fence)); err != nil {
		// nothing will signal the fence now, so the next acquire must not wait on it
		if f.fence != nil {
			f.fence.Signaled = true
		}
		return err
	}
	return nil
}

// Present hands image index back to the surface once rendering has finished.
func (f *Frame) Present(index uint32) error {
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.ctx.Swapchain.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{f.ctx.Swapchain.Handle},
		PImageIndices:      []uint32{index},
	}
	return check("vkQueuePresentKHR", vk.QueuePresent(f.ctx.GraphicsQueue, &info))
}

// Destroy waits for the device and releases the frame fence.
func (f *Frame) Destroy() {
	if f.fence == nil {
		return
	}
	vk.DeviceWaitIdle(f.ctx.Device)
	f.fence.Destroy(f.ctx.Device)
	f.fence = nil
}
