// Package testbed holds the scenes the vkcore binary can draw.
package testbed

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine"
	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

// DefaultClearColor is the RGBA colour every swap-chain image is cleared to.
var DefaultClearColor = [4]float32{0, 0.5, 0, 1}

var _ engine.Scene = (*ClearScene)(nil)

// ClearScene clears each swap-chain image to a solid colour. The command
// buffers are recorded once, one per image, and resubmitted every frame.
type ClearScene struct {
	Color [4]float32

	ctx     *vulkan.DeviceContext
	buffers []vulkan.CommandBuffer
}

func NewClearScene() *ClearScene {
	return &ClearScene{Color: DefaultClearColor}
}

func (s *ClearScene) Initialize(ctx *vulkan.DeviceContext) error {
	s.ctx = ctx
	images := ctx.Swapchain.Images.Slice()
	if len(images) == 0 {
		return fmt.Errorf("clear scene: swap chain has no images")
	}
	buffers, err := ctx.AllocateCommandBuffers(len(images))
	if err != nil {
		return err
	}
	s.buffers = buffers

	for i := range s.buffers {
		if err := s.record(&s.buffers[i], images[i]); err != nil {
			return fmt.Errorf("recording image %d: %w", i, err)
		}
	}
	return nil
}

func (s *ClearScene) record(cb *vulkan.CommandBuffer, image vk.Image) error {
	if err := cb.Begin(false, true); err != nil {
		return err
	}

	subresource := vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LevelCount: 1,
		LayerCount: 1,
	}

	toTransfer := layoutBarrier(image, subresource,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		0, vk.AccessFlags(vk.AccessTransferWriteBit))
	vk.CmdPipelineBarrier(cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toTransfer})

	var clear vk.ClearValue
	clear.SetColor(s.Color[:])
	vk.CmdClearColorImage(cb.Handle, image, vk.ImageLayoutTransferDstOptimal,
		(*vk.ClearColorValue)(unsafe.Pointer(&clear)), 1, []vk.ImageSubresourceRange{subresource})

	toPresent := layoutBarrier(image, subresource,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc,
		vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessMemoryReadBit))
	vk.CmdPipelineBarrier(cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toPresent})

	return cb.End()
}

func layoutBarrier(image vk.Image, subresource vk.ImageSubresourceRange, from, to vk.ImageLayout, src, dst vk.AccessFlags) vk.ImageMemoryBarrier {
	return vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       src,
		DstAccessMask:       dst,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    subresource,
	}
}

func (s *ClearScene) Render(imageIndex uint32) (vk.CommandBuffer, error) {
	if int(imageIndex) >= len(s.buffers) {
		return nil, fmt.Errorf("clear scene: image %d of %d", imageIndex, len(s.buffers))
	}
	return s.buffers[imageIndex].Handle, nil
}

// WaitStage is the transfer stage, where the clear writes the image.
func (s *ClearScene) WaitStage() vk.PipelineStageFlagBits {
	return vk.PipelineStageTransferBit
}

func (s *ClearScene) Destroy() {
	if s.ctx == nil {
		return
	}
	s.ctx.FreeCommandBuffers(s.buffers)
	s.buffers = nil
}
