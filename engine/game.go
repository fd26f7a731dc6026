package engine

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

// Scene is what the engine draws. Initialize runs once the device context is
// complete; Render returns the command buffer to submit for a swap-chain image.
type Scene interface {
	Initialize(ctx *vulkan.DeviceContext) error
	Render(imageIndex uint32) (vk.CommandBuffer, error)
	// WaitStage is the pipeline stage that waits on the acquired image.
	WaitStage() vk.PipelineStageFlagBits
	Destroy()
}
