package engine

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

// Extension and layer names the engine asks for on top of what the window
// system requires.
const (
	ExtPhysicalDeviceProperties2 = "VK_KHR_get_physical_device_properties2"
	ExtDebugReport               = "VK_EXT_debug_report"
	ExtSwapchain                 = "VK_KHR_swapchain"
	ExtMemoryBudget              = "VK_EXT_memory_budget"
	LayerKhronosValidation       = "VK_LAYER_KHRONOS_validation"
)

// WindowSystem is the part of the platform the renderer needs at init time.
type WindowSystem interface {
	RequiredInstanceExtensions() []string
	SurfaceCallback() func(vk.Instance) (vk.Surface, error)
	ProcAddr() unsafe.Pointer
	FramebufferSize() (uint32, uint32)
}

// BuildInitConfig assembles the instance, layer and device lists. The expected
// extent comes from the config and is replaced by the framebuffer size when the
// window system reports one.
func BuildInitConfig(cfg core.Config, ws WindowSystem) vulkan.InitConfig {
	instanceExts := append([]string{}, ws.RequiredInstanceExtensions()...)
	instanceExts = append(instanceExts, ExtPhysicalDeviceProperties2)
	var layers []string
	if cfg.Renderer.Debug {
		instanceExts = append(instanceExts, ExtDebugReport)
		layers = append(layers, LayerKhronosValidation)
	}

	extent := vulkan.Extent{Width: cfg.Window.Width, Height: cfg.Window.Height}
	if w, h := ws.FramebufferSize(); w > 0 && h > 0 {
		extent = vulkan.Extent{Width: w, Height: h}
	}

	return vulkan.InitConfig{
		ApplicationName:    cfg.Application.Name,
		InstanceExtensions: instanceExts,
		ValidationLayers:   layers,
		DeviceExtensions:   []string{ExtSwapchain, ExtMemoryBudget},
		Surface:            ws.SurfaceCallback(),
		ExpectedExtent:     extent,
		Debug:              cfg.Renderer.Debug,
		ProcAddr:           ws.ProcAddr(),
	}
}
