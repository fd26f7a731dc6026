package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"

	"github.com/spaghettifunk/vkcore/engine/core"
	"github.com/spaghettifunk/vkcore/engine/memory"
)

const (
	MaxPhysicalDevices  = 32
	MaxQueueFamilies    = 32
	MaxSurfaceFormats   = 32
	MaxDeviceExtensions = 256
	MaxSwapchainImages  = 8
)

// SwapchainData is the swap chain and everything created alongside it.
type SwapchainData struct {
	Handle vk.Swapchain
	Images *memory.Sequence[vk.Image]
	Views  *memory.Sequence[vk.ImageView]

	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	Format         SurfaceFormat
	Extent         Extent
	DepthFormat    vk.Format
	ImageCount     uint32
	Capabilities   SurfaceCapabilities
}

// DeviceContext owns every Vulkan object the renderer creates, plus the
// arena-backed enumeration results used to pick them.
type DeviceContext struct {
	SessionID uuid.UUID

	Instance      vk.Instance
	debugCallback vk.DebugReportCallback
	Surface       vk.Surface

	PhysicalDevices  *memory.Sequence[vk.PhysicalDevice]
	DeviceProperties *memory.Sequence[DeviceProperties]
	DeviceFeatures   *memory.Sequence[DeviceFeatures]
	DeviceExtensions *memory.Sequence[Extension]
	QueueFamilies    *memory.Sequence[QueueFamily]
	SurfaceFormats   *memory.Sequence[SurfaceFormat]
	MemoryTypes      []MemoryType

	// Selected indices are -1 until chosen.
	SelectedDevice int
	GraphicsFamily int
	ComputeFamily  int

	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device
	GraphicsQueue  vk.Queue
	ComputeQueue   vk.Queue
	CommandPool    vk.CommandPool

	Swapchain SwapchainData

	// completed is the number of pipeline stages that finished.
	completed Stage
	// failed is the error that stopped Initialize, cleared by Shutdown.
	failed *StageError
	arena  *memory.Arena
	log    *core.Logger
}

// NewDeviceContext reserves all enumeration storage from a up front.
func NewDeviceContext(a *memory.Arena, log *core.Logger) (*DeviceContext, error) {
	if log == nil {
		log = core.NewNopLogger()
	}
	ctx := &DeviceContext{
		SessionID:      uuid.New(),
		SelectedDevice: -1,
		GraphicsFamily: -1,
		ComputeFamily:  -1,
		arena:          a,
	}
	ctx.log = log.With("session", ctx.SessionID.String()[:8])

	var err error
	if ctx.PhysicalDevices, err = memory.NewSequence[vk.PhysicalDevice](a, MaxPhysicalDevices); err != nil {
		return nil, fmt.Errorf("physical devices: %w", err)
	}
	if ctx.DeviceProperties, err = memory.NewSequence[DeviceProperties](a, MaxPhysicalDevices); err != nil {
		return nil, fmt.Errorf("device properties: %w", err)
	}
	if ctx.DeviceFeatures, err = memory.NewSequence[DeviceFeatures](a, MaxPhysicalDevices); err != nil {
		return nil, fmt.Errorf("device features: %w", err)
	}
	if ctx.DeviceExtensions, err = memory.NewSequence[Extension](a, MaxDeviceExtensions); err != nil {
		return nil, fmt.Errorf("device extensions: %w", err)
	}
	if ctx.QueueFamilies, err = memory.NewSequence[QueueFamily](a, MaxQueueFamilies); err != nil {
		return nil, fmt.Errorf("queue families: %w", err)
	}
	if ctx.SurfaceFormats, err = memory.NewSequence[SurfaceFormat](a, MaxSurfaceFormats); err != nil {
		return nil, fmt.Errorf("surface formats: %w", err)
	}
	if ctx.Swapchain.Images, err = memory.NewSequence[vk.Image](a, MaxSwapchainImages); err != nil {
		return nil, fmt.Errorf("swap chain images: %w", err)
	}
	if ctx.Swapchain.Views, err = memory.NewSequence[vk.ImageView](a, MaxSwapchainImages); err != nil {
		return nil, fmt.Errorf("swap chain views: %w", err)
	}
	ctx.log.Debugf("device context reserved %s of arena", a.Metrics())
	return ctx, nil
}

// Completed reports how many initialization stages have finished.
func (c *DeviceContext) Completed() Stage {
	return c.completed
}

// Selected returns the properties of the chosen physical device.
func (c *DeviceContext) Selected() (DeviceProperties, bool) {
	if c.SelectedDevice < 0 {
		return DeviceProperties{}, false
	}
	return c.DeviceProperties.Get(c.SelectedDevice)
}
