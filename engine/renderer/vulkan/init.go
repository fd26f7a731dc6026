package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// SurfaceFunc creates the presentation surface once an instance exists.
type SurfaceFunc func(instance vk.Instance) (vk.Surface, error)

// InitConfig is everything Initialize needs from the outside world.
type InitConfig struct {
	ApplicationName    string
	InstanceExtensions []string
	ValidationLayers   []string
	DeviceExtensions   []string
	Surface            SurfaceFunc
	ExpectedExtent     Extent
	Debug              bool
	// ProcAddr is vkGetInstanceProcAddr from the windowing library. Nil uses
	// the system loader.
	ProcAddr unsafe.Pointer
	// StopAfter ends initialization once the given stage completes. Zero runs
	// every stage.
	StopAfter Stage
}

type stageFunc func(c *DeviceContext, cfg InitConfig) error

var stages = [stageCount]stageFunc{
	StageInstance: func(c *DeviceContext, cfg InitConfig) error {
		if err := loadLoader(cfg.ProcAddr); err != nil {
			return err
		}
		return c.createInstance(cfg)
	},
	StageSurface: func(c *DeviceContext, cfg InitConfig) error {
		if cfg.Surface == nil {
			return errors.New("no surface callback")
		}
		surface, err := cfg.Surface(c.Instance)
		if err != nil {
			return err
		}
		if surface == vk.NullSurface {
			return errors.New("surface callback returned a null surface")
		}
		c.Surface = surface
		return nil
	},
	StageEnumerateDevices: func(c *DeviceContext, _ InitConfig) error {
		return c.enumeratePhysicalDevices()
	},
	StageSelectDevice: func(c *DeviceContext, _ InitConfig) error {
		return c.selectPhysicalDevice()
	},
	StageVerifyExtensions: func(c *DeviceContext, cfg InitConfig) error {
		return c.verifyDeviceExtensions(cfg.DeviceExtensions)
	},
	StageQueueFamilies: func(c *DeviceContext, _ InitConfig) error {
		return c.discoverQueueFamilies()
	},
	StageLogicalDevice: func(c *DeviceContext, cfg InitConfig) error {
		return c.createLogicalDevice(cfg.DeviceExtensions)
	},
	StageSwapchain: func(c *DeviceContext, cfg InitConfig) error {
		return c.createSwapchain(cfg.ExpectedExtent)
	},
	StageCommandPool: func(c *DeviceContext, _ InitConfig) error {
		return c.createCommandPool()
	},
}

// Initialize runs the pipeline stages in order. The first failure is returned
// as a *StageError; stages that completed, and whatever the failed stage had
// already created, stay in place for Shutdown. After a failure Initialize
// refuses to run again until Shutdown has been called.
func (c *DeviceContext) Initialize(cfg InitConfig) error {
	if c.failed != nil {
		return fmt.Errorf("%w: %v", core.ErrInitFailed, c.failed)
	}
	last := stageCount - 1
	if cfg.StopAfter > 0 && cfg.StopAfter < stageCount {
		last = cfg.StopAfter
	}
	for s := c.completed; s <= last; s++ {
		c.log.Debugf("stage %s", s)
		if err := stages[s](c, cfg); err != nil {
			c.log.Errorf("stage %s failed: %v", s, err)
			c.failed = &StageError{Stage: s, Err: err}
			return c.failed
		}
		c.completed = s + 1
	}
	c.log.Infof("Vulkan initialized (%d stages, arena %s)", c.completed, c.arena.Metrics())
	return nil
}

// Shutdown destroys everything Initialize created, newest first. It is safe to
// call after a failed Initialize and more than once.
func (c *DeviceContext) Shutdown() {
	if c.Device != nil {
		vk.DeviceWaitIdle(c.Device)
	}

	if c.CommandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(c.Device, c.CommandPool, nil)
		c.CommandPool = vk.NullCommandPool
	}
	if c.Device != nil {
		c.destroySwapchain()
	}
	if c.Surface != vk.NullSurface {
		vk.DestroySurface(c.Instance, c.Surface, nil)
		c.Surface = vk.NullSurface
	}
	if c.Device != nil {
		vk.DestroyDevice(c.Device, nil)
		c.Device = nil
	}
	c.GraphicsQueue = nil
	c.ComputeQueue = nil
	if c.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(c.Instance, c.debugCallback, nil)
		c.debugCallback = vk.NullDebugReportCallback
	}
	if c.Instance != nil {
		vk.DestroyInstance(c.Instance, nil)
		c.Instance = nil
	}

	c.PhysicalDevice = nil
	c.PhysicalDevices.Reset()
	c.DeviceProperties.Reset()
	c.DeviceFeatures.Reset()
	c.DeviceExtensions.Reset()
	c.QueueFamilies.Reset()
	c.SurfaceFormats.Reset()
	c.MemoryTypes = nil
	c.SelectedDevice, c.GraphicsFamily, c.ComputeFamily = -1, -1, -1
	c.completed = 0
	c.failed = nil
	c.log.Infof("Vulkan shut down")
}
