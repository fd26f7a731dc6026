package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
)

const engineName = "vkcore"

// APIVersion is the Vulkan version the instance is created for.
var APIVersion = uint32(vk.MakeVersion(1, 1, 0))

// loadLoader points the binding at the Vulkan loader. A nil procAddr falls
// back to the system loader library.
func loadLoader(procAddr unsafe.Pointer) error {
	if procAddr != nil {
		vk.SetGetInstanceProcAddr(procAddr)
	} else if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return fmt.Errorf("vulkan loader: %w", err)
	}
	return vk.Init()
}

func (c *DeviceContext) createInstance(cfg InitConfig) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         APIVersion,
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   safeString(cfg.ApplicationName),
		PEngineName:        safeString(engineName),
	}

	for _, ext := range cfg.InstanceExtensions {
		c.log.Debugf("instance extension: %s", ext)
	}

	var layers []string
	if cfg.Debug {
		layers = cfg.ValidationLayers
		if err := checkValidationLayers(layers, c.log); err != nil {
			return err
		}
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.InstanceExtensions)),
		PpEnabledExtensionNames: safeStrings(cfg.InstanceExtensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	if err := check("vkCreateInstance", vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return err
	}
	c.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return fmt.Errorf("load instance functions: %w", err)
	}
	c.log.Infof("Vulkan instance created")

	if cfg.Debug {
		if err := c.createDebugCallback(); err != nil {
			return err
		}
	}
	return nil
}

// checkValidationLayers verifies every requested layer is installed.
func checkValidationLayers(required []string, log *core.Logger) error {
	var count uint32
	if err := check("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return err
	}
	available := make([]vk.LayerProperties, count)
	if err := check("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, available)); err != nil {
		return err
	}
	names := make(map[string]struct{}, count)
	for i := range available[:count] {
		available[i].Deref()
		names[vk.ToString(available[i].LayerName[:])] = struct{}{}
	}
	for _, layer := range required {
		if _, ok := names[layer]; !ok {
			return fmt.Errorf("%s: %w", layer, core.ErrValidationLayerMissing)
		}
		log.Debugf("validation layer %s found", layer)
	}
	return nil
}

func (c *DeviceContext) createDebugCallback() error {
	log := c.log.With("source", "validation")
	info := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object, location uint64,
			messageCode int32, layerPrefix, message string, userData unsafe.Pointer) vk.Bool32 {
			switch {
			case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
				log.Errorf("[%s] code %d: %s", layerPrefix, messageCode, message)
			case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
				log.Warnf("[%s] code %d: %s", layerPrefix, messageCode, message)
			default:
				log.Debugf("[%s] code %d: %s", layerPrefix, messageCode, message)
			}
			return vk.False
		},
	}
	var cb vk.DebugReportCallback
	if err := check("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(c.Instance, &info, nil, &cb)); err != nil {
		return err
	}
	c.debugCallback = cb
	c.log.Debugf("debug report callback installed")
	return nil
}
