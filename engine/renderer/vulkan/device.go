package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
	"github.com/spaghettifunk/vkcore/engine/memory"
)

func (c *DeviceContext) enumeratePhysicalDevices() error {
	c.PhysicalDevices.Reset()
	c.DeviceProperties.Reset()
	c.DeviceFeatures.Reset()

	err := memory.Enumerate(c.PhysicalDevices, func(count *uint32, dst []vk.PhysicalDevice) error {
		return check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(c.Instance, count, dst))
	})
	if err != nil {
		return err
	}

	for _, pd := range c.PhysicalDevices.Slice() {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		if err := c.DeviceProperties.Append(devicePropertiesFrom(&props)); err != nil {
			return err
		}

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(pd, &features)
		if err := c.DeviceFeatures.Append(deviceFeaturesFrom(&features)); err != nil {
			return err
		}
	}
	c.log.Infof("%d physical device(s) found", c.PhysicalDevices.Len())
	return nil
}

func (c *DeviceContext) selectPhysicalDevice() error {
	idx, err := ChoosePhysicalDevice(c.DeviceProperties.Slice())
	if err != nil {
		return err
	}
	c.SelectedDevice = idx
	c.PhysicalDevice = c.PhysicalDevices.At(idx)

	props := c.DeviceProperties.Ptr(idx)
	c.log.Infof("Selected device: '%s' (score %d)", props.DeviceName(), ScoreDevice(*props))
	c.log.Infof("GPU type is %s", deviceTypeString(props.Type))
	c.log.Infof("GPU driver version: %s", versionString(props.DriverVersion))
	c.log.Infof("Vulkan API version: %s", versionString(props.APIVersion))
	if f, ok := c.DeviceFeatures.Get(idx); ok {
		c.log.Debugf("features: geometry=%t tessellation=%t anisotropy=%t",
			f.GeometryShader, f.TessellationShader, f.SamplerAnisotropy)
	}

	var mem vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(c.PhysicalDevice, &mem)
	mem.Deref()
	c.MemoryTypes = c.MemoryTypes[:0]
	for i := uint32(0); i < mem.MemoryTypeCount; i++ {
		mem.MemoryTypes[i].Deref()
		c.MemoryTypes = append(c.MemoryTypes, MemoryType{
			PropertyFlags: mem.MemoryTypes[i].PropertyFlags,
			HeapIndex:     mem.MemoryTypes[i].HeapIndex,
		})
	}
	for i := uint32(0); i < mem.MemoryHeapCount; i++ {
		heap := mem.MemoryHeaps[i]
		heap.Deref()
		gib := float64(heap.Size) / (1 << 30)
		if heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			c.log.Infof("Local GPU memory: %.2f GiB", gib)
		} else {
			c.log.Infof("Shared system memory: %.2f GiB", gib)
		}
	}
	return nil
}

func (c *DeviceContext) verifyDeviceExtensions(required []string) error {
	c.DeviceExtensions.Reset()
	err := memory.Enumerate(c.DeviceExtensions, func(count *uint32, dst []Extension) error {
		if dst == nil {
			return check("vkEnumerateDeviceExtensionProperties",
				vk.EnumerateDeviceExtensionProperties(c.PhysicalDevice, "", count, nil))
		}
		props := make([]vk.ExtensionProperties, len(dst))
		res := vk.EnumerateDeviceExtensionProperties(c.PhysicalDevice, "", count, props)
		if res != vk.Success && res != vk.Incomplete {
			return check("vkEnumerateDeviceExtensionProperties", res)
		}
		for i := range props[:*count] {
			props[i].Deref()
			dst[i] = Extension{Name: props[i].ExtensionName, SpecVersion: props[i].SpecVersion}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.log.Debugf("%d device extensions available", c.DeviceExtensions.Len())

	if missing := MissingExtensions(c.DeviceExtensions.Slice(), required); len(missing) > 0 {
		return &ExtensionError{Missing: missing}
	}
	return nil
}

func (c *DeviceContext) discoverQueueFamilies() error {
	c.QueueFamilies.Reset()
	err := memory.Enumerate(c.QueueFamilies, func(count *uint32, dst []QueueFamily) error {
		if dst == nil {
			vk.GetPhysicalDeviceQueueFamilyProperties(c.PhysicalDevice, count, nil)
			return nil
		}
		props := make([]vk.QueueFamilyProperties, len(dst))
		vk.GetPhysicalDeviceQueueFamilyProperties(c.PhysicalDevice, count, props)
		for i := range props[:*count] {
			props[i].Deref()
			var present vk.Bool32
			res := vk.GetPhysicalDeviceSurfaceSupport(c.PhysicalDevice, uint32(i), c.Surface, &present)
			if err := check("vkGetPhysicalDeviceSurfaceSupportKHR", res); err != nil {
				return err
			}
			dst[i] = QueueFamily{
				Flags:      props[i].QueueFlags,
				QueueCount: props[i].QueueCount,
				Present:    present == vk.True,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Debugf("Graphics | Present | Compute | Transfer")
	for _, f := range c.QueueFamilies.Slice() {
		c.log.Debugf("%8t | %7t | %7t | %8t",
			f.Has(vk.QueueGraphicsBit), f.Present, f.Has(vk.QueueComputeBit), f.Has(vk.QueueTransferBit))
	}

	c.GraphicsFamily = SelectGraphicsFamily(c.QueueFamilies.Slice())
	c.ComputeFamily = SelectComputeFamily(c.QueueFamilies.Slice())
	if c.GraphicsFamily < 0 {
		return core.ErrNoSuitableQueueFamily
	}
	c.log.Infof("graphics family %d, compute family %d", c.GraphicsFamily, c.ComputeFamily)
	return nil
}

func (c *DeviceContext) createLogicalDevice(extensions []string) error {
	families := []uint32{uint32(c.GraphicsFamily)}
	if c.ComputeFamily >= 0 && c.ComputeFamily != c.GraphicsFamily {
		families = append(families, uint32(c.ComputeFamily))
	}

	queueInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	var device vk.Device
	if err := check("vkCreateDevice", vk.CreateDevice(c.PhysicalDevice, &createInfo, nil, &device)); err != nil {
		return err
	}
	c.Device = device
	c.log.Infof("Logical device created")

	var queue vk.Queue
	vk.GetDeviceQueue(c.Device, uint32(c.GraphicsFamily), 0, &queue)
	if queue == nil {
		return fmt.Errorf("graphics queue: %w", core.ErrQueueUnavailable)
	}
	c.GraphicsQueue = queue

	if c.ComputeFamily >= 0 {
		var compute vk.Queue
		vk.GetDeviceQueue(c.Device, uint32(c.ComputeFamily), 0, &compute)
		if compute == nil {
			return fmt.Errorf("compute queue: %w", core.ErrQueueUnavailable)
		}
		c.ComputeQueue = compute
	}
	c.log.Debugf("Queues obtained")
	return nil
}

func (c *DeviceContext) createCommandPool() error {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(c.GraphicsFamily),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if err := check("vkCreateCommandPool", vk.CreateCommandPool(c.Device, &info, nil, &pool)); err != nil {
		return err
	}
	c.CommandPool = pool
	c.log.Debugf("Graphics command pool created")
	return nil
}

func deviceTypeString(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	default:
		return "Unknown"
	}
}

func versionString(v uint32) string {
	ver := vk.Version(v)
	return fmt.Sprintf("%d.%d.%d", ver.Major(), ver.Minor(), ver.Patch())
}
