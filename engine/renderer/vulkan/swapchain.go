package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/memory"
)

func (c *DeviceContext) createSemaphores() error {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}

	var available, finished vk.Semaphore
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(c.Device, &info, nil, &available)); err != nil {
		return err
	}
	c.Swapchain.ImageAvailable = available
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(c.Device, &info, nil, &finished)); err != nil {
		return err
	}
	c.Swapchain.RenderFinished = finished
	return nil
}

func (c *DeviceContext) querySurfaceCapabilities() (SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(c.PhysicalDevice, c.Surface, &caps)
	if err := check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res); err != nil {
		return SurfaceCapabilities{}, err
	}
	return surfaceCapabilitiesFrom(&caps), nil
}

func (c *DeviceContext) querySurfaceFormats() error {
	c.SurfaceFormats.Reset()
	return memory.Enumerate(c.SurfaceFormats, func(count *uint32, dst []SurfaceFormat) error {
		if dst == nil {
			return check("vkGetPhysicalDeviceSurfaceFormatsKHR",
				vk.GetPhysicalDeviceSurfaceFormats(c.PhysicalDevice, c.Surface, count, nil))
		}
		formats := make([]vk.SurfaceFormat, len(dst))
		res := vk.GetPhysicalDeviceSurfaceFormats(c.PhysicalDevice, c.Surface, count, formats)
		if res != vk.Success && res != vk.Incomplete {
			return check("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range formats[:*count] {
			formats[i].Deref()
			dst[i] = SurfaceFormat{Format: formats[i].Format, ColorSpace: formats[i].ColorSpace}
		}
		return nil
	})
}

// optimalTilingFeatures probes a format on the selected device.
func (c *DeviceContext) optimalTilingFeatures(f vk.Format) vk.FormatFeatureFlags {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(c.PhysicalDevice, f, &props)
	props.Deref()
	return props.OptimalTilingFeatures
}

func (c *DeviceContext) createSwapchain(expected Extent) error {
	if err := c.createSemaphores(); err != nil {
		return err
	}

	caps, err := c.querySurfaceCapabilities()
	if err != nil {
		return err
	}
	c.Swapchain.Capabilities = caps

	if err := c.querySurfaceFormats(); err != nil {
		return err
	}
	format, err := ChooseSurfaceFormat(c.SurfaceFormats.Slice())
	if err != nil {
		return err
	}
	depth, err := ChooseDepthFormat(DepthFormatCandidates, c.optimalTilingFeatures)
	if err != nil {
		return err
	}
	extent, err := ChooseExtent(caps, expected)
	if err != nil {
		return err
	}
	imageCount := ChooseImageCount(caps.MinImageCount, caps.MaxImageCount)

	c.Swapchain.Format = format
	c.Swapchain.DepthFormat = depth
	c.Swapchain.Extent = extent
	c.log.Infof("swap chain: %s, %d images, format %d, depth format %d",
		extent, imageCount, format.Format, depth)

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          c.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent.toVk(),
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	var swapchain vk.Swapchain
	if err := check("vkCreateSwapchainKHR", vk.CreateSwapchain(c.Device, &info, nil, &swapchain)); err != nil {
		return err
	}
	c.Swapchain.Handle = swapchain

	c.Swapchain.Images.Reset()
	err = memory.Enumerate(c.Swapchain.Images, func(count *uint32, dst []vk.Image) error {
		return check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(c.Device, c.Swapchain.Handle, count, dst))
	})
	if err != nil {
		return err
	}
	c.Swapchain.ImageCount = uint32(c.Swapchain.Images.Len())

	c.Swapchain.Views.Reset()
	for _, image := range c.Swapchain.Images.Slice() {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if err := check("vkCreateImageView", vk.CreateImageView(c.Device, &viewInfo, nil, &view)); err != nil {
			return err
		}
		if err := c.Swapchain.Views.Append(view); err != nil {
			vk.DestroyImageView(c.Device, view, nil)
			return err
		}
	}
	c.log.Infof("Swapchain created successfully")
	return nil
}

// destroySwapchain releases views, swap chain, and semaphores, in that order.
func (c *DeviceContext) destroySwapchain() {
	for _, view := range c.Swapchain.Views.Slice() {
		if view != vk.NullImageView {
			vk.DestroyImageView(c.Device, view, nil)
		}
	}
	c.Swapchain.Views.Reset()
	c.Swapchain.Images.Reset()

	if c.Swapchain.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(c.Device, c.Swapchain.Handle, nil)
		c.Swapchain.Handle = vk.NullSwapchain
	}
	if c.Swapchain.ImageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(c.Device, c.Swapchain.ImageAvailable, nil)
		c.Swapchain.ImageAvailable = vk.NullSemaphore
	}
	if c.Swapchain.RenderFinished != vk.NullSemaphore {
		vk.DestroySemaphore(c.Device, c.Swapchain.RenderFinished, nil)
		c.Swapchain.RenderFinished = vk.NullSemaphore
	}
	c.Swapchain.ImageCount = 0
}
