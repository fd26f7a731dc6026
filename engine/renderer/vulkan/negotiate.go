package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// The records below are flattened copies of the Vulkan structs the pipeline
// enumerates. They hold no Go pointers so they can live in arena storage.

// DeviceProperties is the subset of VkPhysicalDeviceProperties used for selection.
type DeviceProperties struct {
	Name                [vk.MaxPhysicalDeviceNameSize]byte
	Type                vk.PhysicalDeviceType
	APIVersion          uint32
	DriverVersion       uint32
	VendorID            uint32
	DeviceID            uint32
	MaxImageDimension2D uint32
}

func (p *DeviceProperties) DeviceName() string {
	return vk.ToString(p.Name[:])
}

// TypeName is "Discrete", "Integrated", "Virtual", "CPU" or "Unknown".
func (p *DeviceProperties) TypeName() string {
	return deviceTypeString(p.Type)
}

func (p *DeviceProperties) APIVersionString() string {
	return versionString(p.APIVersion)
}

func devicePropertiesFrom(in *vk.PhysicalDeviceProperties) DeviceProperties {
	in.Deref()
	in.Limits.Deref()
	return DeviceProperties{
		Name:                in.DeviceName,
		Type:                in.DeviceType,
		APIVersion:          in.ApiVersion,
		DriverVersion:       in.DriverVersion,
		VendorID:            in.VendorID,
		DeviceID:            in.DeviceID,
		MaxImageDimension2D: in.Limits.MaxImageDimension2D,
	}
}

// DeviceFeatures is the subset of VkPhysicalDeviceFeatures worth logging.
type DeviceFeatures struct {
	GeometryShader     bool
	TessellationShader bool
	SamplerAnisotropy  bool
	FillModeNonSolid   bool
	WideLines          bool
	MultiDrawIndirect  bool
}

func deviceFeaturesFrom(in *vk.PhysicalDeviceFeatures) DeviceFeatures {
	in.Deref()
	return DeviceFeatures{
		GeometryShader:     in.GeometryShader == vk.True,
		TessellationShader: in.TessellationShader == vk.True,
		SamplerAnisotropy:  in.SamplerAnisotropy == vk.True,
		FillModeNonSolid:   in.FillModeNonSolid == vk.True,
		WideLines:          in.WideLines == vk.True,
		MultiDrawIndirect:  in.MultiDrawIndirect == vk.True,
	}
}

// Extension is one entry of vkEnumerateDeviceExtensionProperties.
type Extension struct {
	Name        [vk.MaxExtensionNameSize]byte
	SpecVersion uint32
}

func (e *Extension) ExtensionName() string {
	return vk.ToString(e.Name[:])
}

// QueueFamily is a queue family plus whether it can present to the surface.
type QueueFamily struct {
	Flags      vk.QueueFlags
	QueueCount uint32
	Present    bool
}

func (q QueueFamily) Has(bit vk.QueueFlagBits) bool {
	return q.Flags&vk.QueueFlags(bit) != 0
}

type SurfaceFormat struct {
	Format     vk.Format
	ColorSpace vk.ColorSpace
}

type Extent struct {
	Width, Height uint32
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

func (e Extent) toVk() vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func extentFrom(in vk.Extent2D) Extent {
	in.Deref()
	return Extent{Width: in.Width, Height: in.Height}
}

// SurfaceCapabilities is the subset of VkSurfaceCapabilitiesKHR the swap chain needs.
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32
	CurrentExtent    Extent
	MinImageExtent   Extent
	MaxImageExtent   Extent
	CurrentTransform vk.SurfaceTransformFlagBits
}

func surfaceCapabilitiesFrom(in *vk.SurfaceCapabilities) SurfaceCapabilities {
	in.Deref()
	return SurfaceCapabilities{
		MinImageCount:    in.MinImageCount,
		MaxImageCount:    in.MaxImageCount,
		CurrentExtent:    extentFrom(in.CurrentExtent),
		MinImageExtent:   extentFrom(in.MinImageExtent),
		MaxImageExtent:   extentFrom(in.MaxImageExtent),
		CurrentTransform: in.CurrentTransform,
	}
}

var (
	// PreferredSurfaceFormat is picked when the surface offers it.
	PreferredSurfaceFormat = SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	// FallbackSurfaceFormat is used when the surface has no preference.
	FallbackSurfaceFormat = SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	// DepthFormatCandidates in order of preference.
	DepthFormatCandidates = []vk.Format{
		vk.FormatD32SfloatS8Uint,
		vk.FormatD32Sfloat,
		vk.FormatD24UnormS8Uint,
		vk.FormatD16UnormS8Uint,
		vk.FormatD16Unorm,
	}
)

// ScoreDevice ranks a device: discrete GPUs first, then by maximum 2D image size.
func ScoreDevice(p DeviceProperties) uint64 {
	var score uint64
	if p.Type == vk.PhysicalDeviceTypeDiscreteGpu {
		score += 10000
	}
	return score + uint64(p.MaxImageDimension2D)
}

// ChoosePhysicalDevice returns the index of the highest scoring device. Ties
// go to the earliest.
func ChoosePhysicalDevice(props []DeviceProperties) (int, error) {
	if len(props) == 0 {
		return -1, core.ErrNoPhysicalDevice
	}
	best, bestScore := 0, ScoreDevice(props[0])
	for i := 1; i < len(props); i++ {
		if s := ScoreDevice(props[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, nil
}

// MissingExtensions returns the required names absent from available, in
// required order. Matching is exact.
func MissingExtensions(available []Extension, required []string) []string {
	have := make(map[string]struct{}, len(available))
	for i := range available {
		have[available[i].ExtensionName()] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// SelectGraphicsFamily returns the first family with graphics and present
// support, or -1.
func SelectGraphicsFamily(families []QueueFamily) int {
	for i, f := range families {
		if f.Has(vk.QueueGraphicsBit) && f.Present {
			return i
		}
	}
	return -1
}

// SelectComputeFamily prefers a dedicated compute family, then any family with
// compute, then -1.
func SelectComputeFamily(families []QueueFamily) int {
	for i, f := range families {
		if f.Has(vk.QueueComputeBit) && !f.Has(vk.QueueGraphicsBit) {
			return i
		}
	}
	for i, f := range families {
		if f.Has(vk.QueueComputeBit) {
			return i
		}
	}
	return -1
}

// ChooseSurfaceFormat picks the swap-chain format from what the surface offers.
func ChooseSurfaceFormat(formats []SurfaceFormat) (SurfaceFormat, error) {
	switch {
	case len(formats) == 0:
		return SurfaceFormat{}, core.ErrNoSurfaceFormat
	case len(formats) == 1 && formats[0].Format == vk.FormatUndefined:
		return FallbackSurfaceFormat, nil
	}
	for _, f := range formats {
		if f == PreferredSurfaceFormat {
			return f, nil
		}
	}
	return formats[0], nil
}

// FormatProbe reports the optimal-tiling features of a format.
type FormatProbe func(vk.Format) vk.FormatFeatureFlags

// ChooseDepthFormat returns the first candidate usable as an optimal-tiling
// depth-stencil attachment.
func ChooseDepthFormat(candidates []vk.Format, probe FormatProbe) (vk.Format, error) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, f := range candidates {
		if probe(f)&want == want {
			return f, nil
		}
	}
	return vk.FormatUndefined, core.ErrNoDepthFormat
}

// ChooseImageCount asks for one image above the minimum, clamped to the
// maximum when the surface sets one.
func ChooseImageCount(minCount, maxCount uint32) uint32 {
	n := minCount + 1
	if maxCount > 0 && n > maxCount {
		n = maxCount
	}
	return n
}

// ChooseExtent uses the surface's current extent unless the surface leaves it
// to the application, in which case expected is used. The result must fall
// within the surface limits.
func ChooseExtent(caps SurfaceCapabilities, expected Extent) (Extent, error) {
	ext := caps.CurrentExtent
	if ext.Width == math.MaxUint32 && ext.Height == math.MaxUint32 {
		ext = expected
	}
	if ext.Width < caps.MinImageExtent.Width || ext.Width > caps.MaxImageExtent.Width ||
		ext.Height < caps.MinImageExtent.Height || ext.Height > caps.MaxImageExtent.Height {
		return Extent{}, &ExtentError{Extent: ext, Min: caps.MinImageExtent, Max: caps.MaxImageExtent}
	}
	return ext, nil
}

// MemoryType is one entry of VkPhysicalDeviceMemoryProperties.memoryTypes.
type MemoryType struct {
	PropertyFlags vk.MemoryPropertyFlags
	HeapIndex     uint32
}

// MemoryTypeIndex returns the first memory type allowed by typeBits that has
// all of flags.
func MemoryTypeIndex(types []MemoryType, typeBits uint32, flags vk.MemoryPropertyFlags) (uint32, bool) {
	for i, t := range types {
		if i >= 32 {
			break
		}
		if typeBits&(1<<uint(i)) != 0 && t.PropertyFlags&flags == flags {
			return uint32(i), true
		}
	}
	return 0, false
}
