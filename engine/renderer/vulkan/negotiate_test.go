package vulkan

import (
	"errors"
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkcore/engine/core"
)

func device(name string, typ vk.PhysicalDeviceType, maxDim uint32) DeviceProperties {
	p := DeviceProperties{Type: typ, MaxImageDimension2D: maxDim}
	copy(p.Name[:], name)
	return p
}

func TestScoreDevice(t *testing.T) {
	assert.Equal(t, uint64(10000+16384), ScoreDevice(device("dgpu", vk.PhysicalDeviceTypeDiscreteGpu, 16384)))
	assert.Equal(t, uint64(8192), ScoreDevice(device("igpu", vk.PhysicalDeviceTypeIntegratedGpu, 8192)))
	assert.Equal(t, uint64(4096), ScoreDevice(device("cpu", vk.PhysicalDeviceTypeCpu, 4096)))
}

func TestChoosePhysicalDevice(t *testing.T) {
	tests := []struct {
		name  string
		props []DeviceProperties
		want  int
	}{
		{
			name: "discrete beats larger integrated",
			props: []DeviceProperties{
				device("igpu", vk.PhysicalDeviceTypeIntegratedGpu, 16384),
				device("dgpu", vk.PhysicalDeviceTypeDiscreteGpu, 8192),
			},
			want: 1,
		},
		{
			name: "tie goes to the first",
			props: []DeviceProperties{
				device("a", vk.PhysicalDeviceTypeDiscreteGpu, 8192),
				device("b", vk.PhysicalDeviceTypeDiscreteGpu, 8192),
			},
			want: 0,
		},
		{
			name: "larger image dimension wins among equals",
			props: []DeviceProperties{
				device("a", vk.PhysicalDeviceTypeIntegratedGpu, 4096),
				device("b", vk.PhysicalDeviceTypeIntegratedGpu, 8192),
				device("c", vk.PhysicalDeviceTypeCpu, 2048),
			},
			want: 1,
		},
		{
			name:  "single device",
			props: []DeviceProperties{device("only", vk.PhysicalDeviceTypeCpu, 1)},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChoosePhysicalDevice(tt.props)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := ChoosePhysicalDevice(tt.props)
			require.NoError(t, err)
			assert.Equal(t, got, again, "selection must be deterministic")
		})
	}
}

func TestChoosePhysicalDeviceEmpty(t *testing.T) {
	idx, err := ChoosePhysicalDevice(nil)
	require.ErrorIs(t, err, core.ErrNoPhysicalDevice)
	assert.Equal(t, -1, idx)
}

func TestDeviceName(t *testing.T) {
	p := device("NVIDIA GeForce", vk.PhysicalDeviceTypeDiscreteGpu, 1)
	assert.Equal(t, "NVIDIA GeForce", p.DeviceName())
}

func extensions(names ...string) []Extension {
	out := make([]Extension, len(names))
	for i, n := range names {
		out[i] = Extension{Name: fixedName(n), SpecVersion: 1}
	}
	return out
}

func TestMissingExtensions(t *testing.T) {
	available := extensions("VK_KHR_swapchain", "VK_EXT_memory_budget", "VK_KHR_maintenance1")

	assert.Empty(t, MissingExtensions(available, []string{"VK_KHR_swapchain", "VK_EXT_memory_budget"}))
	assert.Empty(t, MissingExtensions(available, nil))

	missing := MissingExtensions(available, []string{"VK_KHR_ray_query", "VK_KHR_swapchain", "VK_EXT_mesh_shader"})
	assert.Equal(t, []string{"VK_KHR_ray_query", "VK_EXT_mesh_shader"}, missing)
}

func TestMissingExtensionsIsExact(t *testing.T) {
	available := extensions("VK_KHR_swapchain")
	assert.Equal(t, []string{"vk_khr_swapchain"}, MissingExtensions(available, []string{"vk_khr_swapchain"}))
	assert.Equal(t, []string{"VK_KHR_swap"}, MissingExtensions(available, []string{"VK_KHR_swap"}))
}

func TestExtensionErrorWrapsSentinel(t *testing.T) {
	var err error = &ExtensionError{Missing: []string{"VK_KHR_swapchain"}}
	assert.ErrorIs(t, err, core.ErrExtensionUnsupported)
	assert.Contains(t, err.Error(), "VK_KHR_swapchain")
}

func family(flags vk.QueueFlagBits, present bool) QueueFamily {
	return QueueFamily{Flags: vk.QueueFlags(flags), QueueCount: 1, Present: present}
}

func TestSelectGraphicsFamily(t *testing.T) {
	families := []QueueFamily{
		family(vk.QueueTransferBit, true),
		family(vk.QueueGraphicsBit|vk.QueueComputeBit, false),
		family(vk.QueueGraphicsBit|vk.QueueComputeBit, true),
		family(vk.QueueGraphicsBit, true),
	}
	assert.Equal(t, 2, SelectGraphicsFamily(families))

	assert.Equal(t, -1, SelectGraphicsFamily(families[:2]))
	assert.Equal(t, -1, SelectGraphicsFamily(nil))
}

func TestQueueFamilyRolesMixedList(t *testing.T) {
	families := []QueueFamily{
		family(vk.QueueComputeBit, false),
		family(vk.QueueGraphicsBit, true),
		family(vk.QueueGraphicsBit|vk.QueueComputeBit, true),
	}
	assert.Equal(t, 1, SelectGraphicsFamily(families))
	assert.Equal(t, 0, SelectComputeFamily(families))
}

func TestSelectComputeFamily(t *testing.T) {
	t.Run("dedicated compute preferred", func(t *testing.T) {
		families := []QueueFamily{
			family(vk.QueueGraphicsBit|vk.QueueComputeBit, true),
			family(vk.QueueTransferBit, false),
			family(vk.QueueComputeBit|vk.QueueTransferBit, false),
		}
		assert.Equal(t, 2, SelectComputeFamily(families))
	})
	t.Run("falls back to first compute", func(t *testing.T) {
		families := []QueueFamily{
			family(vk.QueueTransferBit, false),
			family(vk.QueueGraphicsBit|vk.QueueComputeBit, true),
			family(vk.QueueGraphicsBit|vk.QueueComputeBit, false),
		}
		assert.Equal(t, 1, SelectComputeFamily(families))
	})
	t.Run("none", func(t *testing.T) {
		families := []QueueFamily{family(vk.QueueGraphicsBit, true)}
		assert.Equal(t, -1, SelectComputeFamily(families))
	})
}

func TestChooseSurfaceFormat(t *testing.T) {
	bgra := SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		formats []SurfaceFormat
		want    SurfaceFormat
	}{
		{"single undefined uses fallback", []SurfaceFormat{{Format: vk.FormatUndefined}}, FallbackSurfaceFormat},
		{"preferred present", []SurfaceFormat{bgra, PreferredSurfaceFormat, srgb}, PreferredSurfaceFormat},
		{"otherwise first", []SurfaceFormat{srgb, bgra}, srgb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChooseSurfaceFormat(tt.formats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ChooseSurfaceFormat(nil)
	require.ErrorIs(t, err, core.ErrNoSurfaceFormat)
}

func TestChooseDepthFormat(t *testing.T) {
	depth := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	var probed []vk.Format
	probe := func(supported ...vk.Format) FormatProbe {
		return func(f vk.Format) vk.FormatFeatureFlags {
			probed = append(probed, f)
			for _, s := range supported {
				if s == f {
					return depth | vk.FormatFeatureFlags(vk.FormatFeatureSampledImageBit)
				}
			}
			return vk.FormatFeatureFlags(vk.FormatFeatureSampledImageBit)
		}
	}

	got, err := ChooseDepthFormat(DepthFormatCandidates, probe(vk.FormatD24UnormS8Uint, vk.FormatD16Unorm))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD24UnormS8Uint, got)
	assert.Equal(t, []vk.Format{vk.FormatD32SfloatS8Uint, vk.FormatD32Sfloat, vk.FormatD24UnormS8Uint}, probed)

	probed = nil
	got, err = ChooseDepthFormat(DepthFormatCandidates, probe())
	require.ErrorIs(t, err, core.ErrNoDepthFormat)
	assert.Equal(t, vk.FormatUndefined, got)
	assert.Len(t, probed, len(DepthFormatCandidates))
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 0, 3},
		{2, 3, 3},
		{2, 8, 3},
		{2, 2, 2},
		{3, 3, 3},
		{1, 0, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChooseImageCount(tt.min, tt.max), "min=%d max=%d", tt.min, tt.max)
	}
}

func TestChooseExtent(t *testing.T) {
	caps := SurfaceCapabilities{
		CurrentExtent:  Extent{1280, 720},
		MinImageExtent: Extent{1, 1},
		MaxImageExtent: Extent{4096, 4096},
	}

	got, err := ChooseExtent(caps, Extent{800, 600})
	require.NoError(t, err)
	assert.Equal(t, Extent{1280, 720}, got, "current extent wins when set")

	caps.CurrentExtent = Extent{math.MaxUint32, math.MaxUint32}
	got, err = ChooseExtent(caps, Extent{800, 600})
	require.NoError(t, err)
	assert.Equal(t, Extent{800, 600}, got, "expected extent used when surface defers")

	_, err = ChooseExtent(caps, Extent{8000, 600})
	require.ErrorIs(t, err, core.ErrExtentOutOfBounds)
	var extErr *ExtentError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, Extent{8000, 600}, extErr.Extent)

	_, err = ChooseExtent(caps, Extent{0, 0})
	require.ErrorIs(t, err, core.ErrExtentOutOfBounds)
}

func TestMemoryTypeIndex(t *testing.T) {
	host := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	local := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	types := []MemoryType{
		{PropertyFlags: local, HeapIndex: 0},
		{PropertyFlags: host, HeapIndex: 1},
		{PropertyFlags: host | local, HeapIndex: 0},
	}

	idx, ok := MemoryTypeIndex(types, 0b111, host)
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx)

	idx, ok = MemoryTypeIndex(types, 0b101, host)
	require.True(t, ok)
	assert.Equal(t, uint32(2), idx, "type bits exclude index 1")

	_, ok = MemoryTypeIndex(types, 0b001, host)
	assert.False(t, ok)
}
