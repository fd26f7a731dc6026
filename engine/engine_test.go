package engine

import (
	"bytes"
	"context"
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkcore/engine/core"
	"github.com/spaghettifunk/vkcore/engine/memory"
	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

type fakeWindow struct {
	exts          []string
	width, height uint32
}

func (w *fakeWindow) RequiredInstanceExtensions() []string { return w.exts }

func (w *fakeWindow) SurfaceCallback() func(vk.Instance) (vk.Surface, error) {
	return func(vk.Instance) (vk.Surface, error) { return vk.NullSurface, nil }
}

func (w *fakeWindow) ProcAddr() unsafe.Pointer { return nil }

func (w *fakeWindow) FramebufferSize() (uint32, uint32) { return w.width, w.height }

type nopScene struct{ destroyed int }

func (s *nopScene) Initialize(*vulkan.DeviceContext) error { return nil }

func (s *nopScene) Render(uint32) (vk.CommandBuffer, error) { return nil, nil }

func (s *nopScene) WaitStage() vk.PipelineStageFlagBits { return vk.PipelineStageTransferBit }

func (s *nopScene) Destroy() { s.destroyed++ }

func TestBuildInitConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	ws := &fakeWindow{exts: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}}

	ic := BuildInitConfig(cfg, ws)
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", ExtPhysicalDeviceProperties2}, ic.InstanceExtensions)
	assert.Empty(t, ic.ValidationLayers)
	assert.Equal(t, []string{ExtSwapchain, ExtMemoryBudget}, ic.DeviceExtensions)
	assert.Equal(t, vulkan.Extent{Width: 1280, Height: 720}, ic.ExpectedExtent)
	assert.Equal(t, "vkcore", ic.ApplicationName)
	assert.NotNil(t, ic.Surface)
	assert.False(t, ic.Debug)
	assert.Len(t, ws.exts, 2, "window extension list must not be modified")
}

func TestBuildInitConfigDebugAndFramebuffer(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Renderer.Debug = true
	ws := &fakeWindow{exts: []string{"VK_KHR_surface"}, width: 2560, height: 1440}

	ic := BuildInitConfig(cfg, ws)
	assert.Contains(t, ic.InstanceExtensions, ExtDebugReport)
	assert.Equal(t, []string{LayerKhronosValidation}, ic.ValidationLayers)
	assert.Equal(t, vulkan.Extent{Width: 2560, Height: 1440}, ic.ExpectedExtent)
	assert.True(t, ic.Debug)
}

func TestNewEngineValidates(t *testing.T) {
	_, err := New(core.DefaultConfig(), nil, nil)
	require.Error(t, err)

	cfg := core.DefaultConfig()
	cfg.Window.Width = 0
	_, err = New(cfg, &nopScene{}, nil)
	require.Error(t, err)
}

func TestEngineLifecycleWithoutInitialize(t *testing.T) {
	scene := &nopScene{}
	e, err := New(core.DefaultConfig(), scene, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineStageUninitialized, e.Stage())

	require.Error(t, e.Run(context.Background(), 1))

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageStopped, e.Stage())
	assert.Zero(t, scene.destroyed, "scene without a device is never destroyed")
	require.Error(t, e.Initialize())
}

func TestProbeReportWrite(t *testing.T) {
	r := &ProbeReport{
		Devices: []ProbeDevice{
			{Name: "llvmpipe", Type: "CPU", APIVersion: "1.3.0", Score: 8192},
			{Name: "Radeon", Type: "Discrete", APIVersion: "1.3.0", Score: 26384, Selected: true},
		},
		QueueFamilies: []vulkan.QueueFamily{
			{Flags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit), QueueCount: 1, Present: true},
			{Flags: vk.QueueFlags(vk.QueueComputeBit), QueueCount: 2},
		},
		GraphicsFamily: 0,
		ComputeFamily:  1,
		Arena:          memory.ArenaMetrics{Used: 25, Capacity: 100, Remaining: 75, Utilization: 0.25},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "Radeon")
	assert.Contains(t, out, "26384")
	assert.Contains(t, out, "graphics")
	assert.Contains(t, out, "compute")
	assert.Contains(t, out, "25/100 bytes (25.0%)")
}
