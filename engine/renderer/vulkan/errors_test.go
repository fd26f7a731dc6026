package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkcore/engine/core"
)

func TestResultErrorMapping(t *testing.T) {
	tests := []struct {
		result vk.Result
		target error
	}{
		{vk.ErrorDeviceLost, core.ErrDeviceLost},
		{vk.ErrorSurfaceLost, core.ErrSurfaceLost},
		{vk.ErrorOutOfDate, core.ErrSurfaceLost},
	}
	for _, tt := range tests {
		err := check("vkQueuePresentKHR", tt.result)
		require.Error(t, err)
		assert.ErrorIs(t, err, tt.target, ResultString(tt.result))
	}

	err := check("vkQueueSubmit", vk.ErrorOutOfHostMemory)
	assert.NotErrorIs(t, err, core.ErrDeviceLost)
	assert.NotErrorIs(t, err, core.ErrSurfaceLost)
	assert.Equal(t, "vkQueueSubmit failed: VK_ERROR_OUT_OF_HOST_MEMORY", err.Error())
}

func TestCheckSuccessAndSuboptimal(t *testing.T) {
	assert.NoError(t, check("op", vk.Success))

	err := check("vkAcquireNextImageKHR", vk.Suboptimal)
	var re *ResultError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, vk.Suboptimal, re.Result)
}

func TestResultStringUnknown(t *testing.T) {
	assert.Equal(t, "VK_ERROR_DEVICE_LOST", ResultString(vk.ErrorDeviceLost))
	assert.Equal(t, "VkResult(12345)", ResultString(vk.Result(12345)))
}

func TestStageErrorUnwraps(t *testing.T) {
	err := error(&StageError{Stage: StageQueueFamilies, Err: core.ErrNoSuitableQueueFamily})
	assert.ErrorIs(t, err, core.ErrNoSuitableQueueFamily)
	assert.Equal(t, "vulkan init: queue families: no queue family supports graphics and presentation", err.Error())

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageQueueFamilies, se.Stage)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "instance", StageInstance.String())
	assert.Equal(t, "command pool", StageCommandPool.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
}

func TestSafeStrings(t *testing.T) {
	in := []string{"VK_KHR_surface", "VK_KHR_swapchain\x00", ""}
	out := safeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_swapchain\x00", "\x00"}, out)
	assert.Equal(t, "VK_KHR_surface", in[0], "input must not be modified")
}
