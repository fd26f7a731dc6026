package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// ResultError is a Vulkan call that returned something other than VK_SUCCESS.
type ResultError struct {
	Op     string
	Result vk.Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, ResultString(e.Result))
}

// Unwrap exposes the conditions callers are expected to react to.
func (e *ResultError) Unwrap() error {
	switch e.Result {
	case vk.ErrorDeviceLost:
		return core.ErrDeviceLost
	case vk.ErrorSurfaceLost, vk.ErrorOutOfDate:
		return core.ErrSurfaceLost
	}
	return nil
}

// Stage is one step of the initialization pipeline.
type Stage int

const (
	StageInstance Stage = iota
	StageSurface
	StageEnumerateDevices
	StageSelectDevice
	StageVerifyExtensions
	StageQueueFamilies
	StageLogicalDevice
	StageSwapchain
	StageCommandPool
	stageCount
)

var stageNames = [stageCount]string{
	"instance",
	"surface",
	"enumerate devices",
	"select device",
	"verify extensions",
	"queue families",
	"logical device",
	"swap chain",
	"command pool",
}

func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageError is the first failure of Initialize.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("vulkan init: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExtensionError lists required device extensions the selected device lacks.
type ExtensionError struct {
	Missing []string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("device extensions not supported: %s", strings.Join(e.Missing, ", "))
}

func (e *ExtensionError) Unwrap() error {
	return core.ErrExtensionUnsupported
}

// ExtentError is a requested swap-chain extent outside the surface limits.
type ExtentError struct {
	Extent   Extent
	Min, Max Extent
}

func (e *ExtentError) Error() string {
	return fmt.Sprintf("extent %s outside [%s, %s]", e.Extent, e.Min, e.Max)
}

func (e *ExtentError) Unwrap() error {
	return core.ErrExtentOutOfBounds
}
