package core

import (
	"errors"
)

// Allocator and container errors. These signal a sizing bug in the compile-time
// capacities rather than a runtime condition.
var (
	ErrOutOfCapacity    = errors.New("arena out of capacity")
	ErrArenaReleased    = errors.New("arena already released")
	ErrCapacityExceeded = errors.New("sequence capacity exceeded")
	ErrUnbacked         = errors.New("sequence has no backing storage")
)

// Device negotiation errors.
var (
	ErrNoPhysicalDevice       = errors.New("no physical device available")
	ErrExtensionUnsupported   = errors.New("required extension not supported")
	ErrValidationLayerMissing = errors.New("required validation layer missing")
	ErrNoSuitableQueueFamily  = errors.New("no queue family supports graphics and presentation")
	ErrQueueUnavailable       = errors.New("device queue unavailable")
	ErrNoSurfaceFormat        = errors.New("surface reports no formats")
	ErrNoDepthFormat          = errors.New("no supported depth-stencil format")
	ErrExtentOutOfBounds      = errors.New("swapchain extent outside surface bounds")
	ErrInitFailed             = errors.New("initialization failed, shut down before retrying")
)

// Runtime errors surfaced by the frame loop.
var (
	ErrDeviceLost  = errors.New("device lost")
	ErrSurfaceLost = errors.New("surface lost")
)

// Asset errors.
var (
	ErrEmptyShader   = errors.New("shader binary is empty")
	ErrInvalidShader = errors.New("invalid SPIR-V binary")
)
