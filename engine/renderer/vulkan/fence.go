package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
)

// Fence tracks whether the GPU has signaled it so waits on an already
// signaled fence return immediately.
type Fence struct {
	Handle   vk.Fence
	Signaled bool
}

func NewFence(device vk.Device, signaled bool) (*Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if err := check("vkCreateFence", vk.CreateFence(device, &info, nil, &handle)); err != nil {
		return nil, err
	}
	return &Fence{Handle: handle, Signaled: signaled}, nil
}

// Wait blocks until the fence is signaled.
func (f *Fence) Wait(device vk.Device) error {
	if f.Signaled {
		return nil
	}
	res := vk.WaitForFences(device, 1, []vk.Fence{f.Handle}, vk.True, math.MaxUint64)
	if err := check("vkWaitForFences", res); err != nil {
		return err
	}
	f.Signaled = true
	return nil
}

func (f *Fence) Reset(device vk.Device) error {
	if !f.Signaled {
		return nil
	}
	if err := check("vkResetFences", vk.ResetFences(device, 1, []vk.Fence{f.Handle})); err != nil {
		return err
	}
	f.Signaled = false
	return nil
}

func (f *Fence) Destroy(device vk.Device) {
	if f.Handle != vk.NullFence {
		vk.DestroyFence(device, f.Handle, nil)
		f.Handle = vk.NullFence
	}
	f.Signaled = false
}
