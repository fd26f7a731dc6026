// Package platform owns the windowing subsystem and the window the renderer
// presents to. Both are held in Scoped handles so each is destroyed exactly once.
package platform

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
)

// GLFW is the windowing subsystem. Its handle is true while initialised.
type GLFW struct{}

func (GLFW) Acquire() (bool, error) {
	if err := glfw.Init(); err != nil {
		return false, err
	}
	return true, nil
}

func (GLFW) Release(bool) {
	glfw.Terminate()
}

// WindowSpec describes a window suitable for a Vulkan surface.
type WindowSpec struct {
	Title  string
	X, Y   int
	Width  int
	Height int
}

func (w WindowSpec) Acquire() (*glfw.Window, error) {
	if w.Width <= 0 || w.Height <= 0 {
		return nil, fmt.Errorf("window %dx%d: invalid size", w.Width, w.Height)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(w.Width, w.Height, w.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	if w.X != 0 || w.Y != 0 {
		window.SetPos(w.X, w.Y)
	}
	window.SetKeyCallback(keyCallback)
	window.Show()
	return window, nil
}

func (WindowSpec) Release(w *glfw.Window) {
	w.Destroy()
}

// Platform is the window plus the subsystem it lives in. It must be created and
// used on the thread that called runtime.LockOSThread.
type Platform struct {
	context *Scoped[bool]
	window  *Scoped[*glfw.Window]
	log     *core.Logger
}

// New initialises GLFW and opens a window described by cfg. On failure nothing
// is left acquired.
func New(cfg core.Config, log *core.Logger) (*Platform, error) {
	ctx, err := Make[bool](GLFW{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		ctx.Close()
		return nil, errors.New("glfw: no Vulkan loader found")
	}

	win, err := Make[*glfw.Window](WindowSpec{
		Title:  cfg.Application.Name,
		X:      int(cfg.Window.X),
		Y:      int(cfg.Window.Y),
		Width:  int(cfg.Window.Width),
		Height: int(cfg.Window.Height),
	})
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	log.Debugf("window %dx%d created", cfg.Window.Width, cfg.Window.Height)
	return &Platform{context: ctx, window: win, log: log}, nil
}

// RequiredInstanceExtensions lists the instance extensions the window system needs.
func (p *Platform) RequiredInstanceExtensions() []string {
	return p.window.Value().GetRequiredInstanceExtensions()
}

// ProcAddr is the loader entry point handed to the Vulkan binding.
func (p *Platform) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// SurfaceCallback returns the function the renderer calls once it has an
// instance to create the presentation surface.
func (p *Platform) SurfaceCallback() func(vk.Instance) (vk.Surface, error) {
	return func(instance vk.Instance) (vk.Surface, error) {
		ptr, err := p.window.Value().CreateWindowSurface(instance, nil)
		if err != nil {
			return vk.NullSurface, err
		}
		return vk.SurfaceFromPointer(ptr), nil
	}
}

func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.window.Value().ShouldClose()
}

func (p *Platform) SetTitle(title string) {
	p.window.Value().SetTitle(title)
}

// FramebufferSize is the drawable size in pixels, which may differ from the
// window size on high-DPI displays.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.window.Value().GetFramebufferSize()
	return uint32(w), uint32(h)
}

// Close destroys the window, then terminates GLFW.
func (p *Platform) Close() {
	p.window.Close()
	p.context.Close()
	p.log.Debugf("platform shut down")
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}
