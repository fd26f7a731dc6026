package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/assets"
	"github.com/spaghettifunk/vkcore/engine/core"
	"github.com/spaghettifunk/vkcore/engine/memory"
	"github.com/spaghettifunk/vkcore/engine/platform"
	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageStopped
)

// Engine owns one rendering session: the window, the arena, the device
// context, the shader catalog and the scene drawn every frame. Every method
// must be called from the thread that locked the OS thread for GLFW.
type Engine struct {
	currentStage Stage
	cfg          core.Config
	log          *core.Logger

	scene    Scene
	platform *platform.Platform
	arena    *memory.Arena
	context  *vulkan.DeviceContext
	frame    *vulkan.Frame
	catalog  *assets.ShaderCatalog

	clock    *core.Clock
	metrics  core.FrameMetrics
	lastTime time.Duration
	frames   uint64
}

func New(cfg core.Config, scene Scene, log *core.Logger) (*Engine, error) {
	if scene == nil {
		return nil, errors.New("engine: nil scene")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = core.NewNopLogger()
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		cfg:          cfg,
		log:          log,
		scene:        scene,
		clock:        core.NewClock(),
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Context exposes the device context once Initialize has succeeded.
func (e *Engine) Context() *vulkan.DeviceContext {
	return e.context
}

// Initialize opens the window and brings the renderer up. Whatever was created
// before a failure is released by Shutdown.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine: initialize in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	p, err := platform.New(e.cfg, e.log)
	if err != nil {
		return err
	}
	e.platform = p

	e.arena = memory.NewArena(e.cfg.Renderer.ArenaSize)
	ctx, err := vulkan.NewDeviceContext(e.arena, e.log)
	if err != nil {
		return err
	}
	e.context = ctx

	if err := ctx.Initialize(BuildInitConfig(e.cfg, e.platform)); err != nil {
		return err
	}
	e.log.Infof("arena: %s", e.arena.Metrics())

	catalog, err := assets.NewShaderCatalog(e.cfg.Renderer.ShaderDir, e.log)
	if err != nil {
		return fmt.Errorf("shader catalog: %w", err)
	}
	e.catalog = catalog
	for _, info := range catalog.List() {
		e.validateShader(info)
	}

	frame, err := vulkan.NewFrame(ctx, vulkan.FrameConfig{UseFences: e.cfg.Renderer.FrameFences})
	if err != nil {
		return err
	}
	e.frame = frame

	if err := e.scene.Initialize(ctx); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run draws frames until the window closes, ctx is cancelled or maxFrames
// frames were presented. Zero maxFrames means no limit.
func (e *Engine) Run(ctx context.Context, maxFrames uint64) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine: run in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()
	defer e.clock.Stop()

	lastTitle := time.Duration(0)
	for {
		if err := ctx.Err(); err != nil {
			e.log.Infof("interrupted, stopping after %d frames", e.frames)
			return nil
		}
		e.platform.PollEvents()
		if e.platform.ShouldClose() {
			e.log.Infof("window closed after %d frames", e.frames)
			return nil
		}
		e.drainShaderChanges()

		if err := e.drawFrame(); err != nil {
			if errors.Is(err, core.ErrSurfaceLost) {
				e.log.Warnf("surface lost, stopping: %v", err)
			}
			return err
		}
		e.frames++

		e.clock.Update()
		now := e.clock.Elapsed()
		e.metrics.Update(now - e.lastTime)
		e.lastTime = now
		if now-lastTitle >= time.Second {
			lastTitle = now
			e.platform.SetTitle(fmt.Sprintf("%s | %d fps | %.2f ms",
				e.cfg.Application.Name, e.metrics.FPS(), float64(e.metrics.FrameTime().Microseconds())/1000))
		}

		if maxFrames > 0 && e.frames >= maxFrames {
			e.log.Infof("presented %d frames", e.frames)
			return nil
		}
	}
}

func (e *Engine) drawFrame() error {
	index, err := e.frame.AcquireNextImage()
	if err != nil {
		return err
	}
	cmd, err := e.scene.Render(index)
	if err != nil {
		return err
	}
	if err := e.frame.Submit(cmd, e.scene.WaitStage()); err != nil {
		return err
	}
	return e.frame.Present(index)
}

func (e *Engine) drainShaderChanges() {
	if e.catalog == nil {
		return
	}
	for {
		select {
		case c, ok := <-e.catalog.Changes():
			if !ok {
				return
			}
			switch c.Kind {
			case assets.Updated:
				e.validateShader(c.Shader)
			case assets.Removed:
				e.log.Infof("shader %s removed", c.Shader.Name)
			}
		default:
			return
		}
	}
}

// validateShader builds a module from the shader on disk and drops it again,
// so a broken blob is reported as soon as it shows up.
func (e *Engine) validateShader(info assets.ShaderInfo) {
	module, err := vulkan.LoadShaderModule(e.context, info.Path)
	if err != nil {
		e.log.Warnf("shader %s rejected: %v", info.Name, err)
		return
	}
	vulkan.DestroyShaderModule(e.context, module)
	e.log.Debugf("shader %s (%s) ok", info.Name, info.Stage)
}

// Shutdown releases everything in reverse order of creation. It is safe after
// a failed Initialize and when called twice.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageStopped {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if e.context != nil && e.context.Device != nil {
		vk.DeviceWaitIdle(e.context.Device)
		e.scene.Destroy()
	}
	if e.frame != nil {
		e.frame.Destroy()
		e.frame = nil
	}
	var err error
	if e.catalog != nil {
		err = e.catalog.Close()
		e.catalog = nil
	}
	if e.context != nil {
		e.context.Shutdown()
		e.context = nil
	}
	if e.arena != nil {
		e.arena.Release()
		e.arena = nil
	}
	if e.platform != nil {
		e.platform.Close()
		e.platform = nil
	}

	e.currentStage = EngineStageStopped
	return err
}
