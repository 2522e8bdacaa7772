package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/grindsim/engine/assets"
	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/config"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/platform"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/components"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/renderer/vulkan"
	"github.com/spaghettifunk/grindsim/engine/scene"
	"github.com/spaghettifunk/grindsim/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageShutdown
)

// eventPump is the part of the platform the run loop polls.
type eventPump interface {
	PumpMessages()
	ShouldClose() bool
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *config.Config

	platform *platform.Platform
	backend  *vulkan.VulkanRenderer
	window   renderer.Window
	events   eventPump
	device   renderer.Device

	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	frames        *renderer.FrameController
	pipelines     metadata.Pipelines
	composer      *renderer.RenderComposer
	lights        *renderer.PointLightSystem

	store     *scene.Store
	camera    *components.Camera
	orbit     *components.OrbitCamera
	headlight *scene.SceneObject
	manifest  *loaders.SceneManifest

	materials map[materialTarget]appliedMaterial
	reloads   *materialReloads
	watching  bool

	tracks  map[string]renderer.InstanceBatch
	retired []retiredBuffer

	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
	motionEnabled bool
	frameCount    uint64
	recreations   int
	lastStats     renderer.DrawStats
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine needs a game with an application config")
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		materials:    make(map[materialTarget]appliedMaterial),
		tracks:       make(map[string]renderer.InstanceBatch),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

func (e *Engine) loadConfig() (*config.Config, error) {
	app := e.gameInstance.ApplicationConfig
	if app.Config != nil {
		return app.Config, app.Config.Validate()
	}
	return config.Load(app.ConfigPath)
}

/**
 * @brief Loads the configuration, opens the window, brings up the Vulkan
 * backend and builds the scene.
 */
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if err := core.InitLogging(cfg.Logging); err != nil {
		return err
	}
	core.LogInfo("Booting %s, session %s.", e.gameInstance.ApplicationConfig.Name, core.LogSession())

	p, err := platform.New()
	if err != nil {
		return err
	}
	name := e.gameInstance.ApplicationConfig.Name
	if len(name) == 0 {
		name = cfg.Window.Title
	}
	if err := p.Startup(name, cfg.Window.PosX, cfg.Window.PosY, cfg.Window.Width, cfg.Window.Height); err != nil {
		return err
	}
	e.platform = p
	p.SetInputHandler(e)

	root, err := filepath.Abs(cfg.Scene.AssetRoot)
	if err != nil {
		return err
	}
	am, err := assets.NewAssetManager(root)
	if err != nil {
		return err
	}
	e.assetManager = am

	backend := vulkan.New(p, vulkan.Config{
		AppName:        name,
		Validation:     cfg.Renderer.Validation,
		VSync:          cfg.Renderer.VSync,
		FramesInFlight: cfg.Renderer.FramesInFlight,
		MaxSets:        descriptorBudget(cfg.Renderer.FramesInFlight, cfg.Renderer.MaxObjects, cfg.Renderer.MaxTextures),
		Shaders:        am,
	})
	// Shutdown tolerates a partially initialized backend.
	e.backend = backend
	if err := backend.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize the Vulkan backend: %w", err)
	}

	return e.setup(cfg, p, p, backend, am)
}

// setup builds everything above the device. Tests call it with fakes.
func (e *Engine) setup(cfg *config.Config, window renderer.Window, events eventPump, device renderer.Device, am *assets.AssetManager) error {
	e.currentStage = EngineStageInitializing
	e.config = cfg
	e.window = window
	e.events = events
	e.device = device
	e.assetManager = am
	e.motionEnabled = cfg.Scene.MotionEnabled
	e.reloads = newMaterialReloads(cfg.Renderer.FramesInFlight)

	frames, err := renderer.NewFrameController(window, device, cfg.Renderer.FramesInFlight)
	if err != nil {
		return err
	}
	c := cfg.Renderer.ClearColor
	frames.SetClearColor(c[0], c[1], c[2], c[3])
	e.frames = frames

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		FramesInFlight:  cfg.Renderer.FramesInFlight,
		MaxTextureCount: cfg.Renderer.MaxTextures,
		Workers:         cfg.Renderer.DecodeWorkers,
		FlipY:           cfg.Scene.FlipTextures,
	}, device, am)
	if err != nil {
		return err
	}
	e.systemManager = sm

	pipelines, err := createPipelines(device, cfg.Renderer.ShaderDir)
	if err != nil {
		return err
	}
	e.pipelines = pipelines
	e.composer = renderer.NewRenderComposer(pipelines, sm.MeshRegistry, sm.MaterialSystem)
	e.lights = renderer.NewPointLightSystem(pipelines.PointLight)

	e.store = scene.NewStore(cfg.Scene.Seed)
	e.camera = components.NewCamera()
	e.orbit = components.NewOrbitCamera(cfg.Camera.Orbit())

	manifest, err := am.LoadScene(cfg.Scene.Manifest)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	if err := e.buildScene(manifest); err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}

	if cfg.Scene.HotReload {
		if err := am.Watch(cfg.Scene.Manifest); err != nil {
			core.LogWarn("hot reload disabled: %s", err)
		} else {
			e.watching = true
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	e.recreations = frames.Recreations()
	e.clock.Start()
	e.lastTime = e.clock.Elapsed()
	e.currentStage = EngineStageInitialized
	return nil
}

/**
 * @brief Produces one frame. Returns nil without drawing when the surface
 * is not ready, such as while minimized or right after a resize.
 */
func (e *Engine) RunFrame() error {
	e.clock.Update()
	now := e.clock.Elapsed()
	delta := now - e.lastTime
	e.lastTime = now
	dt := float32(delta)

	e.drainAssetEvents()
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return err
		}
	}

	cmd, err := e.frames.BeginFrame()
	if err != nil {
		return err
	}
	e.notifyResize()
	if cmd == nil {
		return nil
	}
	slot := e.frames.FrameIndex()

	cam := e.config.Camera
	e.camera.SetPerspectiveProjection(cam.FovYRadians(), e.frames.AspectRatio(), cam.Near, cam.Far)
	e.orbit.Apply(e.camera)

	if e.headlight != nil {
		e.headlight.Transform.Translation = e.camera.Position()
	}
	e.store.Advance(dt, e.motionEnabled)
	e.reloads.Apply(slot, e.writeMaterialSlot)

	materials := e.systemManager.MaterialSystem
	frame := &renderer.FrameInfo{
		FrameIndex:       slot,
		FrameTime:        dt,
		CommandBuffer:    cmd,
		Camera:           e.camera,
		GlobalDescriptor: materials.GlobalDescriptor(slot),
		Objects:          e.store,
	}

	ubo := metadata.NewGlobalUBO()
	ubo.Projection = e.camera.Projection()
	ubo.View = e.camera.View()
	ubo.InverseView = e.camera.InverseView()
	e.lights.Update(frame, &ubo)
	if err := materials.WriteGlobalUniforms(slot, &ubo); err != nil {
		return err
	}

	if err := e.frames.BeginPass(cmd); err != nil {
		return err
	}
	stats := e.composer.RenderObjects(frame)
	for _, batch := range e.trackBatches() {
		s := e.composer.RenderInstances(frame, batch)
		stats.DrawCalls += s.DrawCalls
		stats.Instances += s.Instances
	}
	stats.DrawCalls += e.lights.Render(frame)
	if err := e.frames.EndPass(cmd); err != nil {
		return err
	}
	if err := e.frames.EndFrame(); err != nil {
		return err
	}
	e.notifyResize()

	e.lastStats = stats
	e.frameCount++
	e.releaseRetired(false)
	e.metrics.Update(delta)
	return nil
}

func (e *Engine) notifyResize() {
	if e.frames.Recreations() == e.recreations {
		return
	}
	e.recreations = e.frames.Recreations()
	extent := e.frames.Extent()
	core.LogDebug("Window resize: %d, %d", extent.Width, extent.Height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(extent.Width, extent.Height); err != nil {
			core.LogError("resize hook: %s", err)
		}
	}
}

// Run drives frames until the window closes or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	defer func() { e.currentStage = EngineStageInitialized }()

	for !e.events.ShouldClose() {
		select {
		case <-ctx.Done():
			core.LogInfo("Run cancelled, stopping.")
			return nil
		default:
		}
		e.events.PumpMessages()
		if err := e.RunFrame(); err != nil {
			return err
		}
	}
	core.LogInfo("Window closed, stopping.")
	return nil
}

func (e *Engine) Orbit(dx, dy float32) { e.orbit.Orbit(dx, dy) }
func (e *Engine) Pan(dx, dy float32)   { e.orbit.Pan(dx, dy) }
func (e *Engine) Dolly(steps float32)  { e.orbit.Dolly(steps) }
func (e *Engine) ResetView()           { e.orbit.Reset() }

func (e *Engine) ToggleMotion() {
	e.SetObjectMotionEnabled(!e.motionEnabled)
}

// SetObjectMotionEnabled pauses or resumes animated objects. Resuming an
// object that reached the end of its travel restarts it.
func (e *Engine) SetObjectMotionEnabled(enabled bool) {
	if enabled && !e.motionEnabled {
		e.store.Each(func(obj *scene.SceneObject) {
			if obj.Motion.Kind == scene.MotionAnimated && obj.Motion.Helix.Stopped() {
				obj.Motion.Helix.Reset()
			}
		})
	}
	e.motionEnabled = enabled
}

func (e *Engine) MotionEnabled() bool {
	return e.motionEnabled
}

func (e *Engine) WaitIdle() error {
	if e.device == nil {
		return nil
	}
	return e.device.WaitIdle()
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Objects() *scene.Store {
	return e.store
}

// LastFrameStats reports what the last completed frame drew.
func (e *Engine) LastFrameStats() renderer.DrawStats {
	return e.lastStats
}

/**
 * @brief Waits for the device and releases everything in reverse order of
 * creation. Safe to call after a failed Initialize.
 */
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if err := e.WaitIdle(); err != nil {
		errs = append(errs, err)
	}

	if e.device != nil {
		for name, batch := range e.tracks {
			e.device.DestroyBuffer(batch.Instances)
			delete(e.tracks, name)
		}
		e.releaseRetired(true)
	}
	if e.systemManager != nil {
		errs = append(errs, e.systemManager.Shutdown())
	}
	if e.frames != nil {
		e.frames.Destroy()
	}
	if e.backend != nil {
		errs = append(errs, e.backend.Shutdown())
	}
	if e.assetManager != nil {
		errs = append(errs, e.assetManager.Shutdown())
	}
	if e.platform != nil {
		errs = append(errs, e.platform.Shutdown())
	}
	e.currentStage = EngineStageShutdown
	core.LogInfo("Engine shut down.")
	return errors.Join(errs...)
}
