package renderer

import (
	"fmt"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// DefaultFramesInFlight is the number of frame slots per-frame resources are
// duplicated across.
const DefaultFramesInFlight = 2

type FrameState int

const (
	FrameStateIdle FrameState = iota
	FrameStateFrameActive
	FrameStatePassActive
)

func (s FrameState) String() string {
	switch s {
	case FrameStateIdle:
		return "idle"
	case FrameStateFrameActive:
		return "frame active"
	case FrameStatePassActive:
		return "pass active"
	}
	return "unknown"
}

// FrameController drives the acquire, record, submit and present cycle of
// one presentation surface.
type FrameController struct {
	window         Window
	device         Device
	surface        Surface
	framesInFlight int

	frameIndex      int
	imageIndex      uint32
	state           FrameState
	current         CommandBuffer
	needsRecreate   bool
	clear           metadata.ClearValues
	recreationCount int
}

func NewFrameController(window Window, device Device, framesInFlight int) (*FrameController, error) {
	if framesInFlight < 1 {
		return nil, fmt.Errorf("frames in flight must be at least 1, got %d", framesInFlight)
	}
	fc := &FrameController{
		window:         window,
		device:         device,
		framesInFlight: framesInFlight,
		clear: metadata.ClearValues{
			Color: [4]float32{0.01, 0.01, 0.01, 1},
			Depth: 1,
		},
	}

	extent := window.FramebufferExtent()
	if extent.IsZero() {
		return nil, fmt.Errorf("cannot create a surface for a %dx%d window", extent.Width, extent.Height)
	}
	surface, err := device.CreateSurface(extent, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}
	fc.surface = surface
	core.LogInfo("Surface created %dx%d with %d images.", surface.Extent().Width, surface.Extent().Height, surface.ImageCount())
	return fc, nil
}

func (fc *FrameController) SetClearColor(r, g, b, a float32) {
	fc.clear.Color = [4]float32{r, g, b, a}
}

// BeginFrame starts recording the next frame. A nil command buffer with a nil
// error means no frame is produced this tick and the caller should skip it.
func (fc *FrameController) BeginFrame() (CommandBuffer, error) {
	if fc.state != FrameStateIdle {
		return nil, core.ErrFrameInProgress
	}

	if fc.window.FramebufferExtent().IsZero() {
		// Minimized. Recreate once the window has a size again.
		fc.needsRecreate = true
		return nil, nil
	}

	if fc.window.WasResized() {
		fc.window.ResetResized()
		fc.needsRecreate = true
	}
	if fc.needsRecreate {
		if err := fc.RecreateSurface(); err != nil {
			return nil, err
		}
		if fc.needsRecreate {
			return nil, nil
		}
	}

	imageIndex, status, err := fc.surface.AcquireNextImage(fc.frameIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire swapchain image: %w", err)
	}
	if status == metadata.SurfaceOutOfDate {
		core.LogDebug("Surface out of date on acquire, recreating.")
		if err := fc.RecreateSurface(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	fc.imageIndex = imageIndex

	cmd := fc.device.CommandBuffer(fc.frameIndex)
	if err := cmd.Begin(); err != nil {
		return nil, fmt.Errorf("failed to begin recording command buffer: %w", err)
	}
	fc.current = cmd
	fc.state = FrameStateFrameActive
	return cmd, nil
}

// BeginPass begins the surface render pass and sets the full-surface
// viewport and scissor.
func (fc *FrameController) BeginPass(cmd CommandBuffer) error {
	switch fc.state {
	case FrameStateIdle:
		return core.ErrNoFrameInProgress
	case FrameStatePassActive:
		return core.ErrPassActive
	}
	if cmd != fc.current {
		return fmt.Errorf("begin pass on a command buffer from a different frame")
	}

	extent := fc.surface.Extent()
	cmd.BeginRenderPass(fc.surface.Framebuffer(fc.imageIndex), extent, fc.clear)
	cmd.SetViewport(metadata.FullViewport(extent))
	cmd.SetScissor(metadata.FullScissor(extent))
	fc.state = FrameStatePassActive
	return nil
}

func (fc *FrameController) EndPass(cmd CommandBuffer) error {
	if fc.state != FrameStatePassActive {
		return core.ErrPassNotActive
	}
	if cmd != fc.current {
		return fmt.Errorf("end pass on a command buffer from a different frame")
	}
	cmd.EndRenderPass()
	fc.state = FrameStateFrameActive
	return nil
}

// EndFrame submits and presents the frame, then advances the frame slot.
func (fc *FrameController) EndFrame() error {
	switch fc.state {
	case FrameStateIdle:
		return core.ErrNoFrameInProgress
	case FrameStatePassActive:
		return core.ErrPassActive
	}

	cmd := fc.current
	fc.current = nil
	fc.state = FrameStateIdle
	defer fc.advance()

	if err := cmd.End(); err != nil {
		return fmt.Errorf("failed to record command buffer: %w", err)
	}

	status, err := fc.surface.SubmitCommandBuffers(cmd, fc.frameIndex, fc.imageIndex)
	if err != nil {
		return fmt.Errorf("failed to present swapchain image: %w", err)
	}

	resized := fc.window.WasResized()
	if status != metadata.SurfaceOptimal || resized {
		if resized {
			fc.window.ResetResized()
		}
		core.LogDebug("Surface %s after present (resized=%t), recreating.", status, resized)
		return fc.RecreateSurface()
	}
	return nil
}

func (fc *FrameController) advance() {
	fc.frameIndex = (fc.frameIndex + 1) % fc.framesInFlight
}

// RecreateSurface rebuilds the surface for the current drawable extent. With a
// zero extent it is deferred to the next BeginFrame.
func (fc *FrameController) RecreateSurface() error {
	extent := fc.window.FramebufferExtent()
	if extent.IsZero() {
		core.LogDebug("Surface recreation deferred, window is %dx%d.", extent.Width, extent.Height)
		fc.needsRecreate = true
		return nil
	}

	if err := fc.device.WaitIdle(); err != nil {
		return fmt.Errorf("failed to wait for device idle: %w", err)
	}

	old := fc.surface
	surface, err := fc.device.CreateSurface(extent, old)
	if err != nil {
		return fmt.Errorf("failed to recreate surface: %w", err)
	}
	fc.surface = surface
	fc.needsRecreate = false
	fc.recreationCount++

	if old != nil && old.ImageFormat() != surface.ImageFormat() {
		return fmt.Errorf("%w: %+v -> %+v", core.ErrSurfaceFormatChanged, old.ImageFormat(), surface.ImageFormat())
	}
	core.LogDebug("Surface recreated %dx%d.", extent.Width, extent.Height)
	return nil
}

func (fc *FrameController) FrameIndex() int {
	return fc.frameIndex
}

func (fc *FrameController) ImageIndex() uint32 {
	return fc.imageIndex
}

func (fc *FrameController) FramesInFlight() int {
	return fc.framesInFlight
}

func (fc *FrameController) State() FrameState {
	return fc.state
}

func (fc *FrameController) IsFrameInProgress() bool {
	return fc.state != FrameStateIdle
}

func (fc *FrameController) Extent() metadata.Extent {
	return fc.surface.Extent()
}

func (fc *FrameController) AspectRatio() float32 {
	return fc.surface.Extent().AspectRatio()
}

// Recreations is the number of times the surface was rebuilt.
func (fc *FrameController) Recreations() int {
	return fc.recreationCount
}

func (fc *FrameController) Surface() Surface {
	return fc.surface
}

// Destroy releases the surface. The device must be idle.
func (fc *FrameController) Destroy() {
	if fc.surface != nil {
		fc.surface.Destroy()
		fc.surface = nil
	}
}
