package platform

import (
	"runtime"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// InputHandler receives the camera and simulation controls decoded from
// mouse and keyboard events.
type InputHandler interface {
	Orbit(dx, dy float32)
	Pan(dx, dy float32)
	Dolly(steps float32)
	ResetView()
	ToggleMotion()
}

type Platform struct {
	Window *glfw.Window

	handler InputHandler
	mouse   *core.MouseInput
	resized atomic.Bool
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
		mouse:  core.NewMouseInput(),
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		core.LogError("glfw reports no Vulkan loader")
		return core.ErrUnknown
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// SetInputHandler routes the decoded controls to h.
func (p *Platform) SetInputHandler(h InputHandler) {
	p.handler = h
}

func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window == nil || p.Window.ShouldClose()
}

func (p *Platform) FramebufferExtent() metadata.Extent {
	if p.Window == nil {
		return metadata.Extent{}
	}
	width, height := p.Window.GetFramebufferSize()
	return metadata.Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

func (p *Platform) WasResized() bool {
	return p.resized.Load()
}

func (p *Platform) ResetResized() {
	p.resized.Store(false)
}

func (p *Platform) RequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateWindowSurface returns the VkSurfaceKHR of the window as a pointer.
func (p *Platform) CreateWindowSurface(instance interface{}) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyR:
		if p.handler != nil {
			p.handler.ResetView()
		}
	case glfw.KeySpace:
		if p.handler != nil {
			p.handler.ToggleMotion()
		}
	}
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	p.mouse.ProcessButton(b, action != glfw.Release)
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	kind, dx, dy := p.mouse.ProcessMouseMove(xpos, ypos)
	if p.handler == nil {
		return
	}
	switch kind {
	case core.DragOrbit:
		p.handler.Orbit(float32(dx), float32(dy))
	case core.DragPan:
		p.handler.Pan(float32(dx), float32(dy))
	}
}

// glfw already reports the wheel in notches.
func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	if p.handler != nil && yoff != 0 {
		p.handler.Dolly(float32(yoff))
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.resized.Store(true)
}
