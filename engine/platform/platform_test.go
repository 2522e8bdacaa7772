package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	orbits  [][2]float32
	pans    [][2]float32
	dollies []float32
	resets  int
	toggles int
}

func (h *recordingHandler) Orbit(dx, dy float32) { h.orbits = append(h.orbits, [2]float32{dx, dy}) }
func (h *recordingHandler) Pan(dx, dy float32)   { h.pans = append(h.pans, [2]float32{dx, dy}) }
func (h *recordingHandler) Dolly(steps float32)  { h.dollies = append(h.dollies, steps) }
func (h *recordingHandler) ResetView()           { h.resets++ }
func (h *recordingHandler) ToggleMotion()        { h.toggles++ }

func newTestPlatform(t *testing.T) (*Platform, *recordingHandler) {
	t.Helper()
	p, err := New()
	require.NoError(t, err)
	h := &recordingHandler{}
	p.SetInputHandler(h)
	return p, h
}

func TestDragRoutesToCamera(t *testing.T) {
	p, h := newTestPlatform(t)

	p.cursorPosCallback(nil, 10, 10)
	p.cursorPosCallback(nil, 12, 10)
	assert.Empty(t, h.orbits)

	p.mouseButtonCallback(nil, glfw.MouseButtonLeft, glfw.Press, 0)
	p.cursorPosCallback(nil, 15, 6)
	require.Len(t, h.orbits, 1)
	assert.Equal(t, [2]float32{3, -4}, h.orbits[0])

	p.mouseButtonCallback(nil, glfw.MouseButtonLeft, glfw.Release, 0)
	p.mouseButtonCallback(nil, glfw.MouseButtonRight, glfw.Press, 0)
	p.cursorPosCallback(nil, 16, 8)
	require.Len(t, h.pans, 1)
	assert.Equal(t, [2]float32{1, 2}, h.pans[0])
	assert.Len(t, h.orbits, 1)
}

func TestScrollAndKeys(t *testing.T) {
	p, h := newTestPlatform(t)

	p.scrollCallback(nil, 0, -2)
	p.scrollCallback(nil, 1, 0)
	assert.Equal(t, []float32{-2}, h.dollies)

	p.keyCallback(nil, glfw.KeyR, 0, glfw.Press, 0)
	p.keyCallback(nil, glfw.KeySpace, 0, glfw.Press, 0)
	p.keyCallback(nil, glfw.KeySpace, 0, glfw.Release, 0)
	assert.Equal(t, 1, h.resets)
	assert.Equal(t, 1, h.toggles)
}

func TestResizeFlag(t *testing.T) {
	p, _ := newTestPlatform(t)
	assert.False(t, p.WasResized())
	p.framebufferSizeCallback(nil, 640, 480)
	assert.True(t, p.WasResized())
	p.ResetResized()
	assert.False(t, p.WasResized())
	assert.True(t, p.ShouldClose())
	assert.True(t, p.FramebufferExtent().IsZero())
}
