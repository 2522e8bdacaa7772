package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// WheelNotch is the scroll delta of one wheel step on most platforms.
const WheelNotch = 120.0

// DragKind says what a mouse drag should do to the camera.
type DragKind int

const (
	DragNone DragKind = iota
	DragOrbit
	DragPan
)

type mouseState struct {
	X, Y    float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// MouseInput turns raw cursor callbacks into drag deltas. Left drags orbit,
// middle or right drags pan.
type MouseInput struct {
	current  mouseState
	previous mouseState
	hasPos   bool
}

func NewMouseInput() *MouseInput {
	return &MouseInput{}
}

func (m *MouseInput) IsButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return m.current.Buttons[button]
}

func (m *MouseInput) WasButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return m.previous.Buttons[button]
}

func (m *MouseInput) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	m.previous.Buttons = m.current.Buttons
	m.current.Buttons[button] = pressed
}

// ProcessMouseMove records the new cursor position and returns the drag it
// produced since the previous position.
func (m *MouseInput) ProcessMouseMove(x, y float64) (DragKind, float64, float64) {
	if !m.hasPos {
		m.current.X, m.current.Y = x, y
		m.previous.X, m.previous.Y = x, y
		m.hasPos = true
		return DragNone, 0, 0
	}
	m.previous.X, m.previous.Y = m.current.X, m.current.Y
	m.current.X, m.current.Y = x, y
	dx := x - m.previous.X
	dy := y - m.previous.Y

	switch {
	case m.current.Buttons[BUTTON_LEFT]:
		return DragOrbit, dx, dy
	case m.current.Buttons[BUTTON_MIDDLE], m.current.Buttons[BUTTON_RIGHT]:
		return DragPan, dx, dy
	}
	return DragNone, dx, dy
}

func (m *MouseInput) Position() (float64, float64) {
	return m.current.X, m.current.Y
}

// WheelSteps converts a raw wheel delta expressed in notches of WheelNotch.
func WheelSteps(delta float64) float64 {
	return delta / WheelNotch
}
