package core

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockElapsed(t *testing.T) {
	base := time.Unix(1000, 0)
	current := base
	c := &Clock{now: func() time.Time { return current }}

	c.Update()
	assert.Zero(t, c.Elapsed(), "stopped clock must not move")

	c.Start()
	current = base.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	current = base.Add(5 * time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestMetricsAverageAndFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 70; i++ {
		m.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 1000.0/60.0, m.FrameTime(), 1e-6)
	assert.InDelta(t, 60, m.FPS(), 1)
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"":      DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLogLevel("chatty")
	assert.Error(t, err)
}

func TestLoggingWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	require.NoError(t, InitLogging(LogConfig{Level: "info"}))

	LogDebug("hidden %d", 1)
	LogInfo("frame %d ready", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "frame 7 ready")
	assert.NotEmpty(t, LogSession())
}

func TestMouseInputDrags(t *testing.T) {
	m := NewMouseInput()
	kind, _, _ := m.ProcessMouseMove(10, 10)
	assert.Equal(t, DragNone, kind)

	m.ProcessButton(BUTTON_LEFT, true)
	kind, dx, dy := m.ProcessMouseMove(14, 7)
	assert.Equal(t, DragOrbit, kind)
	assert.Equal(t, 4.0, dx)
	assert.Equal(t, -3.0, dy)

	m.ProcessButton(BUTTON_LEFT, false)
	m.ProcessButton(BUTTON_RIGHT, true)
	kind, _, _ = m.ProcessMouseMove(20, 7)
	assert.Equal(t, DragPan, kind)
	assert.Equal(t, 2.0, WheelSteps(240))
}
