package testbed

import (
	"github.com/spaghettifunk/grindsim/engine"
	"github.com/spaghettifunk/grindsim/engine/core"
)

// statsInterval is how often, in seconds, the frame statistics are logged.
const statsInterval = 2.0

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine *engine.Engine

	width  uint32
	height uint32

	sinceStats float64
}

func NewTestGame(configPath string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:       "Grinding Wheel Simulator",
				ConfigPath: configPath,
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	state := g.state()
	state.engine = e

	objects := e.Objects()
	core.LogInfo("testbed ready: %d scene objects, %d lights.", objects.Len(), len(objects.Lights()))
	core.LogInfo("controls: left drag orbits, right or middle drag pans, wheel dollies, R resets, space toggles motion.")
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.sinceStats += deltaTime
	if state.sinceStats < statsInterval || state.engine == nil {
		return nil
	}
	state.sinceStats = 0

	fps, frameTime := state.engine.Metrics().Frame()
	stats := state.engine.LastFrameStats()
	core.LogDebug("FPS: %5.1f(%4.1fms) objects=%d draws=%d instances=%d motion=%t",
		fps, frameTime, stats.Objects, stats.DrawCalls, stats.Instances, state.engine.MotionEnabled())
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}
