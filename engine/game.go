package engine

// Game holds the hooks an application attaches to the engine. Every hook
// is optional.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
}

// Initialize runs once the scene is loaded, before the first frame.
type Initialize func(e *Engine) error

// Update runs at the start of every frame, before anything is recorded.
type Update func(deltaTime float64) error

// OnResize runs after the surface was rebuilt for a new extent.
type OnResize func(width uint32, height uint32) error
