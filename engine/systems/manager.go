package systems

import (
	"errors"

	"github.com/spaghettifunk/grindsim/engine/renderer"
)

type SystemManagerConfig struct {
	FramesInFlight  int
	MaxTextureCount uint32
	// Workers decode textures in parallel during preload.
	Workers int
	FlipY   bool
}

// SystemManager owns the resource systems and shuts them down in reverse
// order of creation.
type SystemManager struct {
	JobSystem      *JobSystem
	TextureSystem  *TextureSystem
	MaterialSystem *MaterialSystem
	MeshRegistry   *MeshRegistry
}

func NewSystemManager(config SystemManagerConfig, device renderer.Device, images ImageSource) (*SystemManager, error) {
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}
	js, err := NewJobSystem(workers, workers*2)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
		FlipY:           config.FlipY,
	}, device, images, js)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	ms, err := NewMaterialSystem(device, ts, config.FramesInFlight)
	if err != nil {
		ts.Shutdown()
		js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		JobSystem:      js,
		TextureSystem:  ts,
		MaterialSystem: ms,
		MeshRegistry:   NewMeshRegistry(device),
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	sm.MeshRegistry.Destroy()
	return errors.Join(
		sm.MaterialSystem.Shutdown(),
		sm.TextureSystem.Shutdown(),
		sm.JobSystem.Shutdown(),
	)
}
