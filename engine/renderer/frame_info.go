package renderer

import (
	"github.com/spaghettifunk/grindsim/engine/renderer/components"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

// FrameInfo is rebuilt every frame and must not be kept past EndFrame.
type FrameInfo struct {
	FrameIndex       int
	FrameTime        float32
	CommandBuffer    CommandBuffer
	Camera           *components.Camera
	GlobalDescriptor metadata.DescriptorSet
	Objects          *scene.Store
}
