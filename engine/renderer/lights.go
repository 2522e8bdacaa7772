package renderer

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

// PointLightSystem animates the light objects, copies them into the global
// uniform block and draws a billboard for each.
type PointLightSystem struct {
	pipeline metadata.Pipeline
	// OrbitSpeed is the angular speed, in radians per second, of lights
	// flagged to orbit.
	OrbitSpeed float32

	lights    []*scene.SceneObject
	truncated bool
}

func NewPointLightSystem(pipeline metadata.Pipeline) *PointLightSystem {
	return &PointLightSystem{pipeline: pipeline, OrbitSpeed: 1}
}

// Update rotates orbiting lights about -Y and fills ubo.PointLights. Lights
// past MaxLights are left out.
func (ps *PointLightSystem) Update(frame *FrameInfo, ubo *metadata.GlobalUBO) {
	ps.collect(frame.Objects)

	rotation := mgl32.HomogRotate3D(frame.FrameTime*ps.OrbitSpeed, math.NewVec3(0, -1, 0))

	count := 0
	for _, obj := range ps.lights {
		if obj.Light.Orbit {
			obj.Transform.Translation = rotation.Mul4x1(obj.Transform.Translation.Vec4(1)).Vec3()
		}
		if count >= metadata.MaxLights {
			continue
		}
		ubo.PointLights[count] = metadata.PointLight{
			Position: obj.Transform.Translation.Vec4(1),
			Color:    obj.Light.Color.Vec4(obj.Light.Intensity),
		}
		count++
	}
	for i := count; i < metadata.MaxLights; i++ {
		ubo.PointLights[i] = metadata.PointLight{}
	}
	ubo.NumLights = int32(count)

	if len(ps.lights) > metadata.MaxLights && !ps.truncated {
		core.LogWarn("Scene has %d point lights, only the first %d are lit.", len(ps.lights), metadata.MaxLights)
	}
	ps.truncated = len(ps.lights) > metadata.MaxLights
}

// Render draws one camera facing quad per light. It expects the render pass
// to be active.
func (ps *PointLightSystem) Render(frame *FrameInfo) int {
	ps.collect(frame.Objects)
	if len(ps.lights) == 0 {
		return 0
	}

	cmd := frame.CommandBuffer
	cmd.BindPipeline(ps.pipeline)
	cmd.BindDescriptorSets(ps.pipeline, uint32(metadata.BindingClassGlobal), frame.GlobalDescriptor)

	for _, obj := range ps.lights {
		push := metadata.PointLightPushConstants{
			Position: obj.Transform.Translation.Vec4(1),
			Color:    obj.Light.Color.Vec4(obj.Light.Intensity),
			Radius:   obj.Radius(),
		}
		cmd.PushConstants(ps.pipeline, push.Bytes())
		cmd.Draw(6, 1, 0, 0)
	}
	return len(ps.lights)
}

func (ps *PointLightSystem) collect(objects *scene.Store) {
	ps.lights = ps.lights[:0]
	objects.Each(func(obj *scene.SceneObject) {
		if obj.IsLight() {
			ps.lights = append(ps.lights, obj)
		}
	})
	slices.SortFunc(ps.lights, func(a, b *scene.SceneObject) int {
		return int(a.ID) - int(b.ID)
	})
}
