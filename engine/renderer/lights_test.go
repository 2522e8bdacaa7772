package renderer_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/renderer/rendertest"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

func addLight(store *scene.Store, pos math.Vec3, orbit bool) *scene.SceneObject {
	obj := store.NewObject("light")
	obj.Transform.Translation = pos
	obj.Transform.Scale = math.NewVec3(0.1, 0.1, 0.1)
	obj.Light = &scene.PointLight{Intensity: 0.8, Color: math.NewVec3(1, 0.5, 0.25), Orbit: orbit}
	return obj
}

func TestPointLightUpdateFillsUBO(t *testing.T) {
	store := scene.NewStore(1)
	fixed := addLight(store, math.NewVec3(1, 2, 3), false)
	addLight(store, math.NewVec3(0, 1, 0), false)
	store.NewObject("mesh").Mesh = 1

	ps := renderer.NewPointLightSystem(testPipelines.PointLight)
	ubo := metadata.NewGlobalUBO()
	ps.Update(&renderer.FrameInfo{FrameTime: 0.5, Objects: store}, &ubo)

	assert.Equal(t, int32(2), ubo.NumLights)
	assert.Equal(t, math.NewVec4(1, 2, 3, 1), ubo.PointLights[0].Position)
	assert.Equal(t, math.NewVec4(1, 0.5, 0.25, 0.8), ubo.PointLights[0].Color)
	assert.Equal(t, math.NewVec3(1, 2, 3), fixed.Transform.Translation)
}

func TestPointLightOrbitRotatesAboutY(t *testing.T) {
	store := scene.NewStore(1)
	light := addLight(store, math.NewVec3(1, 0.5, 0), true)

	ps := renderer.NewPointLightSystem(testPipelines.PointLight)
	ubo := metadata.NewGlobalUBO()
	dt := float32(0.25)
	ps.Update(&renderer.FrameInfo{FrameTime: dt, Objects: store}, &ubo)

	// A negative axis turns the light clockwise seen from above.
	want := math.NewVec3(math32.Cos(dt), 0.5, math32.Sin(dt))
	assert.True(t, want.ApproxEqualThreshold(light.Transform.Translation, 1e-5), "got %v", light.Transform.Translation)
	assert.InDelta(t, 0.5, ubo.PointLights[0].Position.Y(), 1e-6)
}

func TestPointLightUpdateCapsAtMaxLights(t *testing.T) {
	store := scene.NewStore(1)
	for i := 0; i < metadata.MaxLights+3; i++ {
		addLight(store, math.NewVec3(float32(i), 0, 0), false)
	}

	ps := renderer.NewPointLightSystem(testPipelines.PointLight)
	ubo := metadata.NewGlobalUBO()
	ps.Update(&renderer.FrameInfo{Objects: store}, &ubo)
	assert.Equal(t, int32(metadata.MaxLights), ubo.NumLights)
	assert.Len(t, ubo.Bytes(), metadata.GlobalUBOSize)
}

func TestPointLightUpdateClearsRemovedLights(t *testing.T) {
	store := scene.NewStore(1)
	addLight(store, math.NewVec3(1, 0, 0), false)
	addLight(store, math.NewVec3(2, 0, 0), false)

	ps := renderer.NewPointLightSystem(testPipelines.PointLight)
	ubo := metadata.NewGlobalUBO()
	ps.Update(&renderer.FrameInfo{Objects: store}, &ubo)

	store.Clear()
	addLight(store, math.NewVec3(3, 0, 0), false)
	ps.Update(&renderer.FrameInfo{Objects: store}, &ubo)
	assert.Equal(t, int32(1), ubo.NumLights)
	assert.Equal(t, metadata.PointLight{}, ubo.PointLights[1])
}

func TestPointLightRenderDrawsBillboards(t *testing.T) {
	store := scene.NewStore(1)
	addLight(store, math.NewVec3(1, 2, 3), false)
	addLight(store, math.NewVec3(4, 5, 6), false)
	cmd := &rendertest.CommandBuffer{}

	ps := renderer.NewPointLightSystem(testPipelines.PointLight)
	n := ps.Render(&renderer.FrameInfo{CommandBuffer: cmd, GlobalDescriptor: globalSet, Objects: store})
	assert.Equal(t, 2, n)

	draws := cmd.DrawCalls()
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.Equal(t, rendertest.CmdDraw, d.Kind)
		assert.Equal(t, uint32(6), d.VertexCount)
		assert.Equal(t, uint32(1), d.InstanceCount)
		assert.Equal(t, testPipelines.PointLight, d.Pipeline)
		assert.Equal(t, globalSet, d.Sets[0])
		assert.Len(t, d.PushConstants, metadata.PointLightPushConstantsSize)
	}
}

func TestPointLightRenderWithoutLights(t *testing.T) {
	cmd := &rendertest.CommandBuffer{}
	ps := renderer.NewPointLightSystem(testPipelines.PointLight)
	assert.Zero(t, ps.Render(&renderer.FrameInfo{CommandBuffer: cmd, Objects: scene.NewStore(1)}))
	assert.Empty(t, cmd.Commands)
}
