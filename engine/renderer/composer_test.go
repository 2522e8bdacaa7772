package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/renderer/rendertest"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

const (
	globalSet    metadata.DescriptorSet = 100
	dummyTexture metadata.DescriptorSet = 900
	dummyParams  metadata.DescriptorSet = 901
)

type meshTable map[metadata.MeshHandle]*metadata.Mesh

func (m meshTable) Mesh(h metadata.MeshHandle) (*metadata.Mesh, bool) {
	mesh, ok := m[h]
	return mesh, ok
}

type bindingKey struct {
	id      scene.ObjectID
	submesh int
}

// fakeResolver hands out fixed sets per (object, submesh) and falls back to
// the dummy pair.
type fakeResolver struct {
	textures map[bindingKey]metadata.DescriptorSet
	params   map[bindingKey][2]metadata.DescriptorSet
	slots    []int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		textures: map[bindingKey]metadata.DescriptorSet{},
		params:   map[bindingKey][2]metadata.DescriptorSet{},
	}
}

func (r *fakeResolver) ResolveTexture(id scene.ObjectID, submesh int) metadata.DescriptorSet {
	if set, ok := r.textures[bindingKey{id, submesh}]; ok {
		return set
	}
	return dummyTexture
}

func (r *fakeResolver) ResolveMaterialParams(id scene.ObjectID, slot, submesh int) metadata.DescriptorSet {
	r.slots = append(r.slots, slot)
	if sets, ok := r.params[bindingKey{id, submesh}]; ok {
		return sets[slot%2]
	}
	return dummyParams
}

var testPipelines = metadata.Pipelines{Mesh: 1, Instanced: 2, PointLight: 3}

type composerFixture struct {
	store    *scene.Store
	meshes   meshTable
	resolver *fakeResolver
	composer *renderer.RenderComposer
	cmd      *rendertest.CommandBuffer
}

func newComposerFixture() *composerFixture {
	f := &composerFixture{
		store:    scene.NewStore(1),
		meshes:   meshTable{},
		resolver: newFakeResolver(),
		cmd:      &rendertest.CommandBuffer{},
	}
	f.composer = renderer.NewRenderComposer(testPipelines, f.meshes, f.resolver)
	return f
}

func (f *composerFixture) frame(slot int) *renderer.FrameInfo {
	return &renderer.FrameInfo{
		FrameIndex:       slot,
		FrameTime:        1.0 / 60.0,
		CommandBuffer:    f.cmd,
		GlobalDescriptor: globalSet,
		Objects:          f.store,
	}
}

func wheelMesh() *metadata.Mesh {
	return &metadata.Mesh{
		Name:         "wheel",
		VertexBuffer: 10,
		IndexBuffer:  11,
		VertexCount:  200,
		IndexCount:   300,
		Submeshes: []metadata.Submesh{
			{FirstIndex: 0, IndexCount: 180},
			{FirstIndex: 180, IndexCount: 120},
		},
	}
}

func blankMesh() *metadata.Mesh {
	return &metadata.Mesh{Name: "blank", VertexBuffer: 20, IndexBuffer: 21, VertexCount: 24, IndexCount: 36}
}

func TestRenderObjectsSubmeshMaterials(t *testing.T) {
	f := newComposerFixture()
	f.meshes[1] = wheelMesh()
	f.meshes[2] = blankMesh()

	a := f.store.NewObject("wheel")
	a.Mesh = 1
	a.Transform.Translation = math.NewVec3(1, 2, 3)
	b := f.store.NewObject("blank")
	b.Mesh = 2

	f.resolver.textures[bindingKey{a.ID, 0}] = 500
	f.resolver.textures[bindingKey{a.ID, 1}] = 501
	f.resolver.params[bindingKey{a.ID, 0}] = [2]metadata.DescriptorSet{600, 610}
	f.resolver.params[bindingKey{a.ID, 1}] = [2]metadata.DescriptorSet{601, 611}

	stats := f.composer.RenderObjects(f.frame(1))
	assert.Equal(t, renderer.DrawStats{Objects: 2, DrawCalls: 3}, stats)

	draws := f.cmd.DrawCalls()
	require.Len(t, draws, 3)

	assert.Equal(t, rendertest.CmdDrawIndexed, draws[0].Kind)
	assert.Equal(t, uint32(180), draws[0].IndexCount)
	assert.Equal(t, uint32(0), draws[0].FirstIndex)
	assert.Equal(t, metadata.DescriptorSet(500), draws[0].Sets[1])
	assert.Equal(t, metadata.DescriptorSet(610), draws[0].Sets[2])

	assert.Equal(t, uint32(120), draws[1].IndexCount)
	assert.Equal(t, uint32(180), draws[1].FirstIndex)
	assert.Equal(t, metadata.DescriptorSet(501), draws[1].Sets[1])
	assert.Equal(t, metadata.DescriptorSet(611), draws[1].Sets[2])

	// b has no material and draws whole with the placeholder pair.
	assert.Equal(t, uint32(36), draws[2].IndexCount)
	assert.Equal(t, uint32(1), draws[2].InstanceCount)
	assert.Equal(t, dummyTexture, draws[2].Sets[1])
	assert.Equal(t, dummyParams, draws[2].Sets[2])
	assert.Equal(t, metadata.Buffer(21), draws[2].IndexBuffer)

	for _, d := range draws {
		assert.Equal(t, testPipelines.Mesh, d.Pipeline)
		assert.Equal(t, globalSet, d.Sets[0])
	}
	for _, slot := range f.resolver.slots {
		assert.Equal(t, 1, slot)
	}

	push, err := metadata.DecodeSimplePushConstants(draws[0].PushConstants)
	require.NoError(t, err)
	assert.True(t, math.ApproxEqual(a.Transform.Mat4(), push.ModelMatrix, 1e-6))
}

func TestTextureAndMaterialBoundTogether(t *testing.T) {
	f := newComposerFixture()
	f.meshes[1] = wheelMesh()
	obj := f.store.NewObject("wheel")
	obj.Mesh = 1

	f.composer.RenderObjects(f.frame(0))

	var materialBinds int
	for _, c := range f.cmd.Of(rendertest.CmdBindDescriptorSets) {
		if c.FirstSet == uint32(metadata.BindingClassGlobal) {
			continue
		}
		assert.Equal(t, uint32(metadata.BindingClassTexture), c.FirstSet)
		assert.Len(t, c.Sets, 2)
		materialBinds++
	}
	assert.Equal(t, 2, materialBinds)
}

func TestRenderObjectsSkipsLightsAndUnknownMeshes(t *testing.T) {
	f := newComposerFixture()
	f.meshes[2] = blankMesh()

	light := f.store.NewObject("light")
	light.Light = &scene.PointLight{Intensity: 1, Color: math.NewVec3One()}
	ghost := f.store.NewObject("ghost")
	ghost.Mesh = 99
	blank := f.store.NewObject("blank")
	blank.Mesh = 2

	stats := f.composer.RenderObjects(f.frame(0))
	assert.Equal(t, 1, stats.Objects)
	assert.Len(t, f.cmd.Draws(), 1)
}

func TestRenderObjectsNonIndexedAndEmptySubmesh(t *testing.T) {
	f := newComposerFixture()
	f.meshes[1] = &metadata.Mesh{VertexBuffer: 30, VertexCount: 6}
	f.meshes[2] = &metadata.Mesh{
		VertexBuffer: 31, IndexBuffer: 32, VertexCount: 4, IndexCount: 6,
		Submeshes: []metadata.Submesh{{FirstIndex: 0, IndexCount: 6}, {FirstIndex: 6, IndexCount: 0}},
	}
	f.store.NewObject("tri").Mesh = 1
	f.store.NewObject("quad").Mesh = 2

	f.composer.RenderObjects(f.frame(0))
	draws := f.cmd.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, rendertest.CmdDraw, draws[0].Kind)
	assert.Equal(t, uint32(6), draws[0].VertexCount)
	assert.Len(t, f.cmd.Of(rendertest.CmdBindIndexBuffer), 1)
	assert.Equal(t, rendertest.CmdDrawIndexed, draws[1].Kind)
}

func TestRenderObjectsIsDeterministic(t *testing.T) {
	f := newComposerFixture()
	f.meshes[2] = blankMesh()
	for i := 0; i < 8; i++ {
		f.store.NewObject("blank").Mesh = 2
	}

	f.composer.RenderObjects(f.frame(0))
	first := f.cmd.Commands
	f.cmd = &rendertest.CommandBuffer{}
	f.composer = renderer.NewRenderComposer(testPipelines, f.meshes, f.resolver)
	f.composer.RenderObjects(f.frame(0))
	assert.Equal(t, first, f.cmd.Commands)
}

func TestRenderInstancesSingleDraw(t *testing.T) {
	f := newComposerFixture()
	f.meshes[3] = &metadata.Mesh{VertexBuffer: 40, IndexBuffer: 41, VertexCount: 4, IndexCount: 6}
	owner := f.store.NewObject("track")
	f.resolver.textures[bindingKey{owner.ID, metadata.WholeObject}] = 700

	stats := f.composer.RenderInstances(f.frame(0), renderer.InstanceBatch{
		Name:      "track",
		Mesh:      3,
		Instances: 42,
		Count:     100,
		Material:  owner.ID,
	})
	assert.Equal(t, renderer.DrawStats{DrawCalls: 1, Instances: 100}, stats)

	draws := f.cmd.DrawCalls()
	require.Len(t, draws, 1)
	d := draws[0]
	assert.Equal(t, rendertest.CmdDrawIndexed, d.Kind)
	assert.Equal(t, uint32(6), d.IndexCount)
	assert.Equal(t, uint32(100), d.InstanceCount)
	assert.Equal(t, uint32(0), d.FirstInstance)
	assert.Equal(t, testPipelines.Instanced, d.Pipeline)
	assert.Equal(t, metadata.Buffer(40), d.VertexBuffers[metadata.MeshVertexBinding])
	assert.Equal(t, metadata.Buffer(42), d.VertexBuffers[metadata.InstanceVertexBinding])
	assert.Equal(t, metadata.DescriptorSet(700), d.Sets[1])
	assert.Equal(t, dummyParams, d.Sets[2])
	assert.Empty(t, f.cmd.Of(rendertest.CmdPushConstants))
}

func TestRenderInstancesEmptyBatch(t *testing.T) {
	f := newComposerFixture()
	f.meshes[3] = blankMesh()

	stats := f.composer.RenderInstances(f.frame(0), renderer.InstanceBatch{Mesh: 3, Instances: 42})
	assert.Zero(t, stats.DrawCalls)
	stats = f.composer.RenderInstances(f.frame(0), renderer.InstanceBatch{Mesh: 9, Instances: 42, Count: 5})
	assert.Zero(t, stats.DrawCalls)
	assert.Empty(t, f.cmd.Commands)
}
