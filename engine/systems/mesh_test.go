package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/renderer/rendertest"
)

func TestMeshRegistryRegister(t *testing.T) {
	dev := rendertest.NewDevice()
	mr := NewMeshRegistry(dev)

	data := GenerateWheel(DefaultWheelConfig(), "wheel")
	handle, err := mr.Register(data)
	require.NoError(t, err)
	require.True(t, handle.IsValid())

	mesh, ok := mr.Mesh(handle)
	require.True(t, ok)
	assert.Equal(t, uint32(len(data.Vertices)), mesh.VertexCount)
	assert.Equal(t, uint32(len(data.Indices)), mesh.IndexCount)
	assert.True(t, mesh.HasIndexBuffer())
	assert.Equal(t, 2, mesh.SubmeshCount())
	assert.Equal(t, metadata.EncodeVertices(data.Vertices), dev.BufferData(mesh.VertexBuffer))
	assert.Equal(t, metadata.EncodeIndices(data.Indices), dev.BufferData(mesh.IndexBuffer))
	assert.Equal(t, metadata.BufferUsageVertex, dev.Buffers[mesh.VertexBuffer].Usage)
	assert.InDelta(t, 1.0, mesh.Extents.Max.X(), 1e-5)

	found, ok := mr.Lookup("wheel")
	require.True(t, ok)
	assert.Equal(t, handle, found)
	assert.Equal(t, 1, mr.Len())

	_, ok = mr.Mesh(handle + 1)
	assert.False(t, ok)
}

func TestMeshRegistryWithoutIndices(t *testing.T) {
	mr := NewMeshRegistry(rendertest.NewDevice())
	v := math.Vertex3D{}
	handle, err := mr.Register(metadata.MeshData{Name: "tri", Vertices: []math.Vertex3D{v, v, v}})
	require.NoError(t, err)
	mesh, _ := mr.Mesh(handle)
	assert.False(t, mesh.HasIndexBuffer())
	assert.Equal(t, uint32(3), mesh.VertexCount)
}

func TestMeshRegistryRejectsInvalid(t *testing.T) {
	dev := rendertest.NewDevice()
	mr := NewMeshRegistry(dev)
	v := math.Vertex3D{}

	_, err := mr.Register(metadata.MeshData{Name: "empty"})
	assert.Error(t, err)

	_, err = mr.Register(metadata.MeshData{Name: "oob", Vertices: []math.Vertex3D{v}, Indices: []uint32{0, 1, 2}})
	assert.Error(t, err)

	_, err = mr.Register(metadata.MeshData{
		Name:      "sub",
		Vertices:  []math.Vertex3D{v, v, v},
		Indices:   []uint32{0, 1, 2},
		Submeshes: []metadata.Submesh{{FirstIndex: 2, IndexCount: 3}},
	})
	assert.ErrorIs(t, err, core.ErrInvalidSubmesh)
	assert.Equal(t, 0, mr.Len())

	dev.FailBuffers = true
	_, err = mr.Register(metadata.MeshData{Name: "nobuf", Vertices: []math.Vertex3D{v}})
	assert.ErrorIs(t, err, rendertest.ErrInjected)
}

func TestMeshRegistryDestroy(t *testing.T) {
	dev := rendertest.NewDevice()
	mr := NewMeshRegistry(dev)
	_, err := mr.Register(GenerateBox(1, 1, 1, 1, 1, "box"))
	require.NoError(t, err)

	mr.Destroy()
	assert.Equal(t, 0, mr.Len())
	_, ok := mr.Lookup("box")
	assert.False(t, ok)
	for handle, buffer := range dev.Buffers {
		assert.True(t, buffer.Freed, "buffer %d", handle)
	}
}
