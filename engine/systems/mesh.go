package systems

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// MeshRegistry uploads geometry once and hands out handles. Meshes are
// immutable after Register.
type MeshRegistry struct {
	allocator renderer.ResourceAllocator
	meshes    map[metadata.MeshHandle]*metadata.Mesh
	byName    map[string]metadata.MeshHandle
	next      metadata.MeshHandle
}

func NewMeshRegistry(allocator renderer.ResourceAllocator) *MeshRegistry {
	return &MeshRegistry{
		allocator: allocator,
		meshes:    make(map[metadata.MeshHandle]*metadata.Mesh),
		byName:    make(map[string]metadata.MeshHandle),
	}
}

// Register validates data, uploads its vertex and index buffers and returns
// the handle of the new mesh.
func (mr *MeshRegistry) Register(data metadata.MeshData) (metadata.MeshHandle, error) {
	if len(data.Vertices) == 0 {
		return 0, fmt.Errorf("mesh '%s' has no vertices", data.Name)
	}
	for i, idx := range data.Indices {
		if int(idx) >= len(data.Vertices) {
			return 0, fmt.Errorf("mesh '%s' index %d references vertex %d of %d", data.Name, i, idx, len(data.Vertices))
		}
	}
	for i, sub := range data.Submeshes {
		if uint64(sub.FirstIndex)+uint64(sub.IndexCount) > uint64(len(data.Indices)) {
			return 0, fmt.Errorf("mesh '%s' submesh %d: %w", data.Name, i, core.ErrInvalidSubmesh)
		}
	}

	vertexBytes := metadata.EncodeVertices(data.Vertices)
	vb, err := mr.upload(metadata.BufferUsageVertex, vertexBytes)
	if err != nil {
		return 0, fmt.Errorf("mesh '%s' vertex buffer: %w", data.Name, err)
	}

	var ib metadata.Buffer
	if len(data.Indices) > 0 {
		ib, err = mr.upload(metadata.BufferUsageIndex, metadata.EncodeIndices(data.Indices))
		if err != nil {
			mr.allocator.DestroyBuffer(vb)
			return 0, fmt.Errorf("mesh '%s' index buffer: %w", data.Name, err)
		}
	}

	mr.next++
	handle := mr.next
	mr.meshes[handle] = &metadata.Mesh{
		Name:         data.Name,
		VertexBuffer: vb,
		IndexBuffer:  ib,
		VertexCount:  uint32(len(data.Vertices)),
		IndexCount:   uint32(len(data.Indices)),
		Submeshes:    slices.Clone(data.Submeshes),
		Extents:      math.GeometryExtents(data.Vertices),
	}
	if len(data.Name) > 0 {
		mr.byName[data.Name] = handle
	}
	core.LogDebug("Registered mesh '%s' (%d vertices, %d indices, %d submeshes).", data.Name, len(data.Vertices), len(data.Indices), len(data.Submeshes))
	return handle, nil
}

func (mr *MeshRegistry) upload(usage metadata.BufferUsage, data []byte) (metadata.Buffer, error) {
	buf, err := mr.allocator.CreateBuffer(usage, uint64(len(data)))
	if err != nil {
		return 0, err
	}
	if err := mr.allocator.WriteBuffer(buf, 0, data); err != nil {
		mr.allocator.DestroyBuffer(buf)
		return 0, err
	}
	return buf, nil
}

func (mr *MeshRegistry) Mesh(handle metadata.MeshHandle) (*metadata.Mesh, bool) {
	mesh, ok := mr.meshes[handle]
	return mesh, ok
}

func (mr *MeshRegistry) Lookup(name string) (metadata.MeshHandle, bool) {
	h, ok := mr.byName[name]
	return h, ok
}

func (mr *MeshRegistry) Len() int {
	return len(mr.meshes)
}

// Destroy releases every mesh buffer. The device must be idle.
func (mr *MeshRegistry) Destroy() {
	for handle, mesh := range mr.meshes {
		mr.allocator.DestroyBuffer(mesh.VertexBuffer)
		if mesh.IndexBuffer.IsValid() {
			mr.allocator.DestroyBuffer(mesh.IndexBuffer)
		}
		delete(mr.meshes, handle)
	}
	clear(mr.byName)
}
