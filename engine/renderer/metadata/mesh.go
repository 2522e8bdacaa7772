package metadata

import "github.com/spaghettifunk/grindsim/engine/math"

/** @brief A contiguous index range drawn with its own material. */
type Submesh struct {
	FirstIndex uint32
	IndexCount uint32
	/** @brief Material id hint carried over from the source asset. */
	MaterialID int32
}

/**
 * @brief An immutable vertex/index buffer pair in GPU memory. Meshes are
 * owned by the mesh registry, scene objects only hold a MeshHandle.
 */
type Mesh struct {
	Name         string
	VertexBuffer Buffer
	IndexBuffer  Buffer
	VertexCount  uint32
	IndexCount   uint32
	Submeshes    []Submesh
	Extents      math.Extents3D
}

func (m *Mesh) HasIndexBuffer() bool {
	return m.IndexBuffer.IsValid() && m.IndexCount > 0
}

func (m *Mesh) SubmeshCount() int {
	return len(m.Submeshes)
}

/** @brief CPU side geometry handed to the mesh registry for upload. */
type MeshData struct {
	Name      string
	Vertices  []math.Vertex3D
	Indices   []uint32
	Submeshes []Submesh
}

/** @brief Submesh index that selects the whole-object binding. */
const WholeObject int = -1
