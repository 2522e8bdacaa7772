package metadata

import "github.com/spaghettifunk/grindsim/engine/math"

type VertexInputRate int

const (
	VertexInputRateVertex VertexInputRate = iota
	VertexInputRateInstance
)

type VertexFormat int

const (
	VertexFormatFloat2 VertexFormat = iota
	VertexFormatFloat3
	VertexFormatFloat4
)

type VertexBindingDescription struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexAttributeDescription struct {
	Location uint32
	Binding  uint32
	Format   VertexFormat
	Offset   uint32
}

const (
	// MeshVertexBinding carries math.Vertex3D.
	MeshVertexBinding uint32 = 0
	// InstanceVertexBinding carries one mat4 per instance.
	InstanceVertexBinding uint32 = 1
	// InstanceStride is the byte size of one per-instance matrix.
	InstanceStride uint32 = 64
)

func VertexBindingDescriptions() []VertexBindingDescription {
	return []VertexBindingDescription{
		{Binding: MeshVertexBinding, Stride: math.Vertex3DSize, InputRate: VertexInputRateVertex},
	}
}

// VertexAttributeDescriptions matches math.Vertex3D: position, colour, normal, uv.
func VertexAttributeDescriptions() []VertexAttributeDescription {
	return []VertexAttributeDescription{
		{Location: 0, Binding: MeshVertexBinding, Format: VertexFormatFloat3, Offset: 0},
		{Location: 1, Binding: MeshVertexBinding, Format: VertexFormatFloat3, Offset: 12},
		{Location: 2, Binding: MeshVertexBinding, Format: VertexFormatFloat3, Offset: 24},
		{Location: 3, Binding: MeshVertexBinding, Format: VertexFormatFloat2, Offset: 36},
	}
}

func InstanceBindingDescription() VertexBindingDescription {
	return VertexBindingDescription{
		Binding:   InstanceVertexBinding,
		Stride:    InstanceStride,
		InputRate: VertexInputRateInstance,
	}
}

// InstanceAttributeDescriptions splits the per-instance mat4 into four vec4
// columns at consecutive locations starting at baseLocation.
func InstanceAttributeDescriptions(baseLocation uint32) []VertexAttributeDescription {
	attrs := make([]VertexAttributeDescription, 4)
	for i := range attrs {
		attrs[i] = VertexAttributeDescription{
			Location: baseLocation + uint32(i),
			Binding:  InstanceVertexBinding,
			Format:   VertexFormatFloat4,
			Offset:   uint32(i) * 16,
		}
	}
	return attrs
}

// EncodeVertices packs vertices in the layout VertexAttributeDescriptions describes.
func EncodeVertices(vertices []math.Vertex3D) []byte {
	w := newStd140Writer(len(vertices) * math.Vertex3DSize)
	for _, v := range vertices {
		w.vec3(v.Position)
		w.vec3(v.Colour)
		w.vec3(v.Normal)
		w.vec2(v.Texcoord)
	}
	return w.bytes()
}

func EncodeIndices(indices []uint32) []byte {
	w := newStd140Writer(len(indices) * 4)
	for _, i := range indices {
		w.u32(i)
	}
	return w.bytes()
}

// EncodeInstances packs one column-major mat4 per instance.
func EncodeInstances(transforms []math.Mat4) []byte {
	w := newStd140Writer(len(transforms) * int(InstanceStride))
	for _, m := range transforms {
		w.mat4(m)
	}
	return w.bytes()
}
