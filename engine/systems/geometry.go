package systems

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// Submesh indices of the generated wheel.
const (
	WheelSubmeshAbrasive = 0
	WheelSubmeshHub      = 1
)

type WheelConfig struct {
	Radius      float32
	InnerRadius float32
	Width       float32
	HubRadius   float32
	HubWidth    float32
	Segments    uint32
}

func DefaultWheelConfig() WheelConfig {
	return WheelConfig{
		Radius:      1.0,
		InnerRadius: 0.45,
		Width:       0.25,
		HubRadius:   0.45,
		HubWidth:    0.35,
		Segments:    64,
	}
}

type meshBuilder struct {
	vertices []math.Vertex3D
	indices  []uint32
}

func (b *meshBuilder) vertex(position, normal math.Vec3, uv math.Vec2) uint32 {
	b.vertices = append(b.vertices, math.Vertex3D{
		Position: position,
		Colour:   math.NewVec3One(),
		Normal:   normal,
		Texcoord: uv,
	})
	return uint32(len(b.vertices) - 1)
}

// quad adds two counter clockwise triangles a-b-c and a-c-d.
func (b *meshBuilder) quad(a, bb, c, d uint32) {
	b.indices = append(b.indices, a, bb, c, a, c, d)
}

// submesh closes the index range started at first.
func (b *meshBuilder) submesh(first uint32, materialID int32) metadata.Submesh {
	return metadata.Submesh{
		FirstIndex: first,
		IndexCount: uint32(len(b.indices)) - first,
		MaterialID: materialID,
	}
}

// band adds the side of a cylinder around Y. Normals point outward when
// outward is set, inward otherwise.
func (b *meshBuilder) band(radius, bottom, top float32, segments uint32, outward bool) {
	base := uint32(len(b.vertices))
	for i := uint32(0); i <= segments; i++ {
		u := float32(i) / float32(segments)
		s, c := math32.Sincos(u * math.TwoPi)
		normal := math.NewVec3(c, 0, s)
		if !outward {
			normal = normal.Mul(-1)
		}
		b.vertex(math.NewVec3(c*radius, bottom, s*radius), normal, math.NewVec2(u, 1))
		b.vertex(math.NewVec3(c*radius, top, s*radius), normal, math.NewVec2(u, 0))
	}
	for i := uint32(0); i < segments; i++ {
		b0, t0 := base+i*2, base+i*2+1
		b1, t1 := b0+2, t0+2
		if outward {
			b.quad(b0, t0, t1, b1)
		} else {
			b.quad(b0, b1, t1, t0)
		}
	}
}

// annulus adds a flat ring at height y facing +Y when up is set. An inner
// radius of zero gives a disc.
func (b *meshBuilder) annulus(inner, outer, y float32, segments uint32, up bool) {
	normal := math.NewVec3(0, 1, 0)
	if !up {
		normal = normal.Mul(-1)
	}
	base := uint32(len(b.vertices))
	for i := uint32(0); i <= segments; i++ {
		u := float32(i) / float32(segments)
		s, c := math32.Sincos(u * math.TwoPi)
		ri := inner / outer * 0.5
		b.vertex(math.NewVec3(c*inner, y, s*inner), normal, math.NewVec2(0.5+c*ri, 0.5+s*ri))
		b.vertex(math.NewVec3(c*outer, y, s*outer), normal, math.NewVec2(0.5+c*0.5, 0.5+s*0.5))
	}
	for i := uint32(0); i < segments; i++ {
		i0, o0 := base+i*2, base+i*2+1
		i1, o1 := i0+2, o0+2
		if up {
			b.quad(i0, i1, o1, o0)
		} else {
			b.quad(i0, o0, o1, i1)
		}
	}
}

// GenerateWheel builds a grinding wheel around the Y axis with two submeshes:
// the abrasive ring and the metal hub.
func GenerateWheel(config WheelConfig, name string) metadata.MeshData {
	if config.Segments < 3 {
		core.LogWarn("Wheel needs at least 3 segments. Defaulting to 3.")
		config.Segments = 3
	}
	if config.Radius <= 0 {
		core.LogWarn("Wheel radius must be positive. Defaulting to one.")
		config.Radius = 1
	}
	if config.InnerRadius <= 0 || config.InnerRadius >= config.Radius {
		config.InnerRadius = config.Radius * 0.45
	}
	if config.HubRadius <= 0 || config.HubRadius > config.InnerRadius {
		config.HubRadius = config.InnerRadius
	}

	b := &meshBuilder{}
	halfW := config.Width * 0.5
	halfHub := config.HubWidth * 0.5

	b.band(config.Radius, -halfW, halfW, config.Segments, true)
	b.annulus(config.InnerRadius, config.Radius, halfW, config.Segments, true)
	b.annulus(config.InnerRadius, config.Radius, -halfW, config.Segments, false)
	abrasive := b.submesh(0, WheelSubmeshAbrasive)

	hubFirst := uint32(len(b.indices))
	b.band(config.HubRadius, -halfHub, halfHub, config.Segments, true)
	b.annulus(0, config.HubRadius, halfHub, config.Segments, true)
	b.annulus(0, config.HubRadius, -halfHub, config.Segments, false)
	hub := b.submesh(hubFirst, WheelSubmeshHub)

	return metadata.MeshData{
		Name:      nameOr(name, "wheel"),
		Vertices:  b.vertices,
		Indices:   b.indices,
		Submeshes: []metadata.Submesh{abrasive, hub},
	}
}

// GenerateBox builds an axis aligned box centered on the origin. It has no
// submeshes and is drawn with its whole-object material.
func GenerateBox(width, height, depth, tileX, tileY float32, name string) metadata.MeshData {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	hx, hy, hz := width*0.5, height*0.5, depth*0.5
	// Front, back, left, right, bottom, top. Corners wind counter clockwise
	// seen from outside.
	faces := [6][4]math.Vec3{
		{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}},
		{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}},
		{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}},
		{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}},
		{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}},
		{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}},
	}
	uvs := [4]math.Vec2{{0, tileY}, {tileX, tileY}, {tileX, 0}, {0, 0}}

	b := &meshBuilder{}
	for _, corners := range faces {
		var idx [4]uint32
		for i, corner := range corners {
			idx[i] = b.vertex(corner, math.NewVec3Zero(), uvs[i])
		}
		b.quad(idx[0], idx[1], idx[2], idx[3])
	}
	math.GeometryGenerateNormals(b.vertices, b.indices)

	return metadata.MeshData{Name: nameOr(name, "box"), Vertices: b.vertices, Indices: b.indices}
}

// GeneratePlane builds a segmented plane in XZ facing +Y.
func GeneratePlane(width, depth float32, xSegmentCount, zSegmentCount uint32, tileX, tileY float32, name string) metadata.MeshData {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if xSegmentCount < 1 {
		xSegmentCount = 1
	}
	if zSegmentCount < 1 {
		zSegmentCount = 1
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}

	b := &meshBuilder{}
	up := math.NewVec3(0, 1, 0)
	segW := width / float32(xSegmentCount)
	segD := depth / float32(zSegmentCount)
	halfW, halfD := width*0.5, depth*0.5

	for z := uint32(0); z <= zSegmentCount; z++ {
		for x := uint32(0); x <= xSegmentCount; x++ {
			px := float32(x)*segW - halfW
			pz := float32(z)*segD - halfD
			uv := math.NewVec2(float32(x)/float32(xSegmentCount)*tileX, float32(z)/float32(zSegmentCount)*tileY)
			b.vertex(math.NewVec3(px, 0, pz), up, uv)
		}
	}
	row := xSegmentCount + 1
	for z := uint32(0); z < zSegmentCount; z++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			v0 := z*row + x
			b.quad(v0, v0+row, v0+row+1, v0+1)
		}
	}

	return metadata.MeshData{Name: nameOr(name, "plane"), Vertices: b.vertices, Indices: b.indices}
}

func nameOr(name, fallback string) string {
	if len(name) > 0 {
		return name
	}
	return fallback
}
