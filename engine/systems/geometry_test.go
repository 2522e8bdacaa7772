package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// assertFrontFacing checks that every triangle winds counter clockwise around
// its vertex normals.
func assertFrontFacing(t *testing.T, data metadata.MeshData) {
	t.Helper()
	require.Zero(t, len(data.Indices)%3)
	for i := 0; i < len(data.Indices); i += 3 {
		a := data.Vertices[data.Indices[i]]
		b := data.Vertices[data.Indices[i+1]]
		c := data.Vertices[data.Indices[i+2]]
		face := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if face.Len() < 1e-9 {
			continue
		}
		normal := a.Normal.Add(b.Normal).Add(c.Normal)
		if !assert.Greater(t, face.Dot(normal), float32(0), "%s triangle %d", data.Name, i/3) {
			return
		}
	}
}

func TestGenerateWheel(t *testing.T) {
	cfg := DefaultWheelConfig()
	cfg.Segments = 16
	data := GenerateWheel(cfg, "")
	assert.Equal(t, "wheel", data.Name)
	require.Len(t, data.Submeshes, 2)

	abrasive, hub := data.Submeshes[WheelSubmeshAbrasive], data.Submeshes[WheelSubmeshHub]
	assert.Equal(t, uint32(0), abrasive.FirstIndex)
	assert.Equal(t, abrasive.IndexCount, hub.FirstIndex)
	assert.Equal(t, uint32(len(data.Indices)), hub.FirstIndex+hub.IndexCount)
	assert.Positive(t, hub.IndexCount)
	assert.Equal(t, int32(WheelSubmeshHub), hub.MaterialID)

	ext := math.GeometryExtents(data.Vertices)
	assert.InDelta(t, cfg.Radius, ext.Max.X(), 1e-5)
	assert.InDelta(t, cfg.HubWidth/2, ext.Max.Y(), 1e-5)
	assertFrontFacing(t, data)
}

func TestGenerateWheelClampsConfig(t *testing.T) {
	data := GenerateWheel(WheelConfig{Radius: -1, Segments: 1, InnerRadius: 5, HubRadius: 9, Width: 0.1, HubWidth: 0.1}, "w")
	ext := math.GeometryExtents(data.Vertices)
	assert.InDelta(t, 1.0, ext.Max.X(), 1e-5)
	require.Len(t, data.Submeshes, 2)
	for _, idx := range data.Indices {
		assert.Less(t, int(idx), len(data.Vertices))
	}
}

func TestGenerateBox(t *testing.T) {
	data := GenerateBox(4, 0.5, 2, 2, 1, "blank")
	assert.Len(t, data.Vertices, 24)
	assert.Len(t, data.Indices, 36)
	assert.Empty(t, data.Submeshes)

	ext := math.GeometryExtents(data.Vertices)
	assert.Equal(t, math.NewVec3(-2, -0.25, -1), ext.Min)
	assert.Equal(t, math.NewVec3(2, 0.25, 1), ext.Max)

	// face normals point away from the center
	for i := 0; i < len(data.Indices); i += 3 {
		a := data.Vertices[data.Indices[i]]
		b := data.Vertices[data.Indices[i+1]]
		c := data.Vertices[data.Indices[i+2]]
		centroid := a.Position.Add(b.Position).Add(c.Position).Mul(1.0 / 3)
		assert.Greater(t, centroid.Dot(a.Normal), float32(0), "triangle %d", i/3)
		assert.InDelta(t, 1.0, a.Normal.Len(), 1e-5)
	}
	assertFrontFacing(t, data)

	fallback := GenerateBox(0, 0, 0, 0, 0, "")
	assert.Equal(t, "box", fallback.Name)
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0.5), math.GeometryExtents(fallback.Vertices).Max)
}

func TestGeneratePlane(t *testing.T) {
	data := GeneratePlane(2, 4, 2, 3, 1, 1, "floor")
	assert.Len(t, data.Vertices, 3*4)
	assert.Len(t, data.Indices, 2*3*6)
	for _, v := range data.Vertices {
		assert.Equal(t, float32(0), v.Position.Y())
		assert.Equal(t, math.NewVec3(0, 1, 0), v.Normal)
	}
	ext := math.GeometryExtents(data.Vertices)
	assert.Equal(t, math.NewVec3(-1, 0, -2), ext.Min)
	assertFrontFacing(t, data)
}
