package metadata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/math"
)

func TestUniformSizes(t *testing.T) {
	ubo := NewGlobalUBO()
	assert.Len(t, ubo.Bytes(), GlobalUBOSize)
	assert.Len(t, DefaultMaterialParams().Bytes(), MaterialParamsSize)
	assert.Len(t, SimplePushConstants{}.Bytes(), SimplePushConstantsSize)
	assert.Len(t, PointLightPushConstants{}.Bytes(), PointLightPushConstantsSize)
}

func TestMaterialParamsDecode(t *testing.T) {
	p := MaterialParams{
		BaseColorFactor: math.Vec4{0.5, 0.25, 1, 1},
		UVTilingOffset:  math.Vec4{2, 2, 0.1, 0},
		PbrAoAlpha:      math.Vec4{1, 0.35, 1, 0},
		Flags:           [4]uint32{MaterialFlagHasBaseColorTexture, 0, 0, 0},
	}
	got, err := DecodeMaterialParams(p.Bytes())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = DecodeMaterialParams(make([]byte, 10))
	assert.Error(t, err)
}

func TestGlobalUBOLayout(t *testing.T) {
	ubo := NewGlobalUBO()
	ubo.NumLights = 3
	ubo.PointLights[0].Color = math.Vec4{1, 0, 0, 2}
	b := ubo.Bytes()

	r := &std140Reader{buf: b, off: 192}
	assert.Equal(t, math.Vec4{1, 1, 1, 0.02}, r.vec4())
	r.off = 208 + 16
	assert.Equal(t, math.Vec4{1, 0, 0, 2}, r.vec4())
	r.off = 208 + MaxLights*32
	assert.Equal(t, uint32(3), r.u32())
}

func TestPushConstantsAreColumnMajor(t *testing.T) {
	m := mgl32.Translate3D(4, 5, 6)
	got, err := DecodeSimplePushConstants(SimplePushConstants{ModelMatrix: m}.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m, got.ModelMatrix)
	// Translation lives in the 4th column.
	r := &std140Reader{buf: SimplePushConstants{ModelMatrix: m}.Bytes(), off: 48}
	assert.Equal(t, math.Vec4{4, 5, 6, 1}, r.vec4())
}

func TestInstanceLayout(t *testing.T) {
	b := InstanceBindingDescription()
	assert.Equal(t, VertexInputRateInstance, b.InputRate)
	assert.Equal(t, InstanceStride, b.Stride)

	attrs := InstanceAttributeDescriptions(4)
	require.Len(t, attrs, 4)
	for i, a := range attrs {
		assert.Equal(t, uint32(4+i), a.Location)
		assert.Equal(t, uint32(16*i), a.Offset)
		assert.Equal(t, VertexFormatFloat4, a.Format)
		assert.Equal(t, InstanceVertexBinding, a.Binding)
	}
	assert.Len(t, EncodeInstances(make([]math.Mat4, 100)), 100*int(InstanceStride))
}

func TestVertexLayout(t *testing.T) {
	attrs := VertexAttributeDescriptions()
	last := attrs[len(attrs)-1]
	// uv is the last attribute and ends exactly at the stride.
	assert.Equal(t, uint32(math.Vertex3DSize), last.Offset+8)
	assert.Len(t, EncodeVertices(make([]math.Vertex3D, 3)), 3*math.Vertex3DSize)
}

func TestExtent(t *testing.T) {
	assert.True(t, Extent{0, 10}.IsZero())
	assert.Equal(t, float32(2), Extent{200, 100}.AspectRatio())
	assert.Equal(t, float32(1), Extent{}.AspectRatio())
}
