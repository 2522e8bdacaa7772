package metadata

import "github.com/spaghettifunk/grindsim/engine/math"

// MaxLights must match MAX_LIGHTS in the shaders.
const MaxLights = 20

const (
	GlobalUBOSize               = 864
	MaterialParamsSize          = 64
	SimplePushConstantsSize     = 128
	PointLightPushConstantsSize = 36
)

// Material flag bits, stored in Flags[0].
const (
	MaterialFlagHasBaseColorTexture uint32 = 1 << 0
	MaterialFlagAlphaTest           uint32 = 1 << 1
)

type PointLight struct {
	Position math.Vec4 // ignore w
	Color    math.Vec4 // w is intensity
}

// GlobalUBO is the set 0 block written once per frame slot.
type GlobalUBO struct {
	Projection        math.Mat4
	View              math.Mat4
	InverseView       math.Mat4
	AmbientLightColor math.Vec4 // w is intensity
	PointLights       [MaxLights]PointLight
	NumLights         int32
}

func NewGlobalUBO() GlobalUBO {
	return GlobalUBO{
		Projection:        math.NewMat4Identity(),
		View:              math.NewMat4Identity(),
		InverseView:       math.NewMat4Identity(),
		AmbientLightColor: math.Vec4{1, 1, 1, 0.02},
	}
}

func (u *GlobalUBO) Bytes() []byte {
	w := newStd140Writer(GlobalUBOSize)
	w.mat4(u.Projection)
	w.mat4(u.View)
	w.mat4(u.InverseView)
	w.vec4(u.AmbientLightColor)
	for _, l := range u.PointLights {
		w.vec4(l.Position)
		w.vec4(l.Color)
	}
	w.i32(u.NumLights)
	w.pad(16)
	return w.bytes()
}

// MaterialParams is the set 2 block of one submesh or whole object.
type MaterialParams struct {
	BaseColorFactor math.Vec4
	UVTilingOffset  math.Vec4 // xy tiling, zw offset
	PbrAoAlpha      math.Vec4 // metallic, roughness, ao, alpha cutoff
	Flags           [4]uint32
}

func DefaultMaterialParams() MaterialParams {
	return MaterialParams{
		BaseColorFactor: math.Vec4{1, 1, 1, 1},
		UVTilingOffset:  math.Vec4{1, 1, 0, 0},
		PbrAoAlpha:      math.Vec4{0, 0.5, 1, 0},
	}
}

func (p MaterialParams) Bytes() []byte {
	w := newStd140Writer(MaterialParamsSize)
	w.vec4(p.BaseColorFactor)
	w.vec4(p.UVTilingOffset)
	w.vec4(p.PbrAoAlpha)
	w.uvec4(p.Flags)
	return w.bytes()
}

func DecodeMaterialParams(b []byte) (MaterialParams, error) {
	if err := checkSize("material params", b, MaterialParamsSize); err != nil {
		return MaterialParams{}, err
	}
	r := &std140Reader{buf: b}
	return MaterialParams{
		BaseColorFactor: r.vec4(),
		UVTilingOffset:  r.vec4(),
		PbrAoAlpha:      r.vec4(),
		Flags:           r.uvec4(),
	}, nil
}

// SimplePushConstants is pushed once per draw of the mesh pipelines.
type SimplePushConstants struct {
	ModelMatrix  math.Mat4
	NormalMatrix math.Mat4
}

func (p SimplePushConstants) Bytes() []byte {
	w := newStd140Writer(SimplePushConstantsSize)
	w.mat4(p.ModelMatrix)
	w.mat4(p.NormalMatrix)
	return w.bytes()
}

func DecodeSimplePushConstants(b []byte) (SimplePushConstants, error) {
	if err := checkSize("push constants", b, SimplePushConstantsSize); err != nil {
		return SimplePushConstants{}, err
	}
	r := &std140Reader{buf: b}
	return SimplePushConstants{ModelMatrix: r.mat4(), NormalMatrix: r.mat4()}, nil
}

type PointLightPushConstants struct {
	Position math.Vec4
	Color    math.Vec4
	Radius   float32
}

func (p PointLightPushConstants) Bytes() []byte {
	w := newStd140Writer(PointLightPushConstantsSize)
	w.vec4(p.Position)
	w.vec4(p.Color)
	w.f32(p.Radius)
	return w.bytes()
}
