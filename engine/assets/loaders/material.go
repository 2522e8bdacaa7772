package loaders

import (
	"fmt"

	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// MaterialConfig is one [[objects.materials]] entry of the scene manifest.
// Omitted numeric fields take the defaults of metadata.DefaultMaterialParams.
type MaterialConfig struct {
	/** @brief Submesh index. Omit to target the whole object. */
	Submesh     *int        `toml:"submesh"`
	Texture     string      `toml:"texture"`
	SRGB        *bool       `toml:"srgb"`
	BaseColor   *[4]float32 `toml:"base_color"`
	Tiling      *[2]float32 `toml:"tiling"`
	Offset      *[2]float32 `toml:"offset"`
	Metallic    *float32    `toml:"metallic"`
	Roughness   *float32    `toml:"roughness"`
	AO          *float32    `toml:"ao"`
	AlphaCutoff *float32    `toml:"alpha_cutoff"`
	AlphaTest   bool        `toml:"alpha_test"`
}

// SubmeshIndex returns the submesh index or metadata.WholeObject.
func (mc *MaterialConfig) SubmeshIndex() int {
	if mc.Submesh == nil {
		return metadata.WholeObject
	}
	return *mc.Submesh
}

// TextureSRGB reports whether the texture holds color data. Defaults to true.
func (mc *MaterialConfig) TextureSRGB() bool {
	return mc.SRGB == nil || *mc.SRGB
}

func (mc *MaterialConfig) Validate() error {
	if mc.Submesh != nil && *mc.Submesh < 0 {
		return fmt.Errorf("submesh index %d must not be negative", *mc.Submesh)
	}
	for name, v := range map[string]*float32{
		"metallic": mc.Metallic, "roughness": mc.Roughness, "ao": mc.AO, "alpha_cutoff": mc.AlphaCutoff,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s %.3f must be in [0, 1]", name, *v)
		}
	}
	return nil
}

// Params builds the uniform block of the material.
func (mc *MaterialConfig) Params() metadata.MaterialParams {
	p := metadata.DefaultMaterialParams()
	if mc.BaseColor != nil {
		c := *mc.BaseColor
		p.BaseColorFactor = math.NewVec4(c[0], c[1], c[2], c[3])
	}
	if mc.Tiling != nil {
		p.UVTilingOffset[0], p.UVTilingOffset[1] = mc.Tiling[0], mc.Tiling[1]
	}
	if mc.Offset != nil {
		p.UVTilingOffset[2], p.UVTilingOffset[3] = mc.Offset[0], mc.Offset[1]
	}
	if mc.Metallic != nil {
		p.PbrAoAlpha[0] = *mc.Metallic
	}
	if mc.Roughness != nil {
		p.PbrAoAlpha[1] = *mc.Roughness
	}
	if mc.AO != nil {
		p.PbrAoAlpha[2] = *mc.AO
	}
	if mc.AlphaCutoff != nil {
		p.PbrAoAlpha[3] = *mc.AlphaCutoff
	}
	if len(mc.Texture) > 0 {
		p.Flags[0] |= metadata.MaterialFlagHasBaseColorTexture
	}
	if mc.AlphaTest {
		p.Flags[0] |= metadata.MaterialFlagAlphaTest
	}
	return p
}
