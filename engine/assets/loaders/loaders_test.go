package loaders

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/resources"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 2, color.NRGBA{B: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageLoaderDecodesToRGBA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	writePNG(t, path)

	res, err := (&ImageLoader{}).Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, resources.ResourceTypeImage, res.Type)
	assert.Equal(t, "png", res.Name)

	img := res.Data.(*image.RGBA)
	assert.Equal(t, image.Rect(0, 0, 2, 3), img.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(1, 2))
	assert.Equal(t, uint64(2*3*4), res.DataSize)
}

func TestImageLoaderFlipY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	writePNG(t, path)

	res, err := (&ImageLoader{}).Load(path, &resources.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	img := res.Data.(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 2))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(1, 0))
}

func TestImageLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := (&ImageLoader{}).Load(filepath.Join(dir, "missing.png"), nil)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = (&ImageLoader{}).Load(bad, nil)
	assert.Error(t, err)
}

func TestSolidImage(t *testing.T) {
	img := SolidImage(1, 1, [4]uint8{255, 255, 255, 255})
	assert.Equal(t, []uint8{255, 255, 255, 255}, img.Pix)
}

func spirv(words ...uint32) []byte {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func TestShaderLoader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "shader.vert.spv")
	require.NoError(t, os.WriteFile(good, spirv(resources.SpirvMagic, 0x00010000, 7), 0o644))

	res, err := (&ShaderLoader{}).Load(good, nil)
	require.NoError(t, err)
	data := res.Data.(*resources.ShaderResourceData)
	assert.Equal(t, "vert", data.Stage)
	assert.Equal(t, []uint32{resources.SpirvMagic, 0x00010000, 7}, data.Code)

	odd := filepath.Join(dir, "odd.frag.spv")
	require.NoError(t, os.WriteFile(odd, []byte{1, 2, 3}, 0o644))
	_, err = (&ShaderLoader{}).Load(odd, nil)
	assert.ErrorIs(t, err, core.ErrShaderLoad)

	noMagic := filepath.Join(dir, "nomagic.frag.spv")
	require.NoError(t, os.WriteFile(noMagic, spirv(1, 2), 0o644))
	_, err = (&ShaderLoader{}).Load(noMagic, nil)
	assert.ErrorIs(t, err, core.ErrShaderLoad)

	_, err = (&ShaderLoader{}).Load(filepath.Join(dir, "missing.spv"), nil)
	assert.ErrorIs(t, err, core.ErrShaderLoad)
}

const testScene = `
texture_root = "textures"

[[meshes]]
name = "wheel"
kind = "wheel"
radius = 1.0
segments = 32

[[meshes]]
name = "blank"
kind = "box"
size = [4.0, 0.5, 2.0]

[[objects]]
name = "wheel"
mesh = "wheel"

  [objects.motion]
  feed_rate = 0.5
  pitch = 0.2
  travel_limit = 100.0
  enabled = true

  [[objects.materials]]
  submesh = 0
  texture = "abrasive.png"
  metallic = 0.0
  roughness = 0.85

  [[objects.materials]]
  submesh = 1
  texture = "metal.jpg"
  metallic = 1.0
  roughness = 0.35

[[objects]]
name = "blank"
mesh = "blank"
translation = [0.0, -1.0, 0.0]

  [[objects.materials]]
  base_color = [0.8, 0.8, 0.8, 1.0]
  tiling = [2.0, 2.0]

[[lights]]
name = "key"
position = [1.0, 2.0, 1.0]
color = [1.0, 1.0, 1.0]
intensity = 0.5
radius = 0.1
orbit = true

[headlight]
enabled = true
intensity = 0.3

[[tracks]]
name = "path"
object = "wheel"
mesh = "blank"
t0 = 0.0
t1 = 10.0
count = 100
`

func TestParseScene(t *testing.T) {
	sm, err := ParseScene([]byte(testScene))
	require.NoError(t, err)

	require.Len(t, sm.Meshes, 2)
	require.Len(t, sm.Objects, 2)
	wheel, ok := sm.Object("wheel")
	require.True(t, ok)
	require.NotNil(t, wheel.Motion)
	assert.Equal(t, float32(0.2), wheel.Motion.Pitch)
	require.Len(t, wheel.Materials, 2)

	abrasive := wheel.Materials[0]
	assert.Equal(t, 0, abrasive.SubmeshIndex())
	assert.True(t, abrasive.TextureSRGB())
	p := abrasive.Params()
	assert.Equal(t, [4]float32{0, 0.85, 1, 0}, [4]float32(p.PbrAoAlpha))
	assert.Equal(t, metadata.MaterialFlagHasBaseColorTexture, p.Flags[0])

	blank, _ := sm.Object("blank")
	whole := blank.Materials[0]
	assert.Equal(t, metadata.WholeObject, whole.SubmeshIndex())
	bp := whole.Params()
	assert.Equal(t, [4]float32{2, 2, 0, 0}, [4]float32(bp.UVTilingOffset))
	assert.Equal(t, uint32(0), bp.Flags[0])
	assert.Equal(t, [3]float32{0, -1, 0}, blank.Translation)

	assert.True(t, sm.Lights[0].Orbit)
	assert.True(t, sm.Headlight.Enabled)
	require.Len(t, sm.Tracks, 1)
	assert.Equal(t, uint32(100), sm.Tracks[0].Count)
}

func TestParseSceneRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "bogus = 1\n",
		"unknown mesh":   "[[objects]]\nname = \"a\"\nmesh = \"nope\"\n",
		"bad kind":       "[[meshes]]\nname = \"m\"\nkind = \"sphere\"\n",
		"bad roughness":  "[[meshes]]\nname = \"m\"\nkind = \"box\"\n[[objects]]\nname = \"a\"\nmesh = \"m\"\n[[objects.materials]]\nroughness = 2.0\n",
		"track unknown":  "[[tracks]]\nname = \"t\"\nobject = \"x\"\n",
		"negative index": "[[meshes]]\nname = \"m\"\nkind = \"box\"\n[[objects]]\nname = \"a\"\nmesh = \"m\"\n[[objects.materials]]\nsubmesh = -2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScene([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestSceneLoaderResolvesTextureRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0o644))

	res, err := (&SceneLoader{}).Load(path, nil)
	require.NoError(t, err)
	sm := res.Data.(*SceneManifest)
	assert.Equal(t, filepath.Join(dir, "textures", "abrasive.png"), sm.TexturePath("abrasive.png"))
	assert.Equal(t, "/abs/x.png", sm.TexturePath("/abs/x.png"))
	assert.Equal(t, "", sm.TexturePath(""))
}
