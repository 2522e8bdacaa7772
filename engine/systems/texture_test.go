package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/renderer/rendertest"
)

func newTextureSystem(t *testing.T, images *fakeImages, jobs *JobSystem) (*TextureSystem, *rendertest.Device) {
	t.Helper()
	dev := rendertest.NewDevice()
	ts, err := NewTextureSystem(TextureSystemConfig{MaxTextureCount: 8}, dev, images, jobs)
	require.NoError(t, err)
	return ts, dev
}

func TestTextureSystemCreatesDummy(t *testing.T) {
	ts, dev := newTextureSystem(t, newFakeImages(), nil)

	dummy := ts.DummyTexture()
	assert.Equal(t, metadata.DummyTextureName, dummy.Name)
	assert.Equal(t, uint32(1), dummy.Width)
	assert.Equal(t, uint32(1), dummy.Height)
	assert.True(t, ts.DummySet().IsValid())
	assert.Equal(t, metadata.BindingClassTexture, dev.Sets[ts.DummySet()].Class)
	assert.Equal(t, 0, ts.Len())
}

func TestTextureSystemDedupesByPath(t *testing.T) {
	images := newFakeImages("a.png", "b.png")
	ts, dev := newTextureSystem(t, images, nil)

	first, err := ts.GetOrCreateMaterialSet("a.png", true)
	require.NoError(t, err)
	second, err := ts.GetOrCreateMaterialSet("a.png", true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, images.count("a.png"))

	info, err := ts.LoadOrGet("a.png", false)
	require.NoError(t, err)
	assert.True(t, info.SRGB, "cached entry keeps the first srgb flag")
	assert.Equal(t, uint32(2), info.Width)
	assert.Equal(t, 1, images.count("a.png"))

	other, err := ts.GetOrCreateMaterialSet("b.png", true)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
	// dummy plus two images
	assert.Len(t, dev.Textures, 3)
	assert.Equal(t, 2, ts.Len())
}

func TestTextureSystemErrors(t *testing.T) {
	ts, _ := newTextureSystem(t, newFakeImages(), nil)
	_, err := ts.LoadOrGet("missing.png", true)
	assert.Error(t, err)
	assert.Equal(t, 0, ts.Len())

	_, err = NewTextureSystem(TextureSystemConfig{}, rendertest.NewDevice(), newFakeImages(), nil)
	assert.Error(t, err)

	dev := rendertest.NewDevice()
	dev.MaxSets[metadata.BindingClassTexture] = 1
	limited, err := NewTextureSystem(TextureSystemConfig{MaxTextureCount: 4}, dev, newFakeImages("a.png"), nil)
	require.NoError(t, err)
	_, err = limited.GetOrCreateMaterialSet("a.png", true)
	assert.ErrorIs(t, err, core.ErrDescriptorPoolExhausted)
}

func TestTextureSystemLimit(t *testing.T) {
	images := newFakeImages("a.png", "b.png")
	dev := rendertest.NewDevice()
	ts, err := NewTextureSystem(TextureSystemConfig{MaxTextureCount: 1}, dev, images, nil)
	require.NoError(t, err)

	_, err = ts.LoadOrGet("a.png", true)
	require.NoError(t, err)
	_, err = ts.LoadOrGet("b.png", true)
	assert.Error(t, err)
}

func TestTextureSystemCreateFromImage(t *testing.T) {
	ts, dev := newTextureSystem(t, newFakeImages(), nil)
	img := loaders.SolidImage(4, 2, [4]uint8{0, 0, 0, 255})

	info, err := ts.CreateFromImage("generated", img, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), info.Width)
	assert.Equal(t, uint32(2), info.Height)
	assert.Equal(t, "generated", dev.Textures[info.Handle].Name)

	again, err := ts.CreateFromImage("generated", img, false)
	require.NoError(t, err)
	assert.Equal(t, info.Handle, again.Handle)
}

func TestTextureSystemPreload(t *testing.T) {
	jobs, err := NewJobSystem(3, 2)
	require.NoError(t, err)
	defer jobs.Shutdown()

	images := newFakeImages("a.png", "b.png", "c.png")
	ts, _ := newTextureSystem(t, images, jobs)

	_, err = ts.LoadOrGet("a.png", true)
	require.NoError(t, err)
	require.NoError(t, ts.Preload([]string{"a.png", "b.png", "c.png", "b.png"}, true))

	assert.Equal(t, 3, ts.Len())
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		assert.Equal(t, 1, images.count(name), name)
	}

	err = ts.Preload([]string{"missing.png"}, true)
	assert.Error(t, err)
	assert.Equal(t, 3, ts.Len())
}

func TestTextureSystemShutdown(t *testing.T) {
	ts, dev := newTextureSystem(t, newFakeImages("a.png"), nil)
	_, err := ts.LoadOrGet("a.png", true)
	require.NoError(t, err)

	require.NoError(t, ts.Shutdown())
	for handle, info := range dev.Textures {
		assert.True(t, info.Freed, "texture %d", handle)
	}
	assert.Equal(t, 0, ts.Len())
}
