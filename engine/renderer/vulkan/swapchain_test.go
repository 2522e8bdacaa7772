package vulkan

import (
	"image"
	"image/color"
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormat(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	assert.Equal(t, vk.FormatB8g8r8a8Unorm, chooseSurfaceFormat(formats, vk.FormatUndefined).Format)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, chooseSurfaceFormat(formats, vk.FormatB8g8r8a8Srgb).Format)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, chooseSurfaceFormat(formats[:1], vk.FormatB8g8r8a8Srgb).Format)
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes, true))
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(modes, false))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}, false))
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 1024, Height: 1024},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseExtent(caps, 1280, 720))

	caps.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 720}, chooseExtent(caps, 1280, 720))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2}))
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestTightPixels(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 4, 4))
	full.Set(1, 2, color.RGBA{R: 9, G: 8, B: 7, A: 6})
	assert.Len(t, tightPixels(full), 4*4*4)

	sub, ok := full.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	require.True(t, ok)
	pixels := tightPixels(sub)
	require.Len(t, pixels, 2*2*4)
	// (1,2) is row 1, column 0 of the sub image.
	assert.Equal(t, []byte{9, 8, 7, 6}, pixels[8:12])
}
