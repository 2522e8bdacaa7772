package metadata

/** @brief The cache key of the white fallback texture. */
const DummyTextureName string = "__dummy_white"

/** @brief Describes a texture uploaded to the device. */
type TextureInfo struct {
	Name   string
	Width  uint32
	Height uint32
	SRGB   bool
	Handle Texture
}
