package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Decoded image, converted to RGBA. */
	ResourceTypeImage
	/** @brief SPIR-V shader module. */
	ResourceTypeShader
	/** @brief Scene manifest: objects, materials, lights and tracks. */
	ResourceTypeScene
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeScene:
		return "scene"
	}
	return "none"
}

/** @brief The first word of every SPIR-V module. */
const SpirvMagic uint32 = 0x07230203

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. Its concrete type depends on Type. */
	Data interface{}
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}

/** @brief A SPIR-V module as loaded from disk. */
type ShaderResourceData struct {
	Stage string
	Code  []uint32
}
