package metadata

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

/** @brief The graphics pipelines the frame pipeline draws with. */
type PipelineKind int

const (
	/** @brief Per-object meshes with set 0/1/2 and model push constants. */
	PipelineKindMesh PipelineKind = iota
	/** @brief Same as mesh with a second, per-instance vertex binding. */
	PipelineKindInstanced
	/** @brief Camera facing point light billboards, set 0 only. */
	PipelineKindPointLight
)

/** @brief Describes one graphics pipeline to create. */
type PipelineConfig struct {
	Kind             PipelineKind
	VertexShader     string
	FragmentShader   string
	CullMode         FaceCullMode
	Bindings         []VertexBindingDescription
	Attributes       []VertexAttributeDescription
	SetClasses       []BindingClass
	PushConstantSize uint32
	DepthWrite       bool
	AlphaBlend       bool
}

/** @brief The pipeline handles the composer and light system use. */
type Pipelines struct {
	Mesh       Pipeline
	Instanced  Pipeline
	PointLight Pipeline
}
