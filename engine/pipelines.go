package engine

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// instanceBaseLocation is the first attribute location of the instance
// matrix. Locations 0 to 3 hold the mesh vertex.
const instanceBaseLocation = 4

var materialSets = []metadata.BindingClass{
	metadata.BindingClassGlobal,
	metadata.BindingClassTexture,
	metadata.BindingClassMaterial,
}

func pipelineConfigs(shaderDir string) []metadata.PipelineConfig {
	shader := func(name string) string {
		return filepath.Join(shaderDir, name+".spv")
	}
	return []metadata.PipelineConfig{
		{
			Kind:             metadata.PipelineKindMesh,
			VertexShader:     shader("shader.vert"),
			FragmentShader:   shader("shader.frag"),
			CullMode:         metadata.FaceCullModeBack,
			Bindings:         metadata.VertexBindingDescriptions(),
			Attributes:       metadata.VertexAttributeDescriptions(),
			SetClasses:       materialSets,
			PushConstantSize: metadata.SimplePushConstantsSize,
			DepthWrite:       true,
		},
		{
			Kind:             metadata.PipelineKindInstanced,
			VertexShader:     shader("instanced.vert"),
			FragmentShader:   shader("shader.frag"),
			CullMode:         metadata.FaceCullModeBack,
			Bindings:         append(metadata.VertexBindingDescriptions(), metadata.InstanceBindingDescription()),
			Attributes:       append(metadata.VertexAttributeDescriptions(), metadata.InstanceAttributeDescriptions(instanceBaseLocation)...),
			SetClasses:       materialSets,
			PushConstantSize: 0,
			DepthWrite:       true,
		},
		{
			Kind:             metadata.PipelineKindPointLight,
			VertexShader:     shader("point_light.vert"),
			FragmentShader:   shader("point_light.frag"),
			CullMode:         metadata.FaceCullModeNone,
			SetClasses:       []metadata.BindingClass{metadata.BindingClassGlobal},
			PushConstantSize: metadata.PointLightPushConstantsSize,
			DepthWrite:       false,
			AlphaBlend:       true,
		},
	}
}

// createPipelines needs a surface to exist, the pipelines are built against
// its render pass.
func createPipelines(device renderer.Device, shaderDir string) (metadata.Pipelines, error) {
	var pipelines metadata.Pipelines
	for _, config := range pipelineConfigs(shaderDir) {
		handle, err := device.CreatePipeline(config)
		if err != nil {
			return pipelines, fmt.Errorf("failed to create %s pipeline: %w", config.VertexShader, err)
		}
		switch config.Kind {
		case metadata.PipelineKindMesh:
			pipelines.Mesh = handle
		case metadata.PipelineKindInstanced:
			pipelines.Instanced = handle
		case metadata.PipelineKindPointLight:
			pipelines.PointLight = handle
		}
	}
	return pipelines, nil
}

// descriptorBudget sizes the pool of every binding class. Material sets are
// per frame slot, plus the placeholder material.
func descriptorBudget(framesInFlight int, maxObjects, maxTextures uint32) [metadata.BindingClassCount]uint32 {
	n := uint32(framesInFlight)
	var budget [metadata.BindingClassCount]uint32
	budget[metadata.BindingClassGlobal] = n
	budget[metadata.BindingClassTexture] = maxTextures + 1
	budget[metadata.BindingClassMaterial] = (maxObjects + 1) * n
	return budget
}
