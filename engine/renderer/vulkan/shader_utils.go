package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/resources"
)

// ShaderSource loads compiled SPIR-V modules by name.
type ShaderSource interface {
	LoadShader(name string) (*resources.ShaderResourceData, error)
}

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

/**
 * @brief Loads name through source and wraps it in a shader module for stage.
 * Every failure is reported as core.ErrShaderLoad.
 */
func NewShaderModule(context *VulkanContext, source ShaderSource, name string, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if source == nil {
		return nil, fmt.Errorf("%w '%s': no shader source", core.ErrShaderLoad, name)
	}
	data, err := source.LoadShader(name)
	if err != nil {
		// The asset loaders already wrap ErrShaderLoad.
		return nil, err
	}
	if len(data.Code) == 0 {
		return nil, fmt.Errorf("%w '%s': empty module", core.ErrShaderLoad, name)
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data.Code) * 4),
		PCode:    data.Code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.device(), &createInfo, context.Allocator, &module); res != vk.Success {
		return nil, fmt.Errorf("%w '%s': %v", core.ErrShaderLoad, name, vkError("vkCreateShaderModule", res))
	}

	return &VulkanShaderStage{
		Handle: module,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: module,
			PName:  VulkanSafeString("main"),
		},
	}, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.device(), s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}
