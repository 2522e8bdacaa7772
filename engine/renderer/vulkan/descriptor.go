package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

const pushConstantStages = vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)

/**
 * @brief A descriptor set together with the class it was allocated from.
 */
type VulkanDescriptorSet struct {
	Handle vk.DescriptorSet
	Class  metadata.BindingClass
}

/**
 * @brief The layout and the pool of one binding class. Each class has a
 * single binding 0.
 */
type VulkanDescriptorClass struct {
	Class     metadata.BindingClass
	Layout    vk.DescriptorSetLayout
	Pool      vk.DescriptorPool
	Type      vk.DescriptorType
	MaxSets   uint32
	Allocated uint32
}

func descriptorTypeFor(class metadata.BindingClass) vk.DescriptorType {
	if class == metadata.BindingClassTexture {
		return vk.DescriptorTypeCombinedImageSampler
	}
	return vk.DescriptorTypeUniformBuffer
}

func descriptorStagesFor(class metadata.BindingClass) vk.ShaderStageFlags {
	if class == metadata.BindingClassTexture {
		return vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
}

func NewDescriptorClass(context *VulkanContext, class metadata.BindingClass, maxSets uint32) (*VulkanDescriptorClass, error) {
	if maxSets == 0 {
		return nil, fmt.Errorf("descriptor class %s needs at least one set", class)
	}
	dc := &VulkanDescriptorClass{
		Class:   class,
		Type:    descriptorTypeFor(class),
		MaxSets: maxSets,
	}

	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  dc.Type,
		DescriptorCount: 1,
		StageFlags:      descriptorStagesFor(class),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.device(), &layoutInfo, context.Allocator, &layout); res != vk.Success {
		return nil, vkError("vkCreateDescriptorSetLayout", res)
	}
	dc.Layout = layout

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            dc.Type,
			DescriptorCount: maxSets,
		}},
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.device(), &poolInfo, context.Allocator, &pool); res != vk.Success {
		dc.Destroy(context)
		return nil, vkError("vkCreateDescriptorPool", res)
	}
	dc.Pool = pool

	core.LogDebug("descriptor class %s created with %d sets", class, maxSets)
	return dc, nil
}

/**
 * @brief Allocates one set. Running past MaxSets reports
 * core.ErrDescriptorPoolExhausted without calling the driver.
 */
func (dc *VulkanDescriptorClass) Allocate(context *VulkanContext) (vk.DescriptorSet, error) {
	if dc.Allocated >= dc.MaxSets {
		return vk.NullDescriptorSet, fmt.Errorf("%s pool of %d sets: %w", dc.Class, dc.MaxSets, core.ErrDescriptorPoolExhausted)
	}
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     dc.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{dc.Layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.device(), &allocateInfo, &sets[0]); res != vk.Success {
		return vk.NullDescriptorSet, vkError("vkAllocateDescriptorSets", res)
	}
	dc.Allocated++
	return sets[0], nil
}

func writeBufferDescriptor(context *VulkanContext, set vk.DescriptorSet, buffer vk.Buffer, size uint64) {
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer,
			Offset: 0,
			Range:  vk.DeviceSize(size),
		}},
	}
	vk.UpdateDescriptorSets(context.device(), 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

func writeImageDescriptor(context *VulkanContext, set vk.DescriptorSet, view vk.ImageView, sampler vk.Sampler) {
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     sampler,
			ImageView:   view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}
	vk.UpdateDescriptorSets(context.device(), 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// Destroy releases the pool, which frees every set allocated from it.
func (dc *VulkanDescriptorClass) Destroy(context *VulkanContext) {
	if dc.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.device(), dc.Pool, context.Allocator)
		dc.Pool = vk.NullDescriptorPool
	}
	if dc.Layout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.device(), dc.Layout, context.Allocator)
		dc.Layout = vk.NullDescriptorSetLayout
	}
	dc.Allocated = 0
}
