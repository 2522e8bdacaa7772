package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

func TestVertexInputInstanced(t *testing.T) {
	bindings := append(metadata.VertexBindingDescriptions(), metadata.InstanceBindingDescription())
	attributes := append(metadata.VertexAttributeDescriptions(), metadata.InstanceAttributeDescriptions(4)...)

	vkBindings, vkAttributes := VertexInput(bindings, attributes)
	require.Len(t, vkBindings, 2)
	assert.Equal(t, uint32(math.Vertex3DSize), vkBindings[0].Stride)
	assert.Equal(t, vk.VertexInputRateVertex, vkBindings[0].InputRate)
	assert.Equal(t, metadata.InstanceStride, vkBindings[1].Stride)
	assert.Equal(t, vk.VertexInputRateInstance, vkBindings[1].InputRate)

	require.Len(t, vkAttributes, 8)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, vkAttributes[0].Format)
	assert.Equal(t, vk.FormatR32g32Sfloat, vkAttributes[3].Format)
	for i, a := range vkAttributes[4:] {
		assert.Equal(t, uint32(4+i), a.Location)
		assert.Equal(t, metadata.InstanceVertexBinding, a.Binding)
		assert.Equal(t, vk.FormatR32g32b32a32Sfloat, a.Format)
		assert.Equal(t, uint32(i*16), a.Offset)
	}
}

func TestCullModeFlags(t *testing.T) {
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), cullModeFlags(metadata.FaceCullModeNone))
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), cullModeFlags(metadata.FaceCullModeBack))
	assert.Equal(t, vk.CullModeFlags(vk.CullModeFrontBit), cullModeFlags(metadata.FaceCullModeFront))
}

func TestBufferUsageFlags(t *testing.T) {
	flags, err := bufferUsageFlags(metadata.BufferUsageInstance)
	require.NoError(t, err)
	assert.Equal(t, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), flags)

	flags, err = bufferUsageFlags(metadata.BufferUsageUniform)
	require.NoError(t, err)
	assert.Equal(t, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), flags)

	_, err = bufferUsageFlags(metadata.BufferUsage(42))
	assert.Error(t, err)
}

func TestDescriptorTypes(t *testing.T) {
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, descriptorTypeFor(metadata.BindingClassGlobal))
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, descriptorTypeFor(metadata.BindingClassTexture))
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, descriptorTypeFor(metadata.BindingClassMaterial))
}
