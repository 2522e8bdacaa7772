package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

/**
 * @brief A host visible, coherent buffer that stays mapped for its lifetime.
 */
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	Usage  vk.BufferUsageFlags

	mapped []byte
}

func bufferUsageFlags(usage metadata.BufferUsage) (vk.BufferUsageFlags, error) {
	switch usage {
	case metadata.BufferUsageUniform:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), nil
	case metadata.BufferUsageVertex, metadata.BufferUsageInstance:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), nil
	case metadata.BufferUsageIndex:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), nil
	}
	return 0, fmt.Errorf("unknown buffer usage %d", usage)
}

func NewVulkanBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("cannot create an empty buffer")
	}
	buffer := &VulkanBuffer{Size: size, Usage: usage}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(context.device(), &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vkError("vkCreateBuffer", res)
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.device(), handle, &requirements)
	requirements.Deref()

	flags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, flags)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.device(), &allocateInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, vkError("vkAllocateMemory", res)
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.device(), handle, memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, vkError("vkBindBufferMemory", res)
	}

	var data unsafe.Pointer
	if res := vk.MapMemory(context.device(), memory, 0, vk.DeviceSize(size), 0, &data); res != vk.Success {
		buffer.Destroy(context)
		return nil, vkError("vkMapMemory", res)
	}
	buffer.mapped = unsafe.Slice((*byte)(data), size)
	return buffer, nil
}

func (b *VulkanBuffer) Write(offset uint64, data []byte) error {
	if offset+uint64(len(data)) > b.Size {
		return fmt.Errorf("write of %d bytes at %d overflows buffer of %d", len(data), offset, b.Size)
	}
	copy(b.mapped[offset:], data)
	return nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.mapped != nil {
		vk.UnmapMemory(context.device(), b.Memory)
		b.mapped = nil
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.device(), b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.device(), b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
}
