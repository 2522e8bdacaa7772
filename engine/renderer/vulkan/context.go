package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

/**
 * @brief The Vulkan objects shared by every resource the backend creates.
 */
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device *VulkanDevice

	// MainRenderpass matches the surface format. Pipelines are built
	// against it, so it survives surface recreation.
	MainRenderpass *VulkanRenderpass

	locks *VulkanLockPool
}

/**
 * @brief Finds a memory type allowed by typeFilter that has every bit of propertyFlags.
 */
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: filter %#x flags %#x", errNoMemoryType, typeFilter, uint32(propertyFlags))
}

func (vc *VulkanContext) device() vk.Device {
	return vc.Device.LogicalDevice
}
