package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

var _ renderer.Surface = (*VulkanSwapchain)(nil)

/**
 * @brief A swapchain with its views, one depth attachment and one
 * framebuffer per image.
 */
type VulkanSwapchain struct {
	Handle vk.Swapchain
	Images []vk.Image
	Views  []vk.ImageView

	surfaceFormat vk.SurfaceFormat
	extent        vk.Extent2D
	imageCount    uint32

	DepthAttachment *VulkanImage

	// framebuffers used for on-screen rendering.
	Framebuffers []metadata.Framebuffer

	// Holds pointers to fences which exist and are owned by the renderer.
	imagesInFlight []*VulkanFence

	renderpass     *VulkanRenderpass
	ownsRenderpass bool
	owner          *VulkanRenderer
	destroyed      bool
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

/**
 * @brief Picks the surface format. A format the render pass already uses
 * wins, then B8G8R8A8 UNORM with sRGB non-linear colour space, then the
 * first one offered.
 */
func chooseSurfaceFormat(formats []vk.SurfaceFormat, current vk.Format) vk.SurfaceFormat {
	if current != vk.FormatUndefined {
		for _, f := range formats {
			if f.Format == current {
				return f
			}
		}
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	// FIFO is the only mode every implementation supports.
	if vsync {
		return vk.PresentModeFifo
	}
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

func chooseExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	min := capabilities.MinImageExtent
	max := capabilities.MaxImageExtent
	return vk.Extent2D{
		Width:  clampU32(width, min.Width, max.Width),
		Height: clampU32(height, min.Height, max.Height),
	}
}

func chooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func createSwapchain(owner *VulkanRenderer, width, height uint32, old *VulkanSwapchain) (*VulkanSwapchain, error) {
	context := owner.context
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 {
		return nil, fmt.Errorf("surface reports no formats")
	}
	context.Device.SwapchainSupport = support

	current := vk.FormatUndefined
	if context.MainRenderpass != nil {
		current = context.MainRenderpass.ColorFormat
	}

	swapchain := &VulkanSwapchain{
		surfaceFormat: chooseSurfaceFormat(support.Formats, current),
		extent:        chooseExtent(support.Capabilities, width, height),
		owner:         owner,
	}
	presentMode := choosePresentMode(support.PresentModes, owner.config.VSync)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    chooseImageCount(support.Capabilities),
		ImageFormat:      swapchain.surfaceFormat.Format,
		ImageColorSpace:  swapchain.surfaceFormat.ColorSpace,
		ImageExtent:      swapchain.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if old != nil {
		swapchainCreateInfo.OldSwapchain = old.Handle
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.device(), &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		return nil, vkError("vkCreateSwapchainKHR", res)
	}
	swapchain.Handle = swapchainHandle

	if err := swapchain.createImages(); err != nil {
		swapchain.Destroy()
		return nil, err
	}

	core.LogInfo("Swapchain created %dx%d, %d images, present mode %d.",
		swapchain.extent.Width, swapchain.extent.Height, swapchain.imageCount, presentMode)
	return swapchain, nil
}

func (vs *VulkanSwapchain) createImages() error {
	context := vs.owner.context

	if res := vk.GetSwapchainImages(context.device(), vs.Handle, &vs.imageCount, nil); res != vk.Success {
		return vkError("vkGetSwapchainImagesKHR", res)
	}
	vs.Images = make([]vk.Image, vs.imageCount)
	if res := vk.GetSwapchainImages(context.device(), vs.Handle, &vs.imageCount, vs.Images); res != vk.Success {
		return vkError("vkGetSwapchainImagesKHR", res)
	}
	vs.imagesInFlight = make([]*VulkanFence, vs.imageCount)

	// Views
	vs.Views = make([]vk.ImageView, vs.imageCount)
	for i := range vs.Images {
		view, err := createImageView(context, vs.Images[i], vs.surfaceFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		vs.Views[i] = view
	}

	// Create depth image and its view.
	depthAttachment, err := ImageCreate(
		context,
		vs.extent.Width,
		vs.extent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return err
	}
	vs.DepthAttachment = depthAttachment

	// The shared pass is created with the first surface. A surface whose
	// format differs gets a pass of its own so the framebuffers stay valid.
	switch {
	case context.MainRenderpass == nil:
		rp, err := RenderpassCreate(context, vs.surfaceFormat.Format, context.Device.DepthFormat)
		if err != nil {
			return err
		}
		context.MainRenderpass = rp
		vs.renderpass = rp
	case context.MainRenderpass.ColorFormat != vs.surfaceFormat.Format:
		rp, err := RenderpassCreate(context, vs.surfaceFormat.Format, context.Device.DepthFormat)
		if err != nil {
			return err
		}
		vs.renderpass = rp
		vs.ownsRenderpass = true
	default:
		vs.renderpass = context.MainRenderpass
	}

	vs.Framebuffers = make([]metadata.Framebuffer, 0, vs.imageCount)
	for i := range vs.Views {
		fb, err := FramebufferCreate(context, vs.renderpass, vs.extent.Width, vs.extent.Height, []vk.ImageView{vs.Views[i], depthAttachment.View})
		if err != nil {
			return err
		}
		vs.Framebuffers = append(vs.Framebuffers, vs.owner.framebuffers.add(fb))
	}
	return nil
}

func (vs *VulkanSwapchain) Extent() metadata.Extent {
	return metadata.Extent{Width: vs.extent.Width, Height: vs.extent.Height}
}

func (vs *VulkanSwapchain) ImageFormat() metadata.ImageFormat {
	return metadata.ImageFormat{
		Format:     uint32(vs.surfaceFormat.Format),
		ColorSpace: uint32(vs.surfaceFormat.ColorSpace),
	}
}

func (vs *VulkanSwapchain) ImageCount() uint32 {
	return vs.imageCount
}

func (vs *VulkanSwapchain) Framebuffer(imageIndex uint32) metadata.Framebuffer {
	if int(imageIndex) >= len(vs.Framebuffers) {
		return 0
	}
	return vs.Framebuffers[imageIndex]
}

/**
 * @brief Waits for the slot's fence, then acquires the next image. The
 * slot's image available semaphore is signaled when the image is ready.
 */
func (vs *VulkanSwapchain) AcquireNextImage(frameIndex int) (uint32, metadata.SurfaceStatus, error) {
	sync, err := vs.owner.frameSync(frameIndex)
	if err != nil {
		return 0, metadata.SurfaceOptimal, err
	}
	if err := sync.inFlight.FenceWait(vs.owner.context, math.MaxUint64); err != nil {
		return 0, metadata.SurfaceOptimal, err
	}

	var imageIndex uint32
	result := vk.AcquireNextImage(vs.owner.context.device(), vs.Handle, math.MaxUint64, sync.imageAvailable, vk.NullFence, &imageIndex)
	switch result {
	case vk.Success:
		return imageIndex, metadata.SurfaceOptimal, nil
	case vk.Suboptimal:
		return imageIndex, metadata.SurfaceSuboptimal, nil
	case vk.ErrorOutOfDate:
		return 0, metadata.SurfaceOutOfDate, nil
	}
	return 0, metadata.SurfaceOptimal, vkError("vkAcquireNextImageKHR", result)
}

/**
 * @brief Submits cmd for the slot and presents imageIndex once it completes.
 */
func (vs *VulkanSwapchain) SubmitCommandBuffers(cmd renderer.CommandBuffer, frameIndex int, imageIndex uint32) (metadata.SurfaceStatus, error) {
	commandBuffer, ok := cmd.(*VulkanCommandBuffer)
	if !ok {
		return metadata.SurfaceOptimal, fmt.Errorf("cannot submit a %T", cmd)
	}
	if int(imageIndex) >= len(vs.imagesInFlight) {
		return metadata.SurfaceOptimal, fmt.Errorf("image index %d out of range of %d images", imageIndex, vs.imageCount)
	}
	sync, err := vs.owner.frameSync(frameIndex)
	if err != nil {
		return metadata.SurfaceOptimal, err
	}
	context := vs.owner.context

	// Make sure the previous frame is not using this image (i.e. its fence is being waited on)
	if previous := vs.imagesInFlight[imageIndex]; previous != nil && previous != sync.inFlight {
		if err := previous.FenceWait(context, math.MaxUint64); err != nil {
			return metadata.SurfaceOptimal, err
		}
	}
	// Mark the image fence as in-use by this frame.
	vs.imagesInFlight[imageIndex] = sync.inFlight

	if err := sync.inFlight.FenceReset(context); err != nil {
		return metadata.SurfaceOptimal, err
	}

	// VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT prevents subsequent colour attachment
	// writes from executing until the semaphore signals.
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{sync.imageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sync.queueComplete},
	}

	device := context.Device
	if err := context.locks.SafeQueueCall(uint32(device.GraphicsQueueIndex), func() error {
		return vkError("vkQueueSubmit", vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, sync.inFlight.Handle))
	}); err != nil {
		return metadata.SurfaceOptimal, err
	}
	commandBuffer.UpdateSubmitted()

	// Give the image back to the swapchain.
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.queueComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	var result vk.Result
	_ = context.locks.SafeQueueCall(uint32(device.PresentQueueIndex), func() error {
		result = vk.QueuePresent(device.PresentQueue, &presentInfo)
		return nil
	})
	switch result {
	case vk.Success:
		return metadata.SurfaceOptimal, nil
	case vk.Suboptimal:
		return metadata.SurfaceSuboptimal, nil
	case vk.ErrorOutOfDate:
		return metadata.SurfaceOutOfDate, nil
	}
	return metadata.SurfaceOptimal, vkError("vkQueuePresentKHR", result)
}

/**
 * @brief Destroys the framebuffers, the depth attachment, the views and the
 * swapchain. The images are owned by the swapchain. The device must be idle.
 */
func (vs *VulkanSwapchain) Destroy() {
	if vs.destroyed {
		return
	}
	vs.destroyed = true
	context := vs.owner.context

	for _, handle := range vs.Framebuffers {
		if fb, ok := vs.owner.framebuffers.remove(handle); ok {
			fb.Destroy(context)
		}
	}
	vs.Framebuffers = nil

	if vs.DepthAttachment != nil {
		vs.DepthAttachment.Destroy(context)
		vs.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for _, view := range vs.Views {
		if view != vk.NullImageView {
			vk.DestroyImageView(context.device(), view, context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil
	vs.imagesInFlight = nil

	if vs.ownsRenderpass {
		vs.renderpass.RenderpassDestroy(context)
	}
	vs.renderpass = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.device(), vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
