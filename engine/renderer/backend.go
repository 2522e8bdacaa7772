package renderer

import (
	"image"

	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

// Window is the platform side of the presentation surface.
type Window interface {
	FramebufferExtent() metadata.Extent
	WasResized() bool
	ResetResized()
}

// CommandBuffer records the commands of one frame slot.
type CommandBuffer interface {
	Begin() error
	End() error
	BeginRenderPass(framebuffer metadata.Framebuffer, extent metadata.Extent, clear metadata.ClearValues)
	EndRenderPass()
	SetViewport(viewport metadata.Viewport)
	SetScissor(scissor metadata.Rect2D)
	BindPipeline(pipeline metadata.Pipeline)
	// BindDescriptorSets binds sets to consecutive set indices starting at firstSet.
	BindDescriptorSets(pipeline metadata.Pipeline, firstSet uint32, sets ...metadata.DescriptorSet)
	PushConstants(pipeline metadata.Pipeline, data []byte)
	BindVertexBuffers(firstBinding uint32, buffers ...metadata.Buffer)
	BindIndexBuffer(buffer metadata.Buffer)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
}

// Surface is a swapchain sized to one drawable extent. It is rebuilt on
// resize, the resources bound by frames are not tied to it.
type Surface interface {
	Extent() metadata.Extent
	ImageFormat() metadata.ImageFormat
	ImageCount() uint32
	// AcquireNextImage blocks on the slot's fence before acquiring.
	AcquireNextImage(frameIndex int) (uint32, metadata.SurfaceStatus, error)
	SubmitCommandBuffers(cmd CommandBuffer, frameIndex int, imageIndex uint32) (metadata.SurfaceStatus, error)
	Framebuffer(imageIndex uint32) metadata.Framebuffer
	Destroy()
}

// ResourceAllocator creates buffers and descriptor sets. Buffers are host
// visible and coherent, a write is visible to the next submission.
type ResourceAllocator interface {
	CreateBuffer(usage metadata.BufferUsage, size uint64) (metadata.Buffer, error)
	WriteBuffer(buffer metadata.Buffer, offset uint64, data []byte) error
	DestroyBuffer(buffer metadata.Buffer)
	// AllocateBufferSet allocates a set of class and points binding 0 at buffer.
	AllocateBufferSet(class metadata.BindingClass, buffer metadata.Buffer, size uint64) (metadata.DescriptorSet, error)
	// AllocateTextureSet allocates a texture class set sampling texture.
	AllocateTextureSet(texture metadata.Texture) (metadata.DescriptorSet, error)
}

type TextureUploader interface {
	CreateTexture(name string, img *image.RGBA, srgb bool) (metadata.Texture, error)
	DestroyTexture(texture metadata.Texture)
}

// Device is everything the frame pipeline needs from the graphics backend.
type Device interface {
	ResourceAllocator
	TextureUploader
	// CreateSurface builds a surface for extent and retires previous.
	CreateSurface(extent metadata.Extent, previous Surface) (Surface, error)
	CommandBuffer(frameIndex int) CommandBuffer
	CreatePipeline(config metadata.PipelineConfig) (metadata.Pipeline, error)
	WaitIdle() error
}
