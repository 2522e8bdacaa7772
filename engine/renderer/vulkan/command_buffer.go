package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

var _ renderer.CommandBuffer = (*VulkanCommandBuffer)(nil)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

/**
 * @brief A primary command buffer. Draw commands take backend handles,
 * which are resolved against the renderer that owns the buffer.
 */
type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState

	owner *VulkanRenderer
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.device(), &allocateInfo, handles); res != vk.Success {
		return nil, vkError("vkAllocateCommandBuffers", res)
	}
	return &VulkanCommandBuffer{
		Handle: handles[0],
		State:  COMMAND_BUFFER_STATE_READY,
	}, nil
}

func (v *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	if v.Handle != nil {
		vk.FreeCommandBuffers(context.device(), pool, 1, []vk.CommandBuffer{v.Handle})
	}
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		return vkError("vkBeginCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

/**
 * @brief Resets the buffer and starts recording a new frame.
 */
func (v *VulkanCommandBuffer) Begin() error {
	if res := vk.ResetCommandBuffer(v.Handle, 0); res != vk.Success {
		return vkError("vkResetCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return v.begin(true, false, false)
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		return vkError("vkEndCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) BeginRenderPass(framebuffer metadata.Framebuffer, extent metadata.Extent, clear metadata.ClearValues) {
	fb, ok := v.owner.framebuffers.get(framebuffer)
	if !ok {
		core.LogError("begin render pass: unknown framebuffer %d", framebuffer)
		return
	}
	fb.Renderpass.RenderpassBegin(v, fb.Handle, vk.Extent2D{Width: extent.Width, Height: extent.Height}, clear.Color, clear.Depth, clear.Stencil)
}

func (v *VulkanCommandBuffer) EndRenderPass() {
	v.owner.context.MainRenderpass.RenderpassEnd(v)
}

func (v *VulkanCommandBuffer) SetViewport(viewport metadata.Viewport) {
	vk.CmdSetViewport(v.Handle, 0, 1, []vk.Viewport{{
		X:        viewport.X,
		Y:        viewport.Y,
		Width:    viewport.Width,
		Height:   viewport.Height,
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}})
}

func (v *VulkanCommandBuffer) SetScissor(scissor metadata.Rect2D) {
	vk.CmdSetScissor(v.Handle, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: scissor.X, Y: scissor.Y},
		Extent: vk.Extent2D{Width: scissor.Width, Height: scissor.Height},
	}})
}

func (v *VulkanCommandBuffer) BindPipeline(pipeline metadata.Pipeline) {
	p, ok := v.owner.pipelines.get(pipeline)
	if !ok {
		core.LogError("bind pipeline: unknown pipeline %d", pipeline)
		return
	}
	p.Bind(v, vk.PipelineBindPointGraphics)
}

func (v *VulkanCommandBuffer) BindDescriptorSets(pipeline metadata.Pipeline, firstSet uint32, sets ...metadata.DescriptorSet) {
	p, ok := v.owner.pipelines.get(pipeline)
	if !ok {
		core.LogError("bind descriptor sets: unknown pipeline %d", pipeline)
		return
	}
	handles := make([]vk.DescriptorSet, 0, len(sets))
	for _, s := range sets {
		set, ok := v.owner.sets.get(s)
		if !ok {
			core.LogError("bind descriptor sets: unknown set %d", s)
			return
		}
		handles = append(handles, set.Handle)
	}
	if len(handles) == 0 {
		return
	}
	vk.CmdBindDescriptorSets(v.Handle, vk.PipelineBindPointGraphics, p.PipelineLayout, firstSet, uint32(len(handles)), handles, 0, nil)
}

func (v *VulkanCommandBuffer) PushConstants(pipeline metadata.Pipeline, data []byte) {
	p, ok := v.owner.pipelines.get(pipeline)
	if !ok || len(data) == 0 {
		return
	}
	vk.CmdPushConstants(v.Handle, p.PipelineLayout, pushConstantStages, 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (v *VulkanCommandBuffer) BindVertexBuffers(firstBinding uint32, buffers ...metadata.Buffer) {
	handles := make([]vk.Buffer, 0, len(buffers))
	for _, b := range buffers {
		buffer, ok := v.owner.buffers.get(b)
		if !ok {
			core.LogError("bind vertex buffers: unknown buffer %d", b)
			return
		}
		handles = append(handles, buffer.Handle)
	}
	offsets := make([]vk.DeviceSize, len(handles))
	vk.CmdBindVertexBuffers(v.Handle, firstBinding, uint32(len(handles)), handles, offsets)
}

func (v *VulkanCommandBuffer) BindIndexBuffer(buffer metadata.Buffer) {
	b, ok := v.owner.buffers.get(buffer)
	if !ok {
		core.LogError("bind index buffer: unknown buffer %d", buffer)
		return
	}
	vk.CmdBindIndexBuffer(v.Handle, b.Handle, 0, vk.IndexTypeUint32)
}

func (v *VulkanCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(v.Handle, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (v *VulkanCommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(v.Handle, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

/**
 * Allocates and begins recording a one time command buffer.
 */
func AllocateAndBeginSingleUse(context *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	cb, err := NewVulkanCommandBuffer(context, pool, true)
	if err != nil {
		return nil, err
	}
	if err := cb.begin(true, false, false); err != nil {
		cb.Free(context, pool)
		return nil, err
	}
	return cb, nil
}

/**
 * Ends recording, submits to and waits for queue operation and frees the provided command buffer.
 */
func (v *VulkanCommandBuffer) EndSingleUse(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, queueFamily uint32) error {
	defer v.Free(context, pool)

	if err := v.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.Handle},
	}
	return context.locks.SafeQueueCall(queueFamily, func() error {
		if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			return vkError("vkQueueSubmit", res)
		}
		// Wait for it to finish
		if res := vk.QueueWaitIdle(queue); res != vk.Success {
			return vkError("vkQueueWaitIdle", res)
		}
		return nil
	})
}
