// Package rendertest provides in-memory implementations of the renderer
// backend interfaces that record everything they are asked to do.
package rendertest

import (
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

type CommandKind int

const (
	CmdBegin CommandKind = iota
	CmdEnd
	CmdBeginRenderPass
	CmdEndRenderPass
	CmdSetViewport
	CmdSetScissor
	CmdBindPipeline
	CmdBindDescriptorSets
	CmdPushConstants
	CmdBindVertexBuffers
	CmdBindIndexBuffer
	CmdDraw
	CmdDrawIndexed
)

// Command is one recorded call. Only the fields of its kind are set.
type Command struct {
	Kind         CommandKind
	Pipeline     metadata.Pipeline
	FirstSet     uint32
	Sets         []metadata.DescriptorSet
	Data         []byte
	FirstBinding uint32
	Buffers      []metadata.Buffer
	Framebuffer  metadata.Framebuffer
	Extent       metadata.Extent
	Viewport     metadata.Viewport
	Scissor      metadata.Rect2D

	VertexCount   uint32
	IndexCount    uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// CommandBuffer records commands until Begin is called again.
type CommandBuffer struct {
	Slot      int
	Commands  []Command
	Recording bool
	Begins    int
	Ends      int
}

func (c *CommandBuffer) Begin() error {
	c.Commands = c.Commands[:0]
	c.Recording = true
	c.Begins++
	c.record(Command{Kind: CmdBegin})
	return nil
}

func (c *CommandBuffer) End() error {
	c.record(Command{Kind: CmdEnd})
	c.Recording = false
	c.Ends++
	return nil
}

func (c *CommandBuffer) BeginRenderPass(framebuffer metadata.Framebuffer, extent metadata.Extent, clear metadata.ClearValues) {
	c.record(Command{Kind: CmdBeginRenderPass, Framebuffer: framebuffer, Extent: extent})
}

func (c *CommandBuffer) EndRenderPass() {
	c.record(Command{Kind: CmdEndRenderPass})
}

func (c *CommandBuffer) SetViewport(viewport metadata.Viewport) {
	c.record(Command{Kind: CmdSetViewport, Viewport: viewport})
}

func (c *CommandBuffer) SetScissor(scissor metadata.Rect2D) {
	c.record(Command{Kind: CmdSetScissor, Scissor: scissor})
}

func (c *CommandBuffer) BindPipeline(pipeline metadata.Pipeline) {
	c.record(Command{Kind: CmdBindPipeline, Pipeline: pipeline})
}

func (c *CommandBuffer) BindDescriptorSets(pipeline metadata.Pipeline, firstSet uint32, sets ...metadata.DescriptorSet) {
	c.record(Command{
		Kind:     CmdBindDescriptorSets,
		Pipeline: pipeline,
		FirstSet: firstSet,
		Sets:     append([]metadata.DescriptorSet(nil), sets...),
	})
}

func (c *CommandBuffer) PushConstants(pipeline metadata.Pipeline, data []byte) {
	c.record(Command{Kind: CmdPushConstants, Pipeline: pipeline, Data: append([]byte(nil), data...)})
}

func (c *CommandBuffer) BindVertexBuffers(firstBinding uint32, buffers ...metadata.Buffer) {
	c.record(Command{
		Kind:         CmdBindVertexBuffers,
		FirstBinding: firstBinding,
		Buffers:      append([]metadata.Buffer(nil), buffers...),
	})
}

func (c *CommandBuffer) BindIndexBuffer(buffer metadata.Buffer) {
	c.record(Command{Kind: CmdBindIndexBuffer, Buffers: []metadata.Buffer{buffer}})
}

func (c *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.record(Command{
		Kind:          CmdDraw,
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

func (c *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	c.record(Command{
		Kind:          CmdDrawIndexed,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		VertexOffset:  vertexOffset,
		FirstInstance: firstInstance,
	})
}

func (c *CommandBuffer) record(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// Reset drops the recorded commands without counting a Begin.
func (c *CommandBuffer) Reset() {
	c.Commands = nil
}

// Of returns the recorded commands of kind, in order.
func (c *CommandBuffer) Of(kind CommandKind) []Command {
	var out []Command
	for _, cmd := range c.Commands {
		if cmd.Kind == kind {
			out = append(out, cmd)
		}
	}
	return out
}

// Draws returns the Draw and DrawIndexed commands.
func (c *CommandBuffer) Draws() []Command {
	var out []Command
	for _, cmd := range c.Commands {
		if cmd.Kind == CmdDraw || cmd.Kind == CmdDrawIndexed {
			out = append(out, cmd)
		}
	}
	return out
}

// DrawCall is a draw together with the state bound when it was issued.
type DrawCall struct {
	Command
	Pipeline      metadata.Pipeline
	Sets          map[uint32]metadata.DescriptorSet
	PushConstants []byte
	VertexBuffers map[uint32]metadata.Buffer
	IndexBuffer   metadata.Buffer
}

// DrawCalls replays the stream and snapshots the bound state at every draw.
func (c *CommandBuffer) DrawCalls() []DrawCall {
	var (
		out      []DrawCall
		pipeline metadata.Pipeline
		push     []byte
		index    metadata.Buffer
		sets     = map[uint32]metadata.DescriptorSet{}
		vbufs    = map[uint32]metadata.Buffer{}
	)
	for _, cmd := range c.Commands {
		switch cmd.Kind {
		case CmdBindPipeline:
			pipeline = cmd.Pipeline
		case CmdBindDescriptorSets:
			for i, s := range cmd.Sets {
				sets[cmd.FirstSet+uint32(i)] = s
			}
		case CmdPushConstants:
			push = cmd.Data
		case CmdBindVertexBuffers:
			for i, b := range cmd.Buffers {
				vbufs[cmd.FirstBinding+uint32(i)] = b
			}
		case CmdBindIndexBuffer:
			index = cmd.Buffers[0]
		case CmdDraw, CmdDrawIndexed:
			dc := DrawCall{
				Command:       cmd,
				Pipeline:      pipeline,
				Sets:          make(map[uint32]metadata.DescriptorSet, len(sets)),
				PushConstants: push,
				VertexBuffers: make(map[uint32]metadata.Buffer, len(vbufs)),
				IndexBuffer:   index,
			}
			for k, v := range sets {
				dc.Sets[k] = v
			}
			for k, v := range vbufs {
				dc.VertexBuffers[k] = v
			}
			out = append(out, dc)
		}
	}
	return out
}
