package renderer

import (
	"slices"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

// MeshLookup resolves mesh handles held by scene objects.
type MeshLookup interface {
	Mesh(handle metadata.MeshHandle) (*metadata.Mesh, bool)
}

// MaterialResolver returns the texture and material parameter sets to bind
// for an object. Both calls are total: they fall back to placeholder sets.
type MaterialResolver interface {
	ResolveTexture(id scene.ObjectID, submesh int) metadata.DescriptorSet
	ResolveMaterialParams(id scene.ObjectID, frameSlot int, submesh int) metadata.DescriptorSet
}

// InstanceBatch draws Count copies of one mesh from a buffer of per-instance
// model matrices.
type InstanceBatch struct {
	Name      string
	Mesh      metadata.MeshHandle
	Instances metadata.Buffer
	Count     uint32
	// Material is the object whose whole-object material the batch uses.
	Material scene.ObjectID
}

type DrawStats struct {
	Objects   int
	DrawCalls int
	Instances int
}

// RenderComposer records the draw calls of the scene objects and of
// instanced batches.
type RenderComposer struct {
	pipelines metadata.Pipelines
	meshes    MeshLookup
	materials MaterialResolver

	order        []scene.ObjectID
	warnedMeshes map[metadata.MeshHandle]struct{}
}

func NewRenderComposer(pipelines metadata.Pipelines, meshes MeshLookup, materials MaterialResolver) *RenderComposer {
	return &RenderComposer{
		pipelines:    pipelines,
		meshes:       meshes,
		materials:    materials,
		warnedMeshes: make(map[metadata.MeshHandle]struct{}),
	}
}

// RenderObjects draws every object that has a mesh. Objects are visited in id
// order, submeshes in index order.
func (rc *RenderComposer) RenderObjects(frame *FrameInfo) DrawStats {
	var stats DrawStats
	cmd := frame.CommandBuffer
	pipeline := rc.pipelines.Mesh

	cmd.BindPipeline(pipeline)
	cmd.BindDescriptorSets(pipeline, uint32(metadata.BindingClassGlobal), frame.GlobalDescriptor)

	rc.order = rc.order[:0]
	frame.Objects.Each(func(obj *scene.SceneObject) {
		if obj.IsRenderable() {
			rc.order = append(rc.order, obj.ID)
		}
	})
	slices.Sort(rc.order)

	for _, id := range rc.order {
		obj, _ := frame.Objects.Find(id)
		mesh, ok := rc.lookupMesh(obj)
		if !ok {
			continue
		}
		stats.Objects++
		stats.DrawCalls += rc.drawObject(frame, obj, mesh)
	}
	return stats
}

func (rc *RenderComposer) drawObject(frame *FrameInfo, obj *scene.SceneObject, mesh *metadata.Mesh) int {
	cmd := frame.CommandBuffer
	pipeline := rc.pipelines.Mesh

	cmd.BindVertexBuffers(metadata.MeshVertexBinding, mesh.VertexBuffer)
	if mesh.HasIndexBuffer() {
		cmd.BindIndexBuffer(mesh.IndexBuffer)
	}

	push := metadata.SimplePushConstants{
		ModelMatrix:  obj.Transform.Mat4(),
		NormalMatrix: obj.Transform.NormalMatrix(),
	}.Bytes()

	if mesh.SubmeshCount() == 0 {
		rc.bindMaterial(frame, pipeline, obj.ID, metadata.WholeObject)
		cmd.PushConstants(pipeline, push)
		if mesh.HasIndexBuffer() {
			cmd.DrawIndexed(mesh.IndexCount, 1, 0, 0, 0)
		} else {
			cmd.Draw(mesh.VertexCount, 1, 0, 0)
		}
		return 1
	}

	draws := 0
	for i, sub := range mesh.Submeshes {
		if sub.IndexCount == 0 {
			continue
		}
		rc.bindMaterial(frame, pipeline, obj.ID, i)
		cmd.PushConstants(pipeline, push)
		if mesh.HasIndexBuffer() {
			cmd.DrawIndexed(sub.IndexCount, 1, sub.FirstIndex, 0, 0)
		} else {
			cmd.Draw(sub.IndexCount, 1, sub.FirstIndex, 0)
		}
		draws++
	}
	return draws
}

// bindMaterial binds the texture set and the material set in one call so
// neither can be left stale from the previous draw.
func (rc *RenderComposer) bindMaterial(frame *FrameInfo, pipeline metadata.Pipeline, id scene.ObjectID, submesh int) {
	texture := rc.materials.ResolveTexture(id, submesh)
	params := rc.materials.ResolveMaterialParams(id, frame.FrameIndex, submesh)
	frame.CommandBuffer.BindDescriptorSets(pipeline, uint32(metadata.BindingClassTexture), texture, params)
}

// RenderInstances draws a batch with a single instanced draw.
func (rc *RenderComposer) RenderInstances(frame *FrameInfo, batch InstanceBatch) DrawStats {
	var stats DrawStats
	if batch.Count == 0 || !batch.Instances.IsValid() {
		return stats
	}
	mesh, ok := rc.meshes.Mesh(batch.Mesh)
	if !ok {
		rc.warnMissing(batch.Mesh, batch.Name)
		return stats
	}

	cmd := frame.CommandBuffer
	pipeline := rc.pipelines.Instanced
	cmd.BindPipeline(pipeline)
	cmd.BindDescriptorSets(pipeline, uint32(metadata.BindingClassGlobal), frame.GlobalDescriptor)
	rc.bindMaterial(frame, pipeline, batch.Material, metadata.WholeObject)

	cmd.BindVertexBuffers(metadata.MeshVertexBinding, mesh.VertexBuffer, batch.Instances)
	if mesh.HasIndexBuffer() {
		cmd.BindIndexBuffer(mesh.IndexBuffer)
		cmd.DrawIndexed(mesh.IndexCount, batch.Count, 0, 0, 0)
	} else {
		cmd.Draw(mesh.VertexCount, batch.Count, 0, 0)
	}

	stats.DrawCalls = 1
	stats.Instances = int(batch.Count)
	return stats
}

func (rc *RenderComposer) lookupMesh(obj *scene.SceneObject) (*metadata.Mesh, bool) {
	mesh, ok := rc.meshes.Mesh(obj.Mesh)
	if !ok {
		rc.warnMissing(obj.Mesh, obj.Name)
	}
	return mesh, ok
}

func (rc *RenderComposer) warnMissing(handle metadata.MeshHandle, owner string) {
	if _, seen := rc.warnedMeshes[handle]; seen {
		return
	}
	rc.warnedMeshes[handle] = struct{}{}
	core.LogWarn("'%s' references mesh %d which is not registered, skipping.", owner, handle)
}
