package engine

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/scene"
)

// retiredBuffer is destroyed once no frame in flight can still read it.
type retiredBuffer struct {
	buffer metadata.Buffer
	frame  uint64
}

// trackTransforms samples the helix at count evenly spaced times in
// [t0, t1]. Samples past the travel limit hold the final pose.
func trackTransforms(helix scene.HelixMotion, scale math.Vec3, t0, t1 float32, count uint32) []math.Mat4 {
	limit := helix.TravelLimit
	if limit <= 0 {
		limit = scene.DefaultTravelLimit
	}
	end := float32(-1)
	if helix.FeedRate > 0 {
		end = limit / helix.FeedRate
	}

	transforms := make([]math.Mat4, count)
	for i := range transforms {
		t := t0
		if count > 1 {
			t = t0 + (t1-t0)*float32(i)/float32(count-1)
		}
		if end >= 0 && t > end {
			t = end
		}
		pose := helix.EvaluateAtTime(t)
		pose.Scale = scale
		transforms[i] = pose.Mat4()
	}
	return transforms
}

/**
 * @brief Uploads count copies of the object's mesh along its helix between
 * t0 and t1 seconds. The batch is drawn from the next frame on. A count of
 * zero removes the batch.
 */
func (e *Engine) BuildTrackInstances(objectName string, t0, t1 float32, count uint32) error {
	return e.buildTrack(objectName+"_track", objectName, "", t0, t1, count)
}

func (e *Engine) buildTrack(name, objectName, meshName string, t0, t1 float32, count uint32) error {
	obj, ok := e.store.FindByName(objectName)
	if !ok {
		return fmt.Errorf("track object '%s': %w", objectName, core.ErrUnknownObject)
	}
	if obj.Motion.Helix.Pitch <= 0 {
		return fmt.Errorf("track object '%s' has no helix motion", objectName)
	}
	if t1 < t0 {
		return fmt.Errorf("track ends at %.3f before it starts at %.3f", t1, t0)
	}

	mesh := obj.Mesh
	if len(meshName) > 0 {
		if mesh, ok = e.systemManager.MeshRegistry.Lookup(meshName); !ok {
			return fmt.Errorf("track mesh '%s': %w", meshName, core.ErrMeshNotFound)
		}
	}

	if old, exists := e.tracks[name]; exists {
		e.retire(old.Instances)
		delete(e.tracks, name)
	}
	if count == 0 {
		return nil
	}

	data := metadata.EncodeInstances(trackTransforms(obj.Motion.Helix, obj.Transform.Scale, t0, t1, count))
	buffer, err := e.device.CreateBuffer(metadata.BufferUsageInstance, uint64(len(data)))
	if err != nil {
		return err
	}
	if err := e.device.WriteBuffer(buffer, 0, data); err != nil {
		e.device.DestroyBuffer(buffer)
		return err
	}

	e.tracks[name] = renderer.InstanceBatch{
		Name:      name,
		Mesh:      mesh,
		Instances: buffer,
		Count:     count,
		Material:  obj.ID,
	}
	core.LogDebug("Track '%s' built with %d instances of object '%s'.", name, count, objectName)
	return nil
}

// trackBatches returns the batches in name order.
func (e *Engine) trackBatches() []renderer.InstanceBatch {
	names := make([]string, 0, len(e.tracks))
	for name := range e.tracks {
		names = append(names, name)
	}
	slices.Sort(names)
	batches := make([]renderer.InstanceBatch, len(names))
	for i, name := range names {
		batches[i] = e.tracks[name]
	}
	return batches
}

func (e *Engine) retire(buffer metadata.Buffer) {
	if !buffer.IsValid() {
		return
	}
	e.retired = append(e.retired, retiredBuffer{
		buffer: buffer,
		frame:  e.frameCount + uint64(e.config.Renderer.FramesInFlight),
	})
}

// releaseRetired destroys the buffers whose last reader has completed. With
// force every retired buffer goes, the caller must have waited idle.
func (e *Engine) releaseRetired(force bool) {
	kept := e.retired[:0]
	for _, r := range e.retired {
		if force || e.frameCount >= r.frame {
			e.device.DestroyBuffer(r.buffer)
			continue
		}
		kept = append(kept, r)
	}
	e.retired = kept
}
