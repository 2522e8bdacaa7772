package engine

import (
	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

type materialReload struct {
	target materialTarget
	params metadata.MaterialParams
	// pending has bit i set while frame slot i still holds the old values.
	pending uint32
}

// materialReloads spreads a parameter change over the frame slots. Each slot
// is written only while it is the one being recorded.
type materialReloads struct {
	entries []*materialReload
	all     uint32
}

func newMaterialReloads(framesInFlight int) *materialReloads {
	return &materialReloads{all: uint32(1)<<uint(framesInFlight) - 1}
}

// Queue replaces any pending change for the same target.
func (r *materialReloads) Queue(target materialTarget, params metadata.MaterialParams) {
	for _, entry := range r.entries {
		if entry.target == target {
			entry.params = params
			entry.pending = r.all
			return
		}
	}
	r.entries = append(r.entries, &materialReload{target: target, params: params, pending: r.all})
}

// Apply writes every change still pending for slot and drops the ones that
// reached all slots. A failed write drops the entry.
func (r *materialReloads) Apply(slot int, write func(target materialTarget, slot int, params metadata.MaterialParams) error) {
	bit := uint32(1) << uint(slot)
	kept := r.entries[:0]
	for _, entry := range r.entries {
		if entry.pending&bit != 0 {
			if err := write(entry.target, slot, entry.params); err != nil {
				core.LogWarn("material reload of object %d submesh %d: %s", entry.target.object, entry.target.submesh, err)
				continue
			}
			entry.pending &^= bit
		}
		if entry.pending != 0 {
			kept = append(kept, entry)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
}

func (r *materialReloads) Len() int {
	return len(r.entries)
}

func (e *Engine) writeMaterialSlot(target materialTarget, slot int, params metadata.MaterialParams) error {
	ms := e.systemManager.MaterialSystem
	if target.submesh == metadata.WholeObject {
		return ms.UpdateMaterialParams(target.object, slot, params)
	}
	return ms.UpdateSubmeshMaterialParams(target.object, target.submesh, slot, params)
}

// drainAssetEvents handles the watcher output without blocking.
func (e *Engine) drainAssetEvents() {
	if !e.watching {
		return
	}
	manifestPath := e.assetManager.Path(e.config.Scene.Manifest)
	for {
		select {
		case path, ok := <-e.assetManager.Events():
			if !ok {
				e.watching = false
				return
			}
			if path == manifestPath {
				e.reloadMaterials()
			}
		case err, ok := <-e.assetManager.Errors():
			if !ok {
				e.watching = false
				return
			}
			core.LogWarn("asset watcher: %s", err)
		default:
			return
		}
	}
}

// reloadMaterials re-reads the manifest and queues the material parameters
// that changed. Everything else in the manifest needs a restart.
func (e *Engine) reloadMaterials() {
	manifest, err := e.assetManager.LoadScene(e.config.Scene.Manifest)
	if err != nil {
		core.LogWarn("scene reload ignored: %s", err)
		return
	}
	queued := e.queueMaterialChanges(manifest)
	if queued > 0 {
		core.LogInfo("Scene '%s' reloaded, %d material changes queued.", e.config.Scene.Manifest, queued)
	}
}

func (e *Engine) queueMaterialChanges(manifest *loaders.SceneManifest) int {
	queued := 0
	for _, oc := range manifest.Objects {
		obj, ok := e.store.FindByName(oc.Name)
		if !ok {
			core.LogWarn("reload: object '%s' is new, restart to add it", oc.Name)
			continue
		}
		for i := range oc.Materials {
			mc := &oc.Materials[i]
			target := materialTarget{object: obj.ID, submesh: mc.SubmeshIndex()}
			applied, ok := e.materials[target]
			if !ok {
				core.LogWarn("reload: object '%s' submesh %d has no material yet, restart to add it", oc.Name, target.submesh)
				continue
			}
			if mc.Texture != applied.texture {
				core.LogWarn("reload: texture of object '%s' submesh %d changed, restart to apply it", oc.Name, target.submesh)
			}
			params := mc.Params()
			if params == applied.params {
				continue
			}
			applied.params = params
			e.materials[target] = applied
			e.reloads.Queue(target, params)
			queued++
		}
	}
	return queued
}
