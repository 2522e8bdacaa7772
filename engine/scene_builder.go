package engine

import (
	"fmt"

	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/scene"
	"github.com/spaghettifunk/grindsim/engine/systems"
)

const (
	headlightName      = "headlight"
	defaultLightRadius = 0.1
)

// appliedMaterial is what the manifest assigned to one (object, submesh).
type appliedMaterial struct {
	params  metadata.MaterialParams
	texture string
}

type materialTarget struct {
	object  scene.ObjectID
	submesh int
}

func generateMesh(mc loaders.MeshConfig) metadata.MeshData {
	switch mc.Kind {
	case loaders.MeshKindWheel:
		wheel := systems.DefaultWheelConfig()
		if mc.Radius > 0 {
			wheel.Radius = mc.Radius
		}
		if mc.InnerRadius > 0 {
			wheel.InnerRadius = mc.InnerRadius
		}
		if mc.Width > 0 {
			wheel.Width = mc.Width
		}
		if mc.HubRadius > 0 {
			wheel.HubRadius = mc.HubRadius
		}
		if mc.HubWidth > 0 {
			wheel.HubWidth = mc.HubWidth
		}
		if mc.Segments > 0 {
			wheel.Segments = mc.Segments
		}
		return systems.GenerateWheel(wheel, mc.Name)
	case loaders.MeshKindPlane:
		segments := max(mc.Segments, 1)
		return systems.GeneratePlane(mc.Size[0], mc.Size[2], segments, segments, tiling(mc.Tiling[0]), tiling(mc.Tiling[1]), mc.Name)
	default:
		return systems.GenerateBox(mc.Size[0], mc.Size[1], mc.Size[2], tiling(mc.Tiling[0]), tiling(mc.Tiling[1]), mc.Name)
	}
}

func tiling(v float32) float32 {
	if v <= 0 {
		return 1
	}
	return v
}

/**
 * @brief Populates the store from manifest: meshes first, then objects with
 * their materials, then lights, the headlight and the instanced tracks.
 */
func (e *Engine) buildScene(manifest *loaders.SceneManifest) error {
	meshes := e.systemManager.MeshRegistry
	for _, mc := range manifest.Meshes {
		if _, exists := meshes.Lookup(mc.Name); exists {
			continue
		}
		if _, err := meshes.Register(generateMesh(mc)); err != nil {
			return fmt.Errorf("mesh '%s': %w", mc.Name, err)
		}
	}

	if err := e.preloadTextures(manifest); err != nil {
		return err
	}

	for i := range manifest.Objects {
		if err := e.buildObject(manifest, &manifest.Objects[i]); err != nil {
			return err
		}
	}

	for _, lc := range manifest.Lights {
		e.addLight(lc.Name, math.Vec3(lc.Position), math.Vec3(lc.Color), lc.Intensity, lc.Radius, lc.Orbit)
	}
	if manifest.Headlight.Enabled {
		h := manifest.Headlight
		e.headlight = e.addLight(headlightName, e.orbit.Position(), math.Vec3(h.Color), h.Intensity, h.Radius, false)
	}

	for _, tc := range manifest.Tracks {
		if err := e.buildTrack(tc.Name, tc.Object, tc.Mesh, tc.T0, tc.T1, tc.Count); err != nil {
			return fmt.Errorf("track '%s': %w", tc.Name, err)
		}
	}

	e.manifest = manifest
	core.LogInfo("Scene built: %d objects, %d meshes, %d textures, %d tracks.",
		e.store.Len(), meshes.Len(), e.systemManager.TextureSystem.Len(), len(e.tracks))
	return nil
}

// preloadTextures decodes every manifest texture in parallel before the
// objects reference them.
func (e *Engine) preloadTextures(manifest *loaders.SceneManifest) error {
	var srgb, linear []string
	for _, oc := range manifest.Objects {
		for _, mc := range oc.Materials {
			if len(mc.Texture) == 0 {
				continue
			}
			if mc.TextureSRGB() {
				srgb = append(srgb, manifest.TexturePath(mc.Texture))
			} else {
				linear = append(linear, manifest.TexturePath(mc.Texture))
			}
		}
	}
	if err := e.systemManager.TextureSystem.Preload(srgb, true); err != nil {
		return err
	}
	return e.systemManager.TextureSystem.Preload(linear, false)
}

func (e *Engine) buildObject(manifest *loaders.SceneManifest, oc *loaders.ObjectConfig) error {
	handle, ok := e.systemManager.MeshRegistry.Lookup(oc.Mesh)
	if !ok {
		return fmt.Errorf("object '%s' mesh '%s': %w", oc.Name, oc.Mesh, core.ErrMeshNotFound)
	}
	mesh, _ := e.systemManager.MeshRegistry.Mesh(handle)

	obj := e.store.NewObject(oc.Name)
	obj.Mesh = handle
	obj.Transform.Translation = math.Vec3(oc.Translation)
	obj.Transform.Rotation = math.Vec3(oc.Rotation)
	if oc.Scale != nil {
		obj.Transform.Scale = math.Vec3(*oc.Scale)
	}

	if oc.Motion != nil {
		helix := scene.NewHelixMotion(oc.Motion.FeedRate, oc.Motion.Pitch)
		if oc.Motion.TravelLimit > 0 {
			helix.TravelLimit = oc.Motion.TravelLimit
		}
		helix.Origin = obj.Transform.Translation
		obj.Motion.Helix = helix
		if oc.Motion.Enabled {
			obj.Motion.Kind = scene.MotionAnimated
		}
	}

	for i := range oc.Materials {
		if err := e.assignMaterial(manifest, obj, mesh, &oc.Materials[i]); err != nil {
			return fmt.Errorf("object '%s': %w", oc.Name, err)
		}
	}
	return nil
}

func (e *Engine) assignMaterial(manifest *loaders.SceneManifest, obj *scene.SceneObject, mesh *metadata.Mesh, mc *loaders.MaterialConfig) error {
	ms := e.systemManager.MaterialSystem
	submesh := mc.SubmeshIndex()
	params := mc.Params()

	if submesh == metadata.WholeObject {
		if err := ms.AssignWholeObjectMaterial(obj.ID, params); err != nil {
			return err
		}
		if len(mc.Texture) > 0 {
			if err := ms.AssignWholeObjectTexture(obj.ID, manifest.TexturePath(mc.Texture), mc.TextureSRGB()); err != nil {
				return err
			}
		}
	} else {
		if submesh >= mesh.SubmeshCount() {
			return fmt.Errorf("submesh %d of %d: %w", submesh, mesh.SubmeshCount(), core.ErrInvalidSubmesh)
		}
		if err := ms.AssignSubmeshMaterial(obj.ID, submesh, params); err != nil {
			return err
		}
		if len(mc.Texture) > 0 {
			if err := ms.AssignSubmeshTexture(obj.ID, submesh, manifest.TexturePath(mc.Texture), mc.TextureSRGB()); err != nil {
				return err
			}
		}
	}

	e.materials[materialTarget{object: obj.ID, submesh: submesh}] = appliedMaterial{params: params, texture: mc.Texture}
	return nil
}

func (e *Engine) addLight(name string, position, color math.Vec3, intensity, radius float32, orbit bool) *scene.SceneObject {
	if radius <= 0 {
		radius = defaultLightRadius
	}
	obj := e.store.NewObject(name)
	obj.Transform.Translation = position
	obj.Transform.Scale = math.NewVec3(radius, radius, radius)
	obj.Light = &scene.PointLight{
		Intensity: intensity,
		Color:     color,
		Orbit:     orbit,
	}
	return obj
}
