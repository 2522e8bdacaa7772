package loaders

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/grindsim/engine/resources"
)

// Mesh generator kinds understood by the scene builder.
const (
	MeshKindWheel = "wheel"
	MeshKindBox   = "box"
	MeshKindPlane = "plane"
)

type MeshConfig struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	// Size is width, height, depth for boxes and width, _, depth for planes.
	Size     [3]float32 `toml:"size"`
	Tiling   [2]float32 `toml:"tiling"`
	Segments uint32     `toml:"segments"`

	// Wheel dimensions.
	Radius      float32 `toml:"radius"`
	InnerRadius float32 `toml:"inner_radius"`
	Width       float32 `toml:"width"`
	HubRadius   float32 `toml:"hub_radius"`
	HubWidth    float32 `toml:"hub_width"`
}

type MotionConfig struct {
	FeedRate    float32 `toml:"feed_rate"`
	Pitch       float32 `toml:"pitch"`
	TravelLimit float32 `toml:"travel_limit"`
	Enabled     bool    `toml:"enabled"`
}

type ObjectConfig struct {
	Name        string           `toml:"name"`
	Mesh        string           `toml:"mesh"`
	Translation [3]float32       `toml:"translation"`
	Rotation    [3]float32       `toml:"rotation"`
	Scale       *[3]float32      `toml:"scale"`
	Motion      *MotionConfig    `toml:"motion"`
	Materials   []MaterialConfig `toml:"materials"`
}

type LightConfig struct {
	Name      string     `toml:"name"`
	Position  [3]float32 `toml:"position"`
	Color     [3]float32 `toml:"color"`
	Intensity float32    `toml:"intensity"`
	Radius    float32    `toml:"radius"`
	Orbit     bool       `toml:"orbit"`
}

// HeadlightConfig describes the light that follows the camera.
type HeadlightConfig struct {
	Enabled   bool       `toml:"enabled"`
	Color     [3]float32 `toml:"color"`
	Intensity float32    `toml:"intensity"`
	Radius    float32    `toml:"radius"`
}

// TrackConfig draws count copies of a mesh along the helix of an object.
type TrackConfig struct {
	Name   string  `toml:"name"`
	Object string  `toml:"object"`
	Mesh   string  `toml:"mesh"`
	T0     float32 `toml:"t0"`
	T1     float32 `toml:"t1"`
	Count  uint32  `toml:"count"`
}

// SceneManifest is the decoded scene.toml.
type SceneManifest struct {
	Meshes    []MeshConfig    `toml:"meshes"`
	Objects   []ObjectConfig  `toml:"objects"`
	Lights    []LightConfig   `toml:"lights"`
	Headlight HeadlightConfig `toml:"headlight"`
	Tracks    []TrackConfig   `toml:"tracks"`
	// TextureRoot is prepended to relative texture paths. Defaults to the
	// manifest directory.
	TextureRoot string `toml:"texture_root"`
}

// TexturePath resolves a texture path from the manifest.
func (sm *SceneManifest) TexturePath(path string) string {
	if len(path) == 0 || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(sm.TextureRoot, path)
}

func (sm *SceneManifest) Object(name string) (*ObjectConfig, bool) {
	for i := range sm.Objects {
		if sm.Objects[i].Name == name {
			return &sm.Objects[i], true
		}
	}
	return nil, false
}

func (sm *SceneManifest) Validate() error {
	meshes := make(map[string]struct{}, len(sm.Meshes))
	for _, m := range sm.Meshes {
		if len(m.Name) == 0 {
			return fmt.Errorf("mesh without a name")
		}
		switch m.Kind {
		case MeshKindWheel, MeshKindBox, MeshKindPlane:
		default:
			return fmt.Errorf("mesh '%s' has unknown kind '%s'", m.Name, m.Kind)
		}
		meshes[m.Name] = struct{}{}
	}

	objects := make(map[string]struct{}, len(sm.Objects))
	for _, o := range sm.Objects {
		if len(o.Name) == 0 {
			return fmt.Errorf("object without a name")
		}
		if _, dup := objects[o.Name]; dup {
			return fmt.Errorf("object '%s' is declared twice", o.Name)
		}
		objects[o.Name] = struct{}{}
		if _, ok := meshes[o.Mesh]; !ok {
			return fmt.Errorf("object '%s' references unknown mesh '%s'", o.Name, o.Mesh)
		}
		if o.Motion != nil && o.Motion.Pitch <= 0 {
			return fmt.Errorf("object '%s' motion pitch must be positive", o.Name)
		}
		for i := range o.Materials {
			if err := o.Materials[i].Validate(); err != nil {
				return fmt.Errorf("object '%s' material %d: %w", o.Name, i, err)
			}
		}
	}

	for _, t := range sm.Tracks {
		obj, ok := sm.Object(t.Object)
		if !ok {
			return fmt.Errorf("track '%s' references unknown object '%s'", t.Name, t.Object)
		}
		if obj.Motion == nil {
			return fmt.Errorf("track '%s' object '%s' has no motion", t.Name, t.Object)
		}
		if _, ok := meshes[t.Mesh]; !ok {
			return fmt.Errorf("track '%s' references unknown mesh '%s'", t.Name, t.Mesh)
		}
		if t.T1 < t.T0 {
			return fmt.Errorf("track '%s' ends before it starts", t.Name)
		}
	}
	return nil
}

type SceneLoader struct{}

func (sl *SceneLoader) Load(path string, params interface{}) (*resources.Resource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	manifest, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("scene '%s': %w", path, err)
	}
	if len(manifest.TextureRoot) == 0 {
		manifest.TextureRoot = filepath.Dir(path)
	} else if !filepath.IsAbs(manifest.TextureRoot) {
		manifest.TextureRoot = filepath.Join(filepath.Dir(path), manifest.TextureRoot)
	}
	return &resources.Resource{
		Type:     resources.ResourceTypeScene,
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     manifest,
	}, nil
}

func (sl *SceneLoader) Unload(*resources.Resource) error {
	return nil
}

// ParseScene decodes and validates a manifest. Unknown keys are rejected.
func ParseScene(data []byte) (*SceneManifest, error) {
	manifest := &SceneManifest{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(manifest); err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}
