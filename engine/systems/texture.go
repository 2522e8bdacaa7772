package systems

import (
	"fmt"
	"image"
	"sync"

	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/renderer"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
	"github.com/spaghettifunk/grindsim/engine/resources"
)

// ImageSource decodes image files. The asset manager is the production
// implementation.
type ImageSource interface {
	LoadImage(name string, flipY bool) (*resources.Resource, error)
}

// TextureDevice uploads textures and allocates their sampler sets.
type TextureDevice interface {
	renderer.TextureUploader
	AllocateTextureSet(texture metadata.Texture) (metadata.DescriptorSet, error)
}

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Flip images vertically on load. */
	FlipY bool
}

type textureReference struct {
	info metadata.TextureInfo
	set  metadata.DescriptorSet
}

// TextureSystem caches device textures and their descriptor sets by path,
// so each file is decoded and uploaded at most once.
type TextureSystem struct {
	Config  TextureSystemConfig
	device  TextureDevice
	images  ImageSource
	jobs    *JobSystem
	dummy   textureReference
	entries map[string]*textureReference
}

func NewTextureSystem(config TextureSystemConfig, device TextureDevice, images ImageSource, jobs *JobSystem) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		return nil, fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
	}
	ts := &TextureSystem{
		Config:  config,
		device:  device,
		images:  images,
		jobs:    jobs,
		entries: make(map[string]*textureReference),
	}

	white := loaders.SolidImage(1, 1, [4]uint8{255, 255, 255, 255})
	dummy, err := ts.upload(metadata.DummyTextureName, white, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy texture: %w", err)
	}
	ts.dummy = *dummy
	return ts, nil
}

func (ts *TextureSystem) upload(name string, img *image.RGBA, srgb bool) (*textureReference, error) {
	handle, err := ts.device.CreateTexture(name, img, srgb)
	if err != nil {
		return nil, err
	}
	set, err := ts.device.AllocateTextureSet(handle)
	if err != nil {
		ts.device.DestroyTexture(handle)
		return nil, err
	}
	b := img.Bounds()
	return &textureReference{
		info: metadata.TextureInfo{
			Name:   name,
			Width:  uint32(b.Dx()),
			Height: uint32(b.Dy()),
			SRGB:   srgb,
			Handle: handle,
		},
		set: set,
	}, nil
}

func (ts *TextureSystem) cached(path string, srgb bool) (*textureReference, bool) {
	ref, ok := ts.entries[path]
	if ok && ref.info.SRGB != srgb {
		core.LogWarn("Texture '%s' was first loaded with srgb=%t, ignoring srgb=%t.", path, ref.info.SRGB, srgb)
	}
	return ref, ok
}

func (ts *TextureSystem) register(path string, img *image.RGBA, srgb bool) (*textureReference, error) {
	if uint32(len(ts.entries)) >= ts.Config.MaxTextureCount {
		return nil, fmt.Errorf("texture limit of %d reached loading '%s'", ts.Config.MaxTextureCount, path)
	}
	ref, err := ts.upload(path, img, srgb)
	if err != nil {
		return nil, fmt.Errorf("failed to upload texture '%s': %w", path, err)
	}
	ts.entries[path] = ref
	core.LogDebug("Texture '%s' uploaded (%dx%d, srgb=%t).", path, ref.info.Width, ref.info.Height, srgb)
	return ref, nil
}

func (ts *TextureSystem) load(path string, srgb bool) (*textureReference, error) {
	if ref, ok := ts.cached(path, srgb); ok {
		return ref, nil
	}
	res, err := ts.images.LoadImage(path, ts.Config.FlipY)
	if err != nil {
		return nil, err
	}
	return ts.register(path, res.Data.(*image.RGBA), srgb)
}

// LoadOrGet returns the texture for path, decoding and uploading it on first use.
func (ts *TextureSystem) LoadOrGet(path string, srgb bool) (metadata.TextureInfo, error) {
	ref, err := ts.load(path, srgb)
	if err != nil {
		return metadata.TextureInfo{}, err
	}
	return ref.info, nil
}

// GetOrCreateMaterialSet returns the sampler set of the texture at path.
func (ts *TextureSystem) GetOrCreateMaterialSet(path string, srgb bool) (metadata.DescriptorSet, error) {
	ref, err := ts.load(path, srgb)
	if err != nil {
		return 0, err
	}
	return ref.set, nil
}

// CreateFromImage registers a generated image under name.
func (ts *TextureSystem) CreateFromImage(name string, img *image.RGBA, srgb bool) (metadata.TextureInfo, error) {
	if ref, ok := ts.cached(name, srgb); ok {
		return ref.info, nil
	}
	ref, err := ts.register(name, img, srgb)
	if err != nil {
		return metadata.TextureInfo{}, err
	}
	return ref.info, nil
}

// Preload decodes the files that are not cached yet on the job system and
// uploads them on the calling goroutine.
func (ts *TextureSystem) Preload(paths []string, srgb bool) error {
	var (
		mu      sync.Mutex
		decoded = make(map[string]*image.RGBA)
		tasks   []JobTask
		seen    = make(map[string]struct{})
	)
	for _, path := range paths {
		if _, ok := ts.entries[path]; ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		path := path
		tasks = append(tasks, JobTask{
			Name: "decode " + path,
			Run: func() error {
				res, err := ts.images.LoadImage(path, ts.Config.FlipY)
				if err != nil {
					return err
				}
				mu.Lock()
				decoded[path] = res.Data.(*image.RGBA)
				mu.Unlock()
				return nil
			},
		})
	}
	if len(tasks) == 0 {
		return nil
	}

	var err error
	if ts.jobs != nil {
		err = ts.jobs.RunAll(tasks)
	} else {
		for _, task := range tasks {
			if err = task.Run(); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}

	for _, path := range paths {
		img, ok := decoded[path]
		if !ok {
			continue
		}
		if _, err := ts.register(path, img, srgb); err != nil {
			return err
		}
		delete(decoded, path)
	}
	return nil
}

func (ts *TextureSystem) DummyTexture() metadata.TextureInfo {
	return ts.dummy.info
}

// DummySet samples a 1x1 white texture.
func (ts *TextureSystem) DummySet() metadata.DescriptorSet {
	return ts.dummy.set
}

func (ts *TextureSystem) Len() int {
	return len(ts.entries)
}

// Shutdown destroys every texture. The device must be idle.
func (ts *TextureSystem) Shutdown() error {
	for path, ref := range ts.entries {
		ts.device.DestroyTexture(ref.info.Handle)
		delete(ts.entries, path)
	}
	if ts.dummy.info.Handle.IsValid() {
		ts.device.DestroyTexture(ts.dummy.info.Handle)
		ts.dummy = textureReference{}
	}
	return nil
}
