package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/resources"
)

// fakeImages serves solid images by name and counts decodes.
type fakeImages struct {
	mu      sync.Mutex
	sizes   map[string]int
	decodes map[string]int
}

func newFakeImages(names ...string) *fakeImages {
	f := &fakeImages{sizes: map[string]int{}, decodes: map[string]int{}}
	for i, name := range names {
		f.sizes[name] = i + 2
	}
	return f
}

func (f *fakeImages) LoadImage(name string, flipY bool) (*resources.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	size, ok := f.sizes[name]
	if !ok {
		return nil, fmt.Errorf("image '%s' not found", name)
	}
	f.decodes[name]++
	img := loaders.SolidImage(size, size, [4]uint8{128, 128, 128, 255})
	return &resources.Resource{
		Type:     resources.ResourceTypeImage,
		Name:     "png",
		FullPath: name,
		DataSize: uint64(len(img.Pix)),
		Data:     img,
	}, nil
}

func (f *fakeImages) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decodes[name]
}
