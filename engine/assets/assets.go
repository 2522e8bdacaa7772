package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/grindsim/engine/assets/loaders"
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/resources"
)

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

// AssetManager loads assets through the registered loaders and, once
// Watch is called, reports modified files on Events.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	watched  map[string]struct{}
	events   chan string
	errors   chan error
	wg       sync.WaitGroup
	debounce time.Duration
}

func NewAssetManager(root string) (*AssetManager, error) {
	am := &AssetManager{
		root:     root,
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		watched:  make(map[string]struct{}),
		events:   make(chan string, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}

	am.registerLoader(resources.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(resources.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(resources.ResourceTypeScene, &loaders.SceneLoader{})

	return am, nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Path resolves name against the asset root unless it is absolute.
func (am *AssetManager) Path(name string) string {
	if filepath.IsAbs(name) || len(am.root) == 0 {
		return name
	}
	return filepath.Join(am.root, name)
}

// LoadAsset loads a file with the loader of its type. The type is derived
// from the extension when resourceType is ResourceTypeNone.
func (am *AssetManager) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	path := am.Path(name)
	if resourceType == resources.ResourceTypeNone {
		resourceType = determineAssetType(path)
	}
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset '%s' of type %s", path, resourceType)
	}

	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *resources.Resource) error {
	if asset == nil {
		return nil
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil
	}
	return loader.Unload(asset)
}

func (am *AssetManager) LoadImage(name string, flipY bool) (*resources.Resource, error) {
	return am.LoadAsset(name, resources.ResourceTypeImage, &resources.ImageResourceParams{FlipY: flipY})
}

func (am *AssetManager) LoadShader(name string) (*resources.ShaderResourceData, error) {
	res, err := am.LoadAsset(name, resources.ResourceTypeShader, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.(*resources.ShaderResourceData), nil
}

func (am *AssetManager) LoadScene(name string) (*loaders.SceneManifest, error) {
	res, err := am.LoadAsset(name, resources.ResourceTypeScene, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.(*loaders.SceneManifest), nil
}

// Info returns what is known about a loaded asset.
func (am *AssetManager) Info(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[am.Path(name)]
	return info, ok
}

// Watch starts reporting writes to the given files on Events. Editors often
// replace files instead of writing them, so the parent directories are
// watched and events are filtered by name.
func (am *AssetManager) Watch(names ...string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	if am.fsnotify == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
		am.wg.Add(1)
		go am.start()
	}

	for _, name := range names {
		path, err := filepath.Abs(am.Path(name))
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}
		am.mutex.Lock()
		am.watched[path] = struct{}{}
		am.mutex.Unlock()
		if err := am.fsnotify.Add(filepath.Dir(path)); err != nil {
			return err
		}
		core.LogDebug("Watching '%s' for changes.", path)
	}
	return nil
}

// Events delivers the absolute path of every watched file that changed.
// Bursts of writes within the debounce window are reported once.
func (am *AssetManager) Events() <-chan string {
	return am.events
}

func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

func (am *AssetManager) start() {
	defer am.wg.Done()

	pending := make(map[string]struct{})
	timer := time.NewTimer(am.debounce)
	timer.Stop()

	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			path, err := filepath.Abs(e.Name)
			if err != nil {
				continue
			}
			am.mutex.RLock()
			_, watched := am.watched[path]
			am.mutex.RUnlock()
			if !watched {
				continue
			}
			pending[path] = struct{}{}
			timer.Reset(am.debounce)

		case <-timer.C:
			for path := range pending {
				select {
				case am.events <- path:
				default:
					core.LogWarn("Asset event queue full, dropping change of '%s'.", path)
				}
				delete(pending, path)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			select {
			case am.errors <- err:
			default:
			}

		case <-am.done:
			timer.Stop()
			return
		}
	}
}

// Shutdown stops the watcher and closes Events.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	var err error
	if am.fsnotify != nil {
		am.wg.Wait()
		err = am.fsnotify.Close()
	}
	close(am.events)
	close(am.errors)
	return err
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return resources.ResourceTypeImage
	case ".spv":
		return resources.ResourceTypeShader
	case ".toml":
		return resources.ResourceTypeScene
	default:
		return resources.ResourceTypeNone
	}
}
