package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/resources"
)

const minimalScene = "[[meshes]]\nname = \"m\"\nkind = \"box\"\n"

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, resources.ResourceTypeImage, determineAssetType("a/b.jpg"))
	assert.Equal(t, resources.ResourceTypeImage, determineAssetType("a/b.webp"))
	assert.Equal(t, resources.ResourceTypeShader, determineAssetType("shader.vert.spv"))
	assert.Equal(t, resources.ResourceTypeScene, determineAssetType("scene.toml"))
	assert.Equal(t, resources.ResourceTypeNone, determineAssetType("readme.md"))
}

func TestLoadSceneRecordsInfo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.toml"), []byte(minimalScene), 0o644))

	am, err := NewAssetManager(dir)
	require.NoError(t, err)
	defer am.Shutdown()

	sm, err := am.LoadScene("scene.toml")
	require.NoError(t, err)
	assert.Len(t, sm.Meshes, 1)

	info, ok := am.Info("scene.toml")
	require.True(t, ok)
	assert.Equal(t, resources.ResourceTypeScene, info.Type)

	_, err = am.LoadAsset("notes.md", resources.ResourceTypeNone, nil)
	assert.Error(t, err)
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScene), 0o644))
	require.NoError(t, os.WriteFile(other, []byte(minimalScene), 0o644))

	am, err := NewAssetManager(dir)
	require.NoError(t, err)
	am.debounce = 10 * time.Millisecond
	require.NoError(t, am.Watch("scene.toml"))

	require.NoError(t, os.WriteFile(other, []byte(minimalScene+"\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(minimalScene+"\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(minimalScene+"\n\n"), 0o644))

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	select {
	case got := <-am.Events():
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event for the watched file")
	}

	require.NoError(t, am.Shutdown())
	for got := range am.Events() {
		assert.Equal(t, abs, got)
	}
}

func TestWatchMissingFile(t *testing.T) {
	am, err := NewAssetManager(t.TempDir())
	require.NoError(t, err)
	defer am.Shutdown()
	assert.Error(t, am.Watch("missing.toml"))
}
