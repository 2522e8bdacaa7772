package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

func TestStoreIdsAreMonotonic(t *testing.T) {
	s := NewStore(1)
	a := s.CreateObject()
	b := s.CreateObject()
	assert.Greater(t, b, a)

	s.Clear()
	c := s.CreateObject()
	assert.Greater(t, c, b, "ids must not be reused after a clear")
}

func TestStoreEmplaceAndFind(t *testing.T) {
	s := NewStore(1)
	id := s.CreateObject()
	_, ok := s.Find(id)
	assert.False(t, ok)

	require.NoError(t, s.Emplace(&SceneObject{ID: id, Name: "wheel", Mesh: metadata.MeshHandle(3)}))
	obj, ok := s.Find(id)
	require.True(t, ok)
	assert.Equal(t, "wheel", obj.Name)
	assert.True(t, obj.IsRenderable())

	err := s.Emplace(&SceneObject{ID: id + 10})
	assert.ErrorIs(t, err, core.ErrUnknownObject)
}

func TestStoreKinds(t *testing.T) {
	s := NewStore(1)
	mesh := s.NewObject("blank")
	mesh.Mesh = metadata.MeshHandle(1)
	light := s.NewObject("sun")
	light.Light = &PointLight{Intensity: 1}
	s.NewObject("empty")

	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.Renderables(), 1)
	require.Len(t, s.Lights(), 1)
	assert.Equal(t, light.ID, s.Lights()[0].ID)

	found, ok := s.FindByName("sun")
	require.True(t, ok)
	assert.Same(t, light, found)

	count := 0
	s.Each(func(*SceneObject) { count++ })
	assert.Equal(t, 3, count)
}

func TestAdvanceDispatchesOnMotionKind(t *testing.T) {
	s := NewStore(1)
	static := s.NewObject("static")
	static.Transform.Translation = math.Vec3{1, 2, 3}

	anim := s.NewObject("wheel")
	anim.Motion = Motion{Kind: MotionAnimated, Helix: NewHelixMotion(2, 4)}

	s.Advance(0.5, false)
	assert.Equal(t, float32(0), anim.Transform.Translation.Y())

	s.Advance(0.5, true)
	assert.Equal(t, math.Vec3{1, 2, 3}, static.Transform.Translation)
	assert.InDelta(t, 1.0, anim.Transform.Translation.Y(), 1e-6)
	assert.InDelta(t, math.Pi/2, anim.Transform.Rotation.Y(), 1e-5)
}
