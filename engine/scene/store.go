package scene

import (
	"fmt"

	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
)

// Store owns the scene objects by id. Iteration order is unspecified.
type Store struct {
	ids     *core.IDAllocator
	objects map[ObjectID]*SceneObject
}

func NewStore(seed uint32) *Store {
	return &Store{
		ids:     core.NewIDAllocator(seed),
		objects: make(map[ObjectID]*SceneObject),
	}
}

// CreateObject reserves a new id. Ids are never reused.
func (s *Store) CreateObject() ObjectID {
	return ObjectID(s.ids.Next())
}

// NewObject reserves an id and emplaces an empty object under it.
func (s *Store) NewObject(name string) *SceneObject {
	obj := &SceneObject{ID: s.CreateObject(), Name: name}
	obj.Transform = math.TransformCreate()
	s.objects[obj.ID] = obj
	return obj
}

// Emplace stores obj under obj.ID, replacing any previous object.
func (s *Store) Emplace(obj *SceneObject) error {
	if obj == nil {
		return fmt.Errorf("emplace: nil object")
	}
	if !s.ids.Issued(uint32(obj.ID)) {
		return fmt.Errorf("emplace %d: %w", obj.ID, core.ErrUnknownObject)
	}
	s.objects[obj.ID] = obj
	return nil
}

func (s *Store) Find(id ObjectID) (*SceneObject, bool) {
	obj, ok := s.objects[id]
	return obj, ok
}

// FindByName does a linear search, it is meant for setup code.
func (s *Store) FindByName(name string) (*SceneObject, bool) {
	for _, obj := range s.objects {
		if obj.Name == name {
			return obj, true
		}
	}
	return nil, false
}

func (s *Store) Each(fn func(*SceneObject)) {
	for _, obj := range s.objects {
		fn(obj)
	}
}

func (s *Store) Len() int {
	return len(s.objects)
}

func (s *Store) Lights() []*SceneObject {
	var out []*SceneObject
	for _, obj := range s.objects {
		if obj.IsLight() {
			out = append(out, obj)
		}
	}
	return out
}

func (s *Store) Renderables() []*SceneObject {
	var out []*SceneObject
	for _, obj := range s.objects {
		if obj.IsRenderable() {
			out = append(out, obj)
		}
	}
	return out
}

// Advance steps every animated object. Nothing moves while motion is disabled.
func (s *Store) Advance(dt float32, motionEnabled bool) {
	if !motionEnabled {
		return
	}
	for _, obj := range s.objects {
		obj.Advance(dt)
	}
}

// Clear drops every object. Ids keep increasing afterwards.
func (s *Store) Clear() {
	clear(s.objects)
}
