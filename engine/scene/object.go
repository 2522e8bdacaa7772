package scene

import (
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

type ObjectID uint32

// PointLight marks an object as a light. Its radius is Transform.Scale.X().
type PointLight struct {
	Intensity float32
	Color     math.Vec3
	// Orbit makes the light system spin the light about -Y every frame.
	Orbit bool
}

type MotionKind uint8

const (
	MotionStatic MotionKind = iota
	MotionAnimated
)

// Motion is a closed variant: static objects ignore Helix.
type Motion struct {
	Kind  MotionKind
	Helix HelixMotion
}

// SceneObject is either a renderable (Mesh set) or a light (Light set).
type SceneObject struct {
	ID        ObjectID
	Name      string
	Transform math.TransformComponent
	Mesh      metadata.MeshHandle
	Light     *PointLight
	Motion    Motion
}

func (o *SceneObject) IsRenderable() bool {
	return o.Mesh.IsValid()
}

func (o *SceneObject) IsLight() bool {
	return o.Light != nil
}

func (o *SceneObject) Radius() float32 {
	return o.Transform.Scale.X()
}

// Advance steps the object's motion by dt seconds.
func (o *SceneObject) Advance(dt float32) {
	switch o.Motion.Kind {
	case MotionStatic:
	case MotionAnimated:
		pose := o.Motion.Helix.Update(dt)
		o.Transform.Translation = pose.Translation
		o.Transform.Rotation = pose.Rotation
	}
}
