package components

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/grindsim/engine/math"
)

// Camera holds a projection and a view matrix. The projection maps view
// space depth to Vulkan's 0..1 range with clip space Y pointing down, so the
// world up vector (0,1,0) appears at the top of the image.
type Camera struct {
	projection  math.Mat4
	view        math.Mat4
	inverseView math.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.projection = math.NewMat4Identity()
	c.view = math.NewMat4Identity()
	c.inverseView = math.NewMat4Identity()
}

// SetOrthographicProjection maps the given box to the clip volume.
func (c *Camera) SetOrthographicProjection(left, right, top, bottom, near, far float32) {
	m := math.NewMat4Identity()
	m.Set(0, 0, 2/(right-left))
	m.Set(1, 1, 2/(bottom-top))
	m.Set(2, 2, 1/(far-near))
	m.Set(0, 3, -(right+left)/(right-left))
	m.Set(1, 3, -(bottom+top)/(bottom-top))
	m.Set(2, 3, -near/(far-near))
	c.projection = m
}

// SetPerspectiveProjection takes the vertical field of view in radians.
func (c *Camera) SetPerspectiveProjection(fovy, aspect, near, far float32) {
	tanHalf := math32.Tan(fovy / 2)
	var m math.Mat4
	m.Set(0, 0, 1/(aspect*tanHalf))
	m.Set(1, 1, 1/tanHalf)
	m.Set(2, 2, far/(far-near))
	m.Set(3, 2, 1)
	m.Set(2, 3, -(far*near)/(far-near))
	c.projection = m
}

// SetViewDirection looks from position along direction.
func (c *Camera) SetViewDirection(position, direction, up math.Vec3) {
	w := direction.Normalize()
	u := w.Cross(up).Normalize()
	v := w.Cross(u)

	// Rows are the camera basis, the last column moves position to the origin.
	c.view = mgl32.Mat4{
		u.X(), v.X(), w.X(), 0,
		u.Y(), v.Y(), w.Y(), 0,
		u.Z(), v.Z(), w.Z(), 0,
		-u.Dot(position), -v.Dot(position), -w.Dot(position), 1,
	}
	// Columns are the basis, the last column is position.
	c.inverseView = mgl32.Mat4{
		u.X(), u.Y(), u.Z(), 0,
		v.X(), v.Y(), v.Z(), 0,
		w.X(), w.Y(), w.Z(), 0,
		position.X(), position.Y(), position.Z(), 1,
	}
}

// SetViewTarget looks from position at target.
func (c *Camera) SetViewTarget(position, target, up math.Vec3) {
	c.SetViewDirection(position, target.Sub(position), up)
}

func (c *Camera) Projection() math.Mat4 {
	return c.projection
}

func (c *Camera) View() math.Mat4 {
	return c.view
}

func (c *Camera) InverseView() math.Mat4 {
	return c.inverseView
}

// Position is the eye position in world space.
func (c *Camera) Position() math.Vec3 {
	return c.inverseView.Col(3).Vec3()
}
