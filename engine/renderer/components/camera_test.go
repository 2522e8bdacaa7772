package components

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/math"
)

const eps = 1e-4

func assertVec3(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, eps), "want %v, got %v", want, got)
}

func TestPerspectiveProjectionDepthRange(t *testing.T) {
	c := NewCamera()
	c.SetPerspectiveProjection(math.DegToRad(50), 16.0/9.0, 0.1, 1000)
	p := c.Projection()

	near := p.Mul4x1(math.NewVec4(0, 0, 0.1, 1))
	far := p.Mul4x1(math.NewVec4(0, 0, 1000, 1))
	assert.InDelta(t, 0, near.Z()/near.W(), eps)
	assert.InDelta(t, 1, far.Z()/far.W(), eps)
}

func TestViewTargetPutsTargetInFront(t *testing.T) {
	c := NewCamera()
	eye := math.NewVec3(0, 0, -2.5)
	target := math.NewVec3(0, 0, 2.5)
	c.SetViewTarget(eye, target, math.NewVec3Up())

	v := c.View().Mul4x1(target.Vec4(1))
	assert.InDelta(t, 0, v.X(), eps)
	assert.InDelta(t, 0, v.Y(), eps)
	assert.InDelta(t, 5, v.Z(), eps)

	// World up ends at negative view Y, the top of a Vulkan image.
	above := c.View().Mul4x1(math.NewVec4(0, 1, 2.5, 1))
	assert.Less(t, above.Y(), float32(0))

	assertVec3(t, eye, c.Position())
	assert.True(t, math.ApproxEqual(math.NewMat4Identity(), c.View().Mul4(c.InverseView()), eps))
}

func TestOrbitPitchClampAndYawWrap(t *testing.T) {
	oc := NewOrbitCamera(DefaultOrbitConfig())

	oc.Orbit(0, -100000)
	assert.InDelta(t, 1.2, oc.Pitch(), eps)
	oc.Orbit(0, 100000)
	assert.InDelta(t, -1.2, oc.Pitch(), eps)

	for i := 0; i < 50; i++ {
		oc.Orbit(997, 0)
		require.Greater(t, oc.Yaw(), -math.Pi-eps)
		require.LessOrEqual(t, oc.Yaw(), math.Pi+eps)
	}
}

func TestOrbitDistanceStaysOnSphere(t *testing.T) {
	oc := NewOrbitCamera(DefaultOrbitConfig())
	oc.Orbit(123, 45)
	assert.InDelta(t, 5, oc.Position().Sub(oc.Target()).Len(), eps)
}

func TestDollyClamp(t *testing.T) {
	oc := NewOrbitCamera(DefaultOrbitConfig())

	oc.Dolly(1)
	assert.InDelta(t, 5*math32.Exp(-0.12), oc.Distance(), eps)

	oc.Dolly(1000)
	assert.Equal(t, float32(0.05), oc.Distance())
	oc.Dolly(-1000)
	assert.Equal(t, float32(100), oc.Distance())
}

func TestPanMovesTargetInViewPlane(t *testing.T) {
	oc := NewOrbitCamera(DefaultOrbitConfig())
	forward := oc.Forward()

	oc.Pan(10, 0)
	delta := oc.Target().Sub(math.NewVec3(0, 0, 2.5))
	assert.InDelta(t, 0, delta.Dot(forward), eps)
	// Home looks along +z, so right is -x and dragging right moves the target to +x.
	assert.InDelta(t, 10*5*0.002, delta.X(), eps)

	oc.Reset()
	oc.Pan(0, 10)
	assert.InDelta(t, 10*5*0.002, oc.Target().Y(), eps)
}

func TestResetRestoresHome(t *testing.T) {
	oc := NewOrbitCamera(DefaultOrbitConfig())
	oc.Orbit(300, 200)
	oc.Pan(40, -30)
	oc.Dolly(3)
	oc.Reset()

	assertVec3(t, math.NewVec3(0, 0, 2.5), oc.Target())
	assert.Equal(t, float32(5), oc.Distance())
	assert.InDelta(t, 0, oc.Pitch(), eps)
	assertVec3(t, math.NewVec3(0, 0, -2.5), oc.Position())
}

func TestApplyWritesView(t *testing.T) {
	oc := NewOrbitCamera(DefaultOrbitConfig())
	c := NewCamera()
	oc.Apply(c)
	assertVec3(t, oc.Position(), c.Position())
}
