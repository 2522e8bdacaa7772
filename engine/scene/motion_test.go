package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/grindsim/engine/math"
)

func TestHelixUpdateMatchesClosedForm(t *testing.T) {
	h := NewHelixMotion(5, 10)
	var pose math.TransformComponent
	for i := 0; i < 60; i++ {
		pose = h.Update(1.0 / 60.0)
	}
	want := h.EvaluateAtTime(1)
	assert.InDelta(t, want.Translation.Y(), pose.Translation.Y(), 1e-4)
	assert.InDelta(t, want.Rotation.Y(), pose.Rotation.Y(), 1e-4)
	// Half a turn after one second at 5 units/s with a pitch of 10.
	assert.InDelta(t, math.Pi, pose.Rotation.Y(), 1e-4)
	assert.InDelta(t, 1.0, h.Elapsed(), 1e-4)
}

func TestHelixHoldsAtTravelLimit(t *testing.T) {
	h := NewHelixMotion(10, 5)
	h.TravelLimit = 20
	var pose math.TransformComponent
	for i := 0; i < 10; i++ {
		pose = h.Update(0.5)
	}
	assert.True(t, h.Stopped())
	assert.InDelta(t, 20, pose.Translation.Y(), 1e-4)

	held := h.Update(0.5)
	assert.Equal(t, pose, held)

	h.Reset()
	assert.False(t, h.Stopped())
	assert.Equal(t, float32(0), h.Update(0).Translation.Y())
}

func TestHelixEvaluateDoesNotMutate(t *testing.T) {
	h := NewHelixMotion(1, 2)
	h.Origin = math.Vec3{0, 0, 3}
	h.Update(1)
	_ = h.EvaluateAtTime(50)
	pose := h.Update(0)
	assert.InDelta(t, 1, pose.Translation.Y(), 1e-6)
	assert.Equal(t, float32(3), pose.Translation.Z())
}
