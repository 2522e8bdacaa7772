package scene

import "github.com/spaghettifunk/grindsim/engine/math"

// DefaultTravelLimit is the axial position at which a helix stops.
const DefaultTravelLimit float32 = 100

// HelixMotion spins an object about +Y while feeding it along +Y, one full
// turn per Pitch of travel.
type HelixMotion struct {
	FeedRate    float32 // units per second along Y
	Pitch       float32 // travel per revolution
	TravelLimit float32
	Origin      math.Vec3

	theta   float32
	y       float32
	elapsed float32
	stopped bool
}

func NewHelixMotion(feedRate, pitch float32) HelixMotion {
	return HelixMotion{FeedRate: feedRate, Pitch: pitch, TravelLimit: DefaultTravelLimit}
}

func (h *HelixMotion) omega() float32 {
	if h.Pitch == 0 {
		return 0
	}
	return math.TwoPi * h.FeedRate / h.Pitch
}

func (h *HelixMotion) limit() float32 {
	if h.TravelLimit <= 0 {
		return DefaultTravelLimit
	}
	return h.TravelLimit
}

// Update advances the helix by dt and returns the new pose. Once the travel
// limit is reached the last pose is held.
func (h *HelixMotion) Update(dt float32) math.TransformComponent {
	if !h.stopped {
		nextY := h.y + h.FeedRate*dt
		if nextY > h.limit() {
			h.stopped = true
		} else {
			h.elapsed += dt
			h.theta += h.omega() * dt
			h.y = nextY
		}
	}
	return h.pose(h.theta, h.y)
}

// EvaluateAtTime returns the pose after t seconds from the start without
// touching the running state.
func (h *HelixMotion) EvaluateAtTime(t float32) math.TransformComponent {
	return h.pose(h.omega()*t, h.FeedRate*t)
}

func (h *HelixMotion) Reset() {
	h.theta, h.y, h.elapsed = 0, 0, 0
	h.stopped = false
}

func (h *HelixMotion) Stopped() bool {
	return h.stopped
}

func (h *HelixMotion) Elapsed() float32 {
	return h.elapsed
}

func (h *HelixMotion) pose(theta, y float32) math.TransformComponent {
	return math.TransformComponent{
		Translation: h.Origin.Add(math.Vec3{0, y, 0}),
		Rotation:    math.Vec3{0, theta, 0},
		Scale:       math.NewVec3One(),
	}
}
