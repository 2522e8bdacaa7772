package components

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/grindsim/engine/math"
)

type OrbitConfig struct {
	OrbitSensitivity float32
	PanSensitivity   float32
	DollySpeed       float32
	MinDistance      float32
	MaxDistance      float32
	MinPitch         float32
	MaxPitch         float32

	HomeTarget   math.Vec3
	HomeDistance float32
	HomeYaw      float32
	HomePitch    float32
}

func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		OrbitSensitivity: 0.005,
		PanSensitivity:   0.002,
		DollySpeed:       0.12,
		MinDistance:      0.05,
		MaxDistance:      100,
		MinPitch:         -1.2,
		MaxPitch:         1.2,
		HomeTarget:       math.NewVec3(0, 0, 2.5),
		HomeDistance:     5,
		HomeYaw:          math.Pi,
		HomePitch:        0,
	}
}

// OrbitCamera rotates about a target point at a clamped distance.
type OrbitCamera struct {
	config OrbitConfig

	target   math.Vec3
	distance float32
	yaw      float32
	pitch    float32
}

func NewOrbitCamera(config OrbitConfig) *OrbitCamera {
	if config.MinDistance > config.MaxDistance {
		config.MinDistance, config.MaxDistance = config.MaxDistance, config.MinDistance
	}
	if config.MinPitch > config.MaxPitch {
		config.MinPitch, config.MaxPitch = config.MaxPitch, config.MinPitch
	}
	oc := &OrbitCamera{config: config}
	oc.Reset()
	return oc
}

// Reset restores the home pose.
func (oc *OrbitCamera) Reset() {
	oc.target = oc.config.HomeTarget
	oc.distance = math.Clamp(oc.config.HomeDistance, oc.config.MinDistance, oc.config.MaxDistance)
	oc.yaw = math.WrapAngle(oc.config.HomeYaw)
	oc.pitch = math.Clamp(oc.config.HomePitch, oc.config.MinPitch, oc.config.MaxPitch)
}

// Orbit rotates by a mouse delta in pixels.
func (oc *OrbitCamera) Orbit(dx, dy float32) {
	oc.yaw -= dx * oc.config.OrbitSensitivity
	oc.pitch -= dy * oc.config.OrbitSensitivity
	oc.pitch = math.Clamp(oc.pitch, oc.config.MinPitch, oc.config.MaxPitch)
	oc.yaw = math.WrapAngle(oc.yaw)
}

// Pan moves the target in the view plane. The step grows with distance.
func (oc *OrbitCamera) Pan(dx, dy float32) {
	forward := oc.Forward()
	right := forward.Cross(math.NewVec3Up()).Normalize()
	up := right.Cross(forward).Normalize()
	scale := oc.distance * oc.config.PanSensitivity

	oc.target = oc.target.Sub(right.Mul(dx * scale))
	oc.target = oc.target.Add(up.Mul(dy * scale))
}

// Dolly scales the distance by exp(-steps*DollySpeed). Positive steps move in.
func (oc *OrbitCamera) Dolly(steps float32) {
	oc.distance *= math32.Exp(-steps * oc.config.DollySpeed)
	oc.distance = math.Clamp(oc.distance, oc.config.MinDistance, oc.config.MaxDistance)
}

func (oc *OrbitCamera) Forward() math.Vec3 {
	sy, cy := math32.Sincos(oc.yaw)
	sp, cp := math32.Sincos(oc.pitch)
	return math.NewVec3(cp*sy, sp, -cp*cy).Normalize()
}

func (oc *OrbitCamera) Position() math.Vec3 {
	return oc.target.Sub(oc.Forward().Mul(oc.distance))
}

func (oc *OrbitCamera) Target() math.Vec3 {
	return oc.target
}

func (oc *OrbitCamera) Distance() float32 {
	return oc.distance
}

func (oc *OrbitCamera) Yaw() float32 {
	return oc.yaw
}

func (oc *OrbitCamera) Pitch() float32 {
	return oc.pitch
}

// Apply writes the current pose into the camera view.
func (oc *OrbitCamera) Apply(camera *Camera) {
	camera.SetViewTarget(oc.Position(), oc.target, math.NewVec3Up())
}
