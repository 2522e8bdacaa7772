package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

const (
	Pi    float32 = math32.Pi
	TwoPi float32 = 2 * math32.Pi
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapAngle maps a radian angle into (-Pi, Pi].
func WrapAngle(a float32) float32 {
	a = math32.Mod(a+Pi, TwoPi)
	if a <= 0 {
		a += TwoPi
	}
	a -= Pi
	if a <= -Pi {
		return Pi
	}
	return a
}

func DegToRad(deg float32) float32 {
	return mgl32.DegToRad(deg)
}

// ApproxEqual compares two matrices element wise.
func ApproxEqual(a, b Mat4, tolerance float32) bool {
	return a.ApproxEqualThreshold(b, tolerance)
}
