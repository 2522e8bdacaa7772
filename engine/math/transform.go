package math

import "github.com/go-gl/mathgl/mgl32"

// TransformComponent is a translation, an euler rotation in radians and a
// non-uniform scale.
type TransformComponent struct {
	Translation Vec3
	Scale       Vec3
	Rotation    Vec3
}

func TransformCreate() TransformComponent {
	return TransformComponent{Scale: NewVec3One()}
}

func TransformFromTranslation(translation Vec3) TransformComponent {
	return TransformComponent{Translation: translation, Scale: NewVec3One()}
}

// Mat4 composes translate * Ry * Rx * Rz * scale.
func (t TransformComponent) Mat4() Mat4 {
	m := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	m = m.Mul4(mgl32.HomogRotate3DY(t.Rotation.Y()))
	m = m.Mul4(mgl32.HomogRotate3DX(t.Rotation.X()))
	m = m.Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z()))
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// NormalMatrix is the inverse transpose of the upper 3x3 of Mat4, widened
// back to a Mat4 for std140 upload. A degenerate scale yields a zero matrix.
func (t TransformComponent) NormalMatrix() Mat4 {
	return t.Mat4().Mat3().Inv().Transpose().Mat4()
}
