package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// ObjectToWorld returns T * R * S.
func (t Transform) ObjectToWorld() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// WorldToObject inverts ObjectToWorld from its components. Zero scale axes
// collapse instead of dividing by zero.
func (t Transform) WorldToObject() mgl32.Mat4 {
	inv := func(s float32) float32 {
		if s == 0 {
			return 0
		}
		return 1 / s
	}
	invScale := mgl32.Scale3D(inv(t.Scale.X()), inv(t.Scale.Y()), inv(t.Scale.Z()))
	// Conjugate is the inverse of a unit quaternion
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}
