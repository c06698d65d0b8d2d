package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the up axis of the track coordinate system (Z-up).
var WorldUp = mgl32.Vec3{0, 0, 1}

// Lighting holds the colors pushed as global uniforms each frame. The
// defaults match the values tracks were tuned against.
type Lighting struct {
	Ambient     mgl32.Vec4 `toml:"ambient"`
	Directional mgl32.Vec4 `toml:"directional"`
	Reflected   mgl32.Vec4 `toml:"reflected"`
}

func DefaultLighting() Lighting {
	return Lighting{
		Ambient:     mgl32.Vec4{1.56, 1.56, 1.56, 1},
		Directional: mgl32.Vec4{8.3, 8.3, 8.3, 1},
		Reflected:   mgl32.Vec4{0.5, 0.5, 0.5, 1},
	}
}

// EyespaceLightDirection transforms a world light direction into view space.
// The direction is treated as a vector (w = 0), so translation is ignored.
func EyespaceLightDirection(view mgl32.Mat4, dir mgl32.Vec3) mgl32.Vec3 {
	return view.Mul4x1(dir.Vec4(0)).Vec3()
}

// LightRotation returns the light camera rotation for the sun direction dir:
// the rotation about WorldUp x dir by -acos(WorldUp . dir). It carries dir onto
// WorldUp, so a camera built with it looks along -dir. A zero direction, or
// one parallel to WorldUp, yields the identity.
func LightRotation(dir mgl32.Vec3) mgl32.Quat {
	l := dir.Len()
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return mgl32.QuatIdent()
	}
	dir = dir.Mul(1 / l)

	cosa := mgl32.Clamp(WorldUp.Dot(dir), -1, 1)
	if cosa*cosa >= 1 {
		return mgl32.QuatIdent()
	}
	axis := WorldUp.Cross(dir)
	axisLen := axis.Len()
	if axisLen < 1e-6 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(-math32.Acos(cosa), axis.Mul(1/axisLen))
}
