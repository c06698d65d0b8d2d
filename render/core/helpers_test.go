package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b []float32, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func matNear(a, b mgl32.Mat4, eps float32) bool { return near(a[:], b[:], eps) }
func vecNear(a, b mgl32.Vec3, eps float32) bool { return near(a[:], b[:], eps) }
func vec4Near(a, b mgl32.Vec4, eps float32) bool { return near(a[:], b[:], eps) }

func finite(m mgl32.Mat4) bool {
	for _, v := range m {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}
