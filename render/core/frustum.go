package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is Ax + By + Cz + D = 0 with the normal pointing inside the frustum.
type Plane mgl32.Vec4

// Distance returns the signed distance of p; positive is inside.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return pl[0]*p[0] + pl[1]*p[1] + pl[2]*p[2] + pl[3]
}

// Frustum holds the planes Left, Right, Bottom, Top, Near, Far in world space.
type Frustum [6]Plane

// ExtractFrustum extracts the world-space planes of the camera described by
// proj and view.
func ExtractFrustum(proj, view mgl32.Mat4) Frustum {
	return ExtractFrustumVP(proj.Mul4(view))
}

// ExtractFrustumVP extracts the planes from a combined view-projection matrix.
func ExtractFrustumVP(vp mgl32.Mat4) Frustum {
	var f Frustum
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	f[0] = Plane(r3.Add(r0))
	f[1] = Plane(r3.Sub(r0))
	f[2] = Plane(r3.Add(r1))
	f[3] = Plane(r3.Sub(r1))
	// OpenGL-style clip depth -1..1
	f[4] = Plane(r3.Add(r2))
	f[5] = Plane(r3.Sub(r2))

	for i := range f {
		length := math32.Sqrt(f[i][0]*f[i][0] + f[i][1]*f[i][1] + f[i][2]*f[i][2])
		if length > 0 {
			f[i] = Plane(mgl32.Vec4(f[i]).Mul(1 / length))
		}
	}
	return f
}

// IntersectsSphere reports whether any part of the sphere is on the inner
// side of every plane. Touching a plane counts as visible.
func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for i := range f {
		if f[i].Distance(center) < -radius {
			return false
		}
	}
	return true
}

// CullOptions controls contribution culling.
type CullOptions struct {
	// MinPixels is the smallest projected diameter, in pixels, that survives.
	// Zero disables contribution culling.
	MinPixels float32 `toml:"min_pixels"`
	// AssumedFov is the vertical field of view, in degrees, used to convert
	// pixels to an angular size. Shadow cameras have no fov of their own.
	AssumedFov float32 `toml:"assumed_fov"`
}

func DefaultCullOptions() CullOptions {
	return CullOptions{MinPixels: 1, AssumedFov: 45}
}

// ContributionCullThreshold returns the minimum radius/distance ratio an
// object needs to cover opt.MinPixels on a target of the given height.
func ContributionCullThreshold(height float32, opt CullOptions) float32 {
	if height <= 0 || opt.MinPixels <= 0 {
		return 0
	}
	fov := mgl32.Clamp(opt.AssumedFov, minFovDegrees, maxFovDegrees)
	return opt.MinPixels * math32.Tan(mgl32.DegToRad(fov)/2) / height
}

// Predicate decides visibility of bounding spheres. Overlaps is the
// conservative test used for grouping volumes; Visible is the final test for
// a single drawable.
type Predicate interface {
	Overlaps(center mgl32.Vec3, radius float32) bool
	Visible(center mgl32.Vec3, radius float32) bool
}

// Culler tests spheres against a frustum, then drops spheres whose size
// relative to their distance from Eye falls below Threshold.
type Culler struct {
	Frustum   Frustum
	Eye       mgl32.Vec3
	Threshold float32
}

func NewCuller(f Frustum, eye mgl32.Vec3, threshold float32) *Culler {
	return &Culler{Frustum: f, Eye: eye, Threshold: threshold}
}

func (c *Culler) Overlaps(center mgl32.Vec3, radius float32) bool {
	return c.Frustum.IntersectsSphere(center, radius)
}

func (c *Culler) Visible(center mgl32.Vec3, radius float32) bool {
	if !c.Frustum.IntersectsSphere(center, radius) {
		return false
	}
	if c.Threshold <= 0 {
		return true
	}
	rel := center.Sub(c.Eye)
	dist2 := rel.Dot(rel)
	if dist2 <= radius*radius {
		// eye inside the sphere
		return true
	}
	limit := c.Threshold * c.Threshold * dist2
	return radius*radius >= limit
}

type alwaysVisible struct{}

func (alwaysVisible) Overlaps(mgl32.Vec3, float32) bool { return true }
func (alwaysVisible) Visible(mgl32.Vec3, float32) bool  { return true }

// AlwaysVisible accepts every sphere; it stands in for a missing frustum.
var AlwaysVisible Predicate = alwaysVisible{}
