package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Clamps applied to degenerate camera parameters. A degenerate camera still
// produces finite matrices; it is never an error.
const (
	minNearDistance = 1e-4
	minDepthRange   = 1e-4
	minFovDegrees   = 0.01
	maxFovDegrees   = 179.9
	minOrthoExtent  = 1e-4
)

// CameraMatrices holds the transforms of one named camera. The inverse
// matrices always invert their counterpart; they are rebuilt together.
type CameraMatrices struct {
	View              mgl32.Mat4
	Projection        mgl32.Mat4
	InverseView       mgl32.Mat4
	InverseProjection mgl32.Mat4
}

// ViewProjection returns Projection * View.
func (c *CameraMatrices) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}

// Position recovers the world-space eye position from the inverse view.
func (c *CameraMatrices) Position() mgl32.Vec3 {
	return c.InverseView.Col(3).Vec3()
}

// ViewMatrix rotates first, then translates by the negated, rotated camera
// position, giving a world-to-view transform.
func ViewMatrix(position mgl32.Vec3, rotation mgl32.Quat) mgl32.Mat4 {
	view := rotation.Mat4()
	rotated := rotation.Rotate(position)
	view[12] = -rotated.X()
	view[13] = -rotated.Y()
	view[14] = -rotated.Z()
	return view
}

// BuildPerspective computes the matrices of a perspective camera. fov is the
// vertical field of view in degrees.
func BuildPerspective(position mgl32.Vec3, rotation mgl32.Quat, fov, near, far, width, height float32) CameraMatrices {
	fovy, aspect, near, far := clampPerspective(fov, near, far, width, height)

	var m CameraMatrices
	m.View = ViewMatrix(position, rotation)
	m.Projection = Perspective(fovy, aspect, near, far)
	m.InverseProjection = InvPerspective(fovy, aspect, near, far)
	m.InverseView = m.View.Inv()
	return m
}

// BuildOrthographic computes the matrices of an orthographic camera whose
// view-space box spans [boxMin, boxMax] on each axis.
func BuildOrthographic(position mgl32.Vec3, rotation mgl32.Quat, boxMin, boxMax mgl32.Vec3) CameraMatrices {
	for i := 0; i < 3; i++ {
		if boxMax[i]-boxMin[i] < minOrthoExtent {
			boxMax[i] = boxMin[i] + minOrthoExtent
		}
	}

	var m CameraMatrices
	m.View = ViewMatrix(position, rotation)
	m.InverseView = m.View.Inv()
	m.Projection = mgl32.Ortho(boxMin.X(), boxMax.X(), boxMin.Y(), boxMax.Y(), boxMin.Z(), boxMax.Z())
	m.InverseProjection = m.Projection.Inv()
	return m
}

// clampPerspective converts fov to radians and keeps every parameter in a
// range where the projection stays finite.
func clampPerspective(fov, near, far, width, height float32) (fovy, aspect, n, f float32) {
	fov = mgl32.Clamp(fov, minFovDegrees, maxFovDegrees)
	if math32.IsNaN(fov) {
		fov = 45
	}
	if !(near > minNearDistance) {
		near = minNearDistance
	}
	if !(far-near > minDepthRange) {
		far = near + minDepthRange
	}
	aspect = 1
	if width > 0 && height > 0 {
		aspect = width / height
	}
	return mgl32.DegToRad(fov), aspect, near, far
}

// Perspective is the OpenGL-style perspective projection. fovy is in radians.
func Perspective(fovy, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovy/2)
	nmf := near - far
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (near + far) / nmf, -1,
		0, 0, 2 * far * near / nmf, 0,
	}
}

// InvPerspective is the closed-form inverse of Perspective.
func InvPerspective(fovy, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovy/2)
	twoNF := 2 * near * far
	return mgl32.Mat4{
		aspect / f, 0, 0, 0,
		0, 1 / f, 0, 0,
		0, 0, 0, (near - far) / twoNF,
		0, 0, -1, (near + far) / twoNF,
	}
}

// Cameras is the name-keyed camera table owned by the pipeline.
type Cameras struct {
	byName map[string]*CameraMatrices
}

func NewCameras() *Cameras {
	return &Cameras{byName: make(map[string]*CameraMatrices)}
}

// SetPerspective builds and stores a perspective camera, replacing any camera
// of the same name. The returned pointer stays valid across later rebuilds.
func (c *Cameras) SetPerspective(name string, position mgl32.Vec3, rotation mgl32.Quat, fov, near, far, width, height float32) *CameraMatrices {
	return c.store(name, BuildPerspective(position, rotation, fov, near, far, width, height))
}

// SetOrthographic builds and stores an orthographic camera.
func (c *Cameras) SetOrthographic(name string, position mgl32.Vec3, rotation mgl32.Quat, boxMin, boxMax mgl32.Vec3) *CameraMatrices {
	return c.store(name, BuildOrthographic(position, rotation, boxMin, boxMax))
}

func (c *Cameras) store(name string, m CameraMatrices) *CameraMatrices {
	slot, ok := c.byName[name]
	if !ok {
		slot = &CameraMatrices{}
		c.byName[name] = slot
	}
	*slot = m
	return slot
}

func (c *Cameras) Get(name string) (*CameraMatrices, bool) {
	m, ok := c.byName[name]
	return m, ok
}

func (c *Cameras) Len() int {
	return len(c.byName)
}
