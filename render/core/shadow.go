package core

import (
	"strconv"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowCascadeCount is the number of shadow cameras placed each frame.
const ShadowCascadeCount = 3

// ShadowMapResolution is the texel resolution the snap grid assumes.
const ShadowMapResolution = 512

// ShadowMatrixField is the user-defined pass field selecting which cascade's
// reconstruction matrix a pass receives.
const ShadowMatrixField = "shadowMatrix"

// DefaultCloseShadow is the default distance covered by the nearest cascade.
const DefaultCloseShadow float32 = 5

// snapNoise bounds the float32 error, in texels per grid unit of magnitude,
// under which a value counts as already lying on a grid line.
const snapNoise = 4e-6

// ShadowCascade describes where one shadow camera goes this frame.
type ShadowCascade struct {
	Index    int
	Name     string
	Suffix   string
	Radius   float32
	Position mgl32.Vec3
	Rotation mgl32.Quat
	BoxMin   mgl32.Vec3
	BoxMax   mgl32.Vec3
}

// CascadeRadius returns the coverage radius of cascade i. Radii shrink as i
// grows: (1<<(2-i))*closeShadow + (2-i)*20.
func CascadeRadius(i int, closeShadow float32) float32 {
	n := ShadowCascadeCount - 1 - i
	if n < 0 {
		n = 0
	}
	return float32(int(1)<<n)*closeShadow + float32(n)*20
}

// CascadeBox returns the half extent of the cascade's orthographic box. The
// last cascade reaches 25 units higher to cover tall geometry near the camera.
func CascadeBox(i int, radius float32) mgl32.Vec3 {
	e := radius * 1.5
	box := mgl32.Vec3{e, e, e}
	if i == ShadowCascadeCount-1 {
		box[2] += 25
	}
	return box
}

// ShadowCascadeSuffix returns "1", "2", "3" for cascades 0, 1, 2.
func ShadowCascadeSuffix(i int) string {
	return strconv.Itoa(i + 1)
}

// ShadowCameraName returns the camera table name of cascade i.
func ShadowCameraName(i int) string {
	return "shadow" + ShadowCascadeSuffix(i)
}

// SnapToTexelGrid moves a world position onto the light-space grid of
// texel size 2*extent/ShadowMapResolution, flooring every axis.
func SnapToTexelGrid(pos mgl32.Vec3, lightRotation mgl32.Quat, extent float32) mgl32.Vec3 {
	grid := 2 * extent / ShadowMapResolution
	if !(grid > 0) {
		return pos
	}
	ls := lightRotation.Rotate(pos)
	for n := 0; n < 3; n++ {
		ls[n] = floorToGrid(ls[n], grid)
	}
	return lightRotation.Conjugate().Rotate(ls)
}

// floorToGrid floors v to a multiple of grid. Values within float noise of
// a grid line stay on it, so rotating a snapped position back and forth does
// not drop it a texel.
func floorToGrid(v, grid float32) float32 {
	q := v / grid
	nearest := math32.Floor(q + 0.5)
	if math32.Abs(q-nearest) <= snapNoise*max(1, math32.Abs(q)) {
		return nearest * grid
	}
	return math32.Floor(q) * grid
}

// PlaceShadowCascade offsets cascade i from the player camera by its radius
// along view-space -Z, carried to world space by the inverse camera rotation,
// and snaps the result to the shadow map texel grid.
func PlaceShadowCascade(i int, closeShadow float32, camPosition mgl32.Vec3, camRotation, lightRotation mgl32.Quat) ShadowCascade {
	radius := CascadeRadius(i, closeShadow)
	box := CascadeBox(i, radius)

	offset := camRotation.Conjugate().Rotate(mgl32.Vec3{0, 0, -radius})
	position := SnapToTexelGrid(camPosition.Add(offset), lightRotation, box.X())

	return ShadowCascade{
		Index:    i,
		Name:     ShadowCameraName(i),
		Suffix:   ShadowCascadeSuffix(i),
		Radius:   radius,
		Position: position,
		Rotation: lightRotation,
		BoxMin:   box.Mul(-1),
		BoxMax:   box,
	}
}

// ShadowReconstruction maps a point in the default camera's view space into
// the shadow camera's clip space: default view -> world -> shadow view ->
// shadow clip.
func ShadowReconstruction(defaultInverseView mgl32.Mat4, shadow *CameraMatrices) mgl32.Mat4 {
	return shadow.Projection.Mul4(shadow.View).Mul4(defaultInverseView)
}
