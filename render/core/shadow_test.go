package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeRadius(t *testing.T) {
	assert.Equal(t, float32(60), CascadeRadius(0, 5))
	assert.Equal(t, float32(30), CascadeRadius(1, 5))
	assert.Equal(t, float32(5), CascadeRadius(2, 5))
	assert.Equal(t, float32(60+20), CascadeRadius(0, 10))
}

func TestCascadeBox(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{90, 90, 90}, CascadeBox(0, 60))
	assert.Equal(t, mgl32.Vec3{45, 45, 45}, CascadeBox(1, 30))
	assert.Equal(t, mgl32.Vec3{7.5, 7.5, 32.5}, CascadeBox(2, 5))
}

func TestShadowCascadeNames(t *testing.T) {
	assert.Equal(t, "1", ShadowCascadeSuffix(0))
	assert.Equal(t, "3", ShadowCascadeSuffix(2))
	assert.Equal(t, "shadow2", ShadowCameraName(1))
}

func TestSnapToTexelGrid_Idempotent(t *testing.T) {
	rotations := []mgl32.Quat{
		mgl32.QuatIdent(),
		LightRotation(mgl32.Vec3{1, 1, 1}),
		LightRotation(mgl32.Vec3{-0.3, 0.2, 0.9}),
	}
	positions := []mgl32.Vec3{
		{0, 0, 0},
		{12.34, -56.78, 3.21},
		{-481.5, 220.25, 17},
		{1000.1, 999.9, -3},
	}

	for _, rot := range rotations {
		for _, p := range positions {
			for _, extent := range []float32{7.5, 45, 90} {
				once := SnapToTexelGrid(p, rot, extent)
				twice := SnapToTexelGrid(once, rot, extent)
				assert.True(t, vecNear(once, twice, 1e-3), "snap(%v)=%v, snap again=%v", p, once, twice)
			}
		}
	}
}

func TestSnapToTexelGrid_LandsOnGrid(t *testing.T) {
	rot := LightRotation(mgl32.Vec3{0.5, -0.5, 0.7})
	extent := float32(45)
	grid := 2 * extent / ShadowMapResolution

	snapped := SnapToTexelGrid(mgl32.Vec3{33.3, -12.7, 4.4}, rot, extent)
	ls := rot.Rotate(snapped)
	for n := 0; n < 3; n++ {
		k := ls[n] / grid
		assert.InDelta(t, math32.Floor(k+0.5), k, 1e-2, "axis %d is %v grid units", n, k)
	}

	moved := SnapToTexelGrid(mgl32.Vec3{33.3, -12.7, 4.4}, rot, extent)
	assert.LessOrEqual(t, moved.Sub(mgl32.Vec3{33.3, -12.7, 4.4}).Len(), grid*math32.Sqrt(3)+1e-3)
}

func TestSnapToTexelGrid_FloorsBelowGridLine(t *testing.T) {
	// extent 256 gives a grid of exactly one unit
	rot := mgl32.QuatIdent()
	assert.Equal(t, mgl32.Vec3{4, -5, 0}, SnapToTexelGrid(mgl32.Vec3{4.97, -4.03, 0.99}, rot, 256))
	assert.Equal(t, mgl32.Vec3{5, -4, 1}, SnapToTexelGrid(mgl32.Vec3{5, -4, 1}, rot, 256))
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, SnapToTexelGrid(mgl32.Vec3{5.5, 0.25, 0.999}, rot, 256))
}

func TestSnapToTexelGrid_ZeroExtentIsNoop(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	assert.Equal(t, p, SnapToTexelGrid(p, mgl32.QuatIdent(), 0))
}

func TestPlaceShadowCascade(t *testing.T) {
	light := LightRotation(mgl32.Vec3{0, 0, 1})
	camPos := mgl32.Vec3{100, 50, 2}

	c := PlaceShadowCascade(2, DefaultCloseShadow, camPos, mgl32.QuatIdent(), light)
	assert.Equal(t, "shadow3", c.Name)
	assert.Equal(t, "3", c.Suffix)
	assert.Equal(t, float32(5), c.Radius)
	assert.Equal(t, mgl32.Vec3{-7.5, -7.5, -32.5}, c.BoxMin)
	assert.Equal(t, mgl32.Vec3{7.5, 7.5, 32.5}, c.BoxMax)

	// Identity camera: offset is radius along -Z, then snapped onto a
	// 15/512 grid.
	grid := float32(15.0 / 512.0)
	want := camPos.Add(mgl32.Vec3{0, 0, -5})
	for n := 0; n < 3; n++ {
		assert.InDelta(t, want[n], c.Position[n], float64(grid)+1e-4)
	}
}

func TestShadowReconstruction(t *testing.T) {
	def := BuildPerspective(mgl32.Vec3{10, 20, 2}, mgl32.QuatRotate(0.4, mgl32.Vec3{0, 0, 1}), 45, 0.1, 1000, 1280, 720)
	light := LightRotation(mgl32.Vec3{0.2, 0.3, 0.9})
	cascade := PlaceShadowCascade(0, DefaultCloseShadow, mgl32.Vec3{10, 20, 2}, mgl32.QuatIdent(), light)
	shadow := BuildOrthographic(cascade.Position, cascade.Rotation, cascade.BoxMin, cascade.BoxMax)

	recon := ShadowReconstruction(def.InverseView, &shadow)
	require.True(t, finite(recon))

	world := mgl32.Vec4{15, 25, 1, 1}
	viewSpace := def.View.Mul4x1(world)
	got := recon.Mul4x1(viewSpace)
	want := shadow.Projection.Mul4(shadow.View).Mul4x1(world)
	assert.True(t, vec4Near(got, want, 1e-3), "got %v want %v", got, want)
}
