// Package scene holds drawables, the nodes that own them, and the draw lists
// the renderer builds from node traversal.
package scene

import (
	"github.com/gekko3d/drift/render/strid"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Kind is the closed set of drawable variants.
type Kind uint8

const (
	KindModel Kind = iota
	KindQuad
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindQuad:
		return "quad"
	case KindText:
		return "text"
	}
	return "unknown"
}

// TextureTarget mirrors the graphics API texture binding point.
type TextureTarget uint32

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// Uniform is a named float uniform value.
type Uniform struct {
	ID   strid.ID
	Data []float32
}

// Texture binds a backend texture handle to a named sampler.
type Texture struct {
	ID     strid.ID
	Handle uint32
	Target TextureTarget
}

// RenderRecord is what a pass draws for one drawable.
type RenderRecord struct {
	Kind         Kind
	VertexArray  uint32
	ElementCount int
	DrawOrder    float32
	Uniforms     []Uniform
	Textures     []Texture

	model [16]float32
	color [4]float32
}

// DrawableAttributes are the shader names every render record binds,
// resolved once at startup.
type DrawableAttributes struct {
	Tex0      strid.ID
	Tex1      strid.ID
	Tex2      strid.ID
	Transform strid.ID
	Color     strid.ID
}

func NewDrawableAttributes(ids *strid.Map) DrawableAttributes {
	return DrawableAttributes{
		Tex0:      ids.Add("diffuseTexture"),
		Tex1:      ids.Add("misc1Texture"),
		Tex2:      ids.Add("normalMapTexture"),
		Transform: ids.Add("modelMatrix"),
		Color:     ids.Add("colorTint"),
	}
}

// QuadGeometry is a screen-space rectangle with texture coordinates.
type QuadGeometry struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
	Z              float32
}

// Vertices returns two triangles as interleaved x, y, z, u, v.
func (q *QuadGeometry) Vertices() []float32 {
	return []float32{
		q.X0, q.Y0, q.Z, q.U0, q.V0,
		q.X1, q.Y0, q.Z, q.U1, q.V0,
		q.X1, q.Y1, q.Z, q.U1, q.V1,
		q.X0, q.Y0, q.Z, q.U0, q.V0,
		q.X1, q.Y1, q.Z, q.U1, q.V1,
		q.X0, q.Y1, q.Z, q.U0, q.V1,
	}
}

// Drawable is one renderable item. Kind selects which fields matter: models
// use every texture slot, quads carry their own geometry, text uses the font
// atlas in Textures[0].
type Drawable struct {
	Kind Kind

	// Bounding sphere in object space.
	LocalCenter mgl32.Vec3
	LocalRadius float32

	DrawOrder    float32
	Color        mgl32.Vec4
	Textures     [3]uint32
	VertexArray  uint32
	ElementCount int
	Quad         *QuadGeometry

	id     uuid.UUID
	world  mgl32.Mat4
	placed bool
	record RenderRecord
}

func NewModel(center mgl32.Vec3, radius float32, vertexArray uint32, elements int) *Drawable {
	return &Drawable{
		Kind:         KindModel,
		LocalCenter:  center,
		LocalRadius:  radius,
		Color:        mgl32.Vec4{1, 1, 1, 1},
		VertexArray:  vertexArray,
		ElementCount: elements,
	}
}

func NewQuad(q QuadGeometry, drawOrder float32) *Drawable {
	return &Drawable{
		Kind:         KindQuad,
		LocalCenter:  mgl32.Vec3{(q.X0 + q.X1) / 2, (q.Y0 + q.Y1) / 2, q.Z},
		LocalRadius:  mgl32.Vec2{q.X1 - q.X0, q.Y1 - q.Y0}.Len() / 2,
		DrawOrder:    drawOrder,
		Color:        mgl32.Vec4{1, 1, 1, 1},
		ElementCount: 6,
		Quad:         &q,
	}
}

func NewText(font uint32, vertexArray uint32, elements int, drawOrder float32) *Drawable {
	d := &Drawable{
		Kind:         KindText,
		DrawOrder:    drawOrder,
		Color:        mgl32.Vec4{1, 1, 1, 1},
		VertexArray:  vertexArray,
		ElementCount: elements,
	}
	d.Textures[0] = font
	return d
}

// ID is assigned to the copy a Container stores; templates keep uuid.Nil.
func (d *Drawable) ID() uuid.UUID {
	return d.id
}

// clone copies d under a fresh id. The copy is unplaced and shares no
// buffers with d.
func (d *Drawable) clone() *Drawable {
	cp := *d
	cp.id = uuid.New()
	cp.world = mgl32.Mat4{}
	cp.placed = false
	cp.record = RenderRecord{}
	if d.Quad != nil {
		q := *d.Quad
		cp.Quad = &q
	}
	return &cp
}

// World returns the transform set by the last traversal, or identity.
func (d *Drawable) World() mgl32.Mat4 {
	if !d.placed {
		return mgl32.Ident4()
	}
	return d.world
}

// SetWorld places the drawable; node traversal calls it.
func (d *Drawable) SetWorld(m mgl32.Mat4) {
	d.world = m
	d.placed = true
}

// Center returns the world-space bounding sphere center.
func (d *Drawable) Center() mgl32.Vec3 {
	if !d.placed {
		return d.LocalCenter
	}
	return d.world.Mul4x1(d.LocalCenter.Vec4(1)).Vec3()
}

// Radius returns the world-space bounding radius, scaled by the largest axis
// scale of the world transform.
func (d *Drawable) Radius() float32 {
	if !d.placed {
		return d.LocalRadius
	}
	s := max(d.world.Col(0).Vec3().Len(), d.world.Col(1).Vec3().Len(), d.world.Col(2).Vec3().Len())
	return d.LocalRadius * s
}

// RenderRecord refreshes and returns the drawable's render record. The
// record is owned by the drawable and reused between calls.
func (d *Drawable) RenderRecord(a *DrawableAttributes) *RenderRecord {
	r := &d.record
	r.Kind = d.Kind
	r.VertexArray = d.VertexArray
	r.ElementCount = d.ElementCount
	r.DrawOrder = d.DrawOrder
	r.Uniforms = r.Uniforms[:0]
	r.Textures = r.Textures[:0]

	r.model = d.World()
	r.color = d.Color
	r.Uniforms = append(r.Uniforms,
		Uniform{ID: a.Transform, Data: r.model[:]},
		Uniform{ID: a.Color, Data: r.color[:]},
	)

	switch d.Kind {
	case KindModel:
		slots := [3]strid.ID{a.Tex0, a.Tex1, a.Tex2}
		for i, tex := range d.Textures {
			if tex != 0 {
				r.Textures = append(r.Textures, Texture{ID: slots[i], Handle: tex, Target: Texture2D})
			}
		}
	case KindQuad, KindText:
		if d.Textures[0] != 0 {
			r.Textures = append(r.Textures, Texture{ID: a.Tex0, Handle: d.Textures[0], Target: Texture2D})
		}
	}
	return r
}
