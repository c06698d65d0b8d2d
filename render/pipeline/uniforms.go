package pipeline

import (
	"github.com/gekko3d/drift/render/scene"
	"github.com/gekko3d/drift/render/strid"
)

// Uniforms stores the values bound to passes: pass-scoped entries shadow
// global ones of the same name. Stored data is copied, so callers may reuse
// their buffers.
type Uniforms struct {
	global     map[strid.ID]scene.Uniform
	globalTex  map[strid.ID]scene.Texture
	perPass    map[strid.ID]map[strid.ID]scene.Uniform
	perPassTex map[strid.ID]map[strid.ID]scene.Texture
}

func NewUniforms() *Uniforms {
	return &Uniforms{
		global:     make(map[strid.ID]scene.Uniform),
		globalTex:  make(map[strid.ID]scene.Texture),
		perPass:    make(map[strid.ID]map[strid.ID]scene.Uniform),
		perPassTex: make(map[strid.ID]map[strid.ID]scene.Texture),
	}
}

// NewUniformsFor seeds the store with the uniforms each pass declares in
// its configuration.
func NewUniformsFor(ids *strid.Map, table *PassTable, declared map[string]map[string][]float32) *Uniforms {
	u := NewUniforms()
	for _, p := range table.Passes() {
		for name, data := range declared[p.Name] {
			u.SetPass(p.ID, scene.Uniform{ID: ids.Add(name), Data: data})
		}
	}
	return u
}

func store(m map[strid.ID]scene.Uniform, v scene.Uniform) {
	prev := m[v.ID]
	prev.ID = v.ID
	prev.Data = append(prev.Data[:0], v.Data...)
	m[v.ID] = prev
}

func (u *Uniforms) SetGlobal(v scene.Uniform) {
	store(u.global, v)
}

func (u *Uniforms) Global(id strid.ID) (scene.Uniform, bool) {
	v, ok := u.global[id]
	return v, ok
}

func (u *Uniforms) SetGlobalTexture(t scene.Texture) {
	u.globalTex[t.ID] = t
}

func (u *Uniforms) GlobalTexture(id strid.ID) (scene.Texture, bool) {
	t, ok := u.globalTex[id]
	return t, ok
}

func (u *Uniforms) SetPass(pass strid.ID, v scene.Uniform) {
	m := u.perPass[pass]
	if m == nil {
		m = make(map[strid.ID]scene.Uniform)
		u.perPass[pass] = m
	}
	store(m, v)
}

// Pass returns a pass-scoped uniform without falling back to globals.
func (u *Uniforms) Pass(pass, id strid.ID) (scene.Uniform, bool) {
	v, ok := u.perPass[pass][id]
	return v, ok
}

func (u *Uniforms) SetPassTexture(pass strid.ID, t scene.Texture) {
	m := u.perPassTex[pass]
	if m == nil {
		m = make(map[strid.ID]scene.Texture)
		u.perPassTex[pass] = m
	}
	m[t.ID] = t
}

func (u *Uniforms) PassTexture(pass, id strid.ID) (scene.Texture, bool) {
	t, ok := u.perPassTex[pass][id]
	return t, ok
}

// Lookup resolves a uniform for a pass, falling back to the global value.
func (u *Uniforms) Lookup(pass, id strid.ID) (scene.Uniform, bool) {
	if v, ok := u.perPass[pass][id]; ok {
		return v, true
	}
	return u.Global(id)
}

// LookupTexture resolves a texture for a pass, falling back to globals.
func (u *Uniforms) LookupTexture(pass, id strid.ID) (scene.Texture, bool) {
	if t, ok := u.perPassTex[pass][id]; ok {
		return t, true
	}
	return u.GlobalTexture(id)
}

// PassUniforms returns the pass-scoped uniforms of one pass.
func (u *Uniforms) PassUniforms(pass strid.ID) map[strid.ID]scene.Uniform {
	return u.perPass[pass]
}

func (u *Uniforms) Globals() map[strid.ID]scene.Uniform {
	return u.global
}
