// Package pipeline turns the configured passes and the current scene into a
// per-frame draw map: for every enabled pass and draw group, the list of
// render records that pass should draw.
package pipeline

import (
	"github.com/gekko3d/drift/render/passes"
	"github.com/gekko3d/drift/render/strid"
)

// Pass is one configured pass as the pipeline sees it.
type Pass struct {
	ID         strid.ID
	Name       string
	Enabled    bool
	DrawGroups []strid.ID
	Fields     map[string]string
	// Camera is the interned "camera" field, or strid.None.
	Camera strid.ID
}

// PassTable holds the active passes in configuration order.
type PassTable struct {
	passes []*Pass
	byID   map[strid.ID]*Pass
}

// NewPassTable interns the pass, draw group and camera names of infos.
func NewPassTable(ids *strid.Map, infos []passes.Info) *PassTable {
	t := &PassTable{byID: make(map[strid.ID]*Pass, len(infos))}
	for i := range infos {
		info := &infos[i]
		p := &Pass{
			ID:      ids.Add(info.Name),
			Name:    info.Name,
			Enabled: info.IsEnabled(),
			Fields:  make(map[string]string, len(info.Fields)),
		}
		for k, v := range info.Fields {
			p.Fields[k] = v
		}
		for _, g := range info.DrawGroups {
			p.DrawGroups = append(p.DrawGroups, ids.Add(g))
		}
		if cam, ok := info.Field(passes.FieldCamera); ok {
			p.Camera = ids.Add(cam)
		}
		t.passes = append(t.passes, p)
		t.byID[p.ID] = p
	}
	return t
}

// Passes returns every pass, enabled or not, in order.
func (t *PassTable) Passes() []*Pass {
	if t == nil {
		return nil
	}
	return t.passes
}

// Names returns the pass ids in order.
func (t *PassTable) Names() []strid.ID {
	if t == nil {
		return nil
	}
	out := make([]strid.ID, len(t.passes))
	for i, p := range t.passes {
		out[i] = p.ID
	}
	return out
}

func (t *PassTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.passes)
}

func (t *PassTable) Get(id strid.ID) *Pass {
	if t == nil {
		return nil
	}
	return t.byID[id]
}

func (t *PassTable) Enabled(id strid.ID) bool {
	p := t.Get(id)
	return p != nil && p.Enabled
}

// SetEnabled toggles a pass and reports whether it exists.
func (t *PassTable) SetEnabled(id strid.ID, enabled bool) bool {
	p := t.Get(id)
	if p == nil {
		return false
	}
	p.Enabled = enabled
	return true
}

func (t *PassTable) DrawGroups(id strid.ID) []strid.ID {
	if p := t.Get(id); p != nil {
		return p.DrawGroups
	}
	return nil
}

func (t *PassTable) Fields(id strid.ID) map[string]string {
	if p := t.Get(id); p != nil {
		return p.Fields
	}
	return nil
}

// Camera returns the pass camera, or strid.None for frustum-less passes.
func (t *PassTable) Camera(id strid.ID) strid.ID {
	if p := t.Get(id); p != nil {
		return p.Camera
	}
	return strid.None
}
