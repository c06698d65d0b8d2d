package pipeline

import (
	"github.com/gekko3d/drift/render/core"
	"github.com/gekko3d/drift/render/scene"
)

// Assembler builds the visible-item list of one draw group.
type Assembler struct {
	Attributes     scene.DrawableAttributes
	Dynamic        *scene.DrawList
	Static         *scene.StaticIndex
	FullScreenQuad *scene.Drawable

	// Visible and Culled count drawables since the last ResetCounts.
	Visible int
	Culled  int

	scratch []*scene.Drawable
}

func NewAssembler(attrs scene.DrawableAttributes) *Assembler {
	return &Assembler{
		Attributes:     attrs,
		Dynamic:        scene.NewDrawList(),
		Static:         scene.NewStaticIndex(),
		FullScreenQuad: scene.NewFullScreenQuad(),
	}
}

func (a *Assembler) ResetCounts() {
	a.Visible, a.Culled = 0, 0
}

// Assemble appends the records of group to out: dynamic drawables, then
// static ones, then the full-screen quad for the full-screen group. A nil
// predicate disables culling. The quad is never culled.
func (a *Assembler) Assemble(group string, pred core.Predicate, out []*scene.RenderRecord) []*scene.RenderRecord {
	if pred == nil {
		pred = core.AlwaysVisible
	}

	for _, d := range a.Dynamic.Group(group) {
		if pred.Visible(d.Center(), d.Radius()) {
			out = append(out, d.RenderRecord(&a.Attributes))
			a.Visible++
		} else {
			a.Culled++
		}
	}

	if a.Static.Has(group) {
		a.scratch = a.Static.Query(group, pred, a.scratch[:0])
		for _, d := range a.scratch {
			out = append(out, d.RenderRecord(&a.Attributes))
		}
		a.Visible += len(a.scratch)
		a.Culled += len(a.Static.Group(group)) - len(a.scratch)
		clear(a.scratch)
	}

	if group == scene.FullScreenRectGroup && a.FullScreenQuad != nil {
		out = append(out, a.FullScreenQuad.RenderRecord(&a.Attributes))
		a.Visible++
	}
	return out
}
