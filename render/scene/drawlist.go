package scene

import (
	"sort"

	"github.com/gekko3d/drift/render/bvh"
)

const (
	// TwoDimGroup holds screen-space overlays sorted by draw order.
	TwoDimGroup = "twodim"
	// FullScreenRectGroup always yields the full-screen quad.
	FullScreenRectGroup = "full screen rect"
)

// groupLists is an insertion-ordered group -> drawables map shared by the
// dynamic list and the static index.
type groupLists struct {
	lists map[string][]*Drawable
	order []string
}

func (g *groupLists) add(group string, d *Drawable) {
	if g.lists == nil {
		g.lists = make(map[string][]*Drawable)
	}
	if _, ok := g.lists[group]; !ok {
		g.order = append(g.order, group)
	}
	g.lists[group] = append(g.lists[group], d)
}

func (g *groupLists) clear() {
	clear(g.lists)
	g.order = g.order[:0]
}

// DrawList collects moving drawables per group, in traversal order. It is
// rebuilt every frame.
type DrawList struct {
	groupLists
}

func NewDrawList() *DrawList {
	return &DrawList{}
}

func (l *DrawList) Visit(group string, d *Drawable) {
	l.add(group, d)
}

func (l *DrawList) Group(name string) []*Drawable {
	return l.lists[name]
}

func (l *DrawList) Groups() []string {
	return l.order
}

func (l *DrawList) Len() int {
	n := 0
	for _, list := range l.lists {
		n += len(list)
	}
	return n
}

// SortByDrawOrder sorts one group ascending by draw order. Equal orders
// keep traversal order.
func (l *DrawList) SortByDrawOrder(group string) {
	list := l.lists[group]
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DrawOrder < list[j].DrawOrder
	})
}

func (l *DrawList) Clear() {
	l.clear()
}

// StaticIndex collects static drawables per group and keeps one BVH per
// group. Groups added since the last Optimize are answered by a linear scan.
type StaticIndex struct {
	groupLists
	trees map[string]*bvh.Tree[*Drawable]
	dirty map[string]bool
}

func NewStaticIndex() *StaticIndex {
	return &StaticIndex{
		trees: make(map[string]*bvh.Tree[*Drawable]),
		dirty: make(map[string]bool),
	}
}

func (s *StaticIndex) Visit(group string, d *Drawable) {
	if s.dirty == nil {
		s.trees = make(map[string]*bvh.Tree[*Drawable])
		s.dirty = make(map[string]bool)
	}
	s.add(group, d)
	s.dirty[group] = true
}

// Optimize rebuilds the hierarchy of every group changed since the last call.
func (s *StaticIndex) Optimize() {
	for group := range s.dirty {
		s.trees[group] = bvh.Build(s.lists[group])
	}
	clear(s.dirty)
}

func (s *StaticIndex) Group(name string) []*Drawable {
	return s.lists[name]
}

func (s *StaticIndex) Has(group string) bool {
	return len(s.lists[group]) > 0
}

func (s *StaticIndex) Groups() []string {
	return s.order
}

func (s *StaticIndex) Len() int {
	n := 0
	for _, list := range s.lists {
		n += len(list)
	}
	return n
}

// Query appends the drawables of group accepted by p to out.
func (s *StaticIndex) Query(group string, p bvh.Predicate, out []*Drawable) []*Drawable {
	if tree, ok := s.trees[group]; ok && !s.dirty[group] {
		return tree.Query(p, out)
	}
	for _, d := range s.lists[group] {
		if p.Visible(d.Center(), d.Radius()) {
			out = append(out, d)
		}
	}
	return out
}

func (s *StaticIndex) Clear() {
	s.clear()
	clear(s.trees)
	clear(s.dirty)
}

// NewFullScreenQuad returns the unit quad drawn by post-processing passes.
// Texture coordinates run top to bottom.
func NewFullScreenQuad() *Drawable {
	return NewQuad(QuadGeometry{
		X0: 0, Y0: 0, X1: 1, Y1: 1,
		U0: 0, V0: 1, U1: 1, V1: 0,
	}, 0)
}
