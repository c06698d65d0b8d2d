// Package bvh builds a bounding-volume hierarchy over bounded items and
// answers visibility queries against it.
package bvh

import (
	"math"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounded is anything with a world-space bounding sphere.
type Bounded interface {
	Center() mgl32.Vec3
	Radius() float32
}

// Predicate tests bounding spheres. Overlaps is asked about interior nodes and
// may be conservative; Visible decides each item.
type Predicate interface {
	Overlaps(center mgl32.Vec3, radius float32) bool
	Visible(center mgl32.Vec3, radius float32) bool
}

// Node is one tree node. Leaves have Left == Right == -1 and reference
// LeafCount items starting at LeafFirst in the tree's item order.
type Node struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

// IsLeaf reports whether the node references items directly.
func (n *Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// Sphere returns the sphere enclosing the node's box.
func (n *Node) Sphere() (mgl32.Vec3, float32) {
	center := n.Min.Add(n.Max).Mul(0.5)
	return center, n.Max.Sub(center).Len()
}

type item struct {
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Centroid mgl32.Vec3
	Index    int
}

// Tree is an immutable hierarchy over a fixed item set. Rebuild it when the
// set changes.
type Tree[T Bounded] struct {
	nodes []Node
	items []T
}

// MaxLeafSize is the number of items below which a node stops splitting.
const MaxLeafSize = 4

// Build creates a tree over items using median splits on the longest axis.
func Build[T Bounded](items []T) *Tree[T] {
	t := &Tree[T]{}
	if len(items) == 0 {
		return t
	}

	work := make([]item, len(items))
	for i, it := range items {
		c, r := it.Center(), boundRadius(it.Radius())
		ext := mgl32.Vec3{r, r, r}
		work[i] = item{Min: c.Sub(ext), Max: c.Add(ext), Centroid: c, Index: i}
	}

	t.nodes = make([]Node, 0, 2*len(items)/MaxLeafSize+1)
	t.recursiveBuild(work, 0)

	t.items = make([]T, len(work))
	for i, it := range work {
		t.items[i] = items[it.Index]
	}
	return t
}

func boundRadius(r float32) float32 {
	if r < 0 || math32.IsNaN(r) {
		return 0
	}
	return r
}

// recursiveBuild sorts items in place; offset is the position of items[0] in
// the full item slice.
func (t *Tree[T]) recursiveBuild(items []item, offset int) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	// Compute bounds
	minB := mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}
	maxB := mgl32.Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))}
	for _, it := range items {
		minB = mgl32.Vec3{min(minB.X(), it.Min.X()), min(minB.Y(), it.Min.Y()), min(minB.Z(), it.Min.Z())}
		maxB = mgl32.Vec3{max(maxB.X(), it.Max.X()), max(maxB.Y(), it.Max.Y()), max(maxB.Z(), it.Max.Z())}
	}
	t.nodes[idx].Min = minB
	t.nodes[idx].Max = maxB

	if len(items) <= MaxLeafSize {
		t.nodes[idx].LeafFirst = int32(offset)
		t.nodes[idx].LeafCount = int32(len(items))
		return idx
	}

	// Split
	extent := maxB.Sub(minB)
	axis := 0
	if extent.Y() > extent.X() {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Centroid[axis] < items[j].Centroid[axis]
	})

	mid := len(items) / 2
	left := t.recursiveBuild(items[:mid], offset)
	right := t.recursiveBuild(items[mid:], offset+mid)
	t.nodes[idx].Left = left
	t.nodes[idx].Right = right

	return idx
}
