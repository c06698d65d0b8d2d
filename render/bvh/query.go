package bvh

// Len returns the number of items in the tree.
func (t *Tree[T]) Len() int {
	return len(t.items)
}

// Nodes exposes the flattened hierarchy; node 0 is the root.
func (t *Tree[T]) Nodes() []Node {
	return t.nodes
}

// Query appends to out every item the predicate accepts, in tree order.
// Subtrees whose bounds fail Overlaps are skipped without visiting items.
func (t *Tree[T]) Query(p Predicate, out []T) []T {
	if len(t.nodes) == 0 {
		return out
	}
	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		n := &t.nodes[stack[sp]]
		c, r := n.Sphere()
		if !p.Overlaps(c, r) {
			continue
		}
		if n.IsLeaf() {
			for _, it := range t.items[n.LeafFirst : n.LeafFirst+n.LeafCount] {
				if p.Visible(it.Center(), it.Radius()) {
					out = append(out, it)
				}
			}
			continue
		}
		// right first so the left subtree is visited first
		stack[sp] = n.Right
		sp++
		stack[sp] = n.Left
		sp++
	}
	return out
}

// ForEach calls fn for every item in tree order until fn returns false.
func (t *Tree[T]) ForEach(fn func(T) bool) {
	for _, it := range t.items {
		if !fn(it) {
			return
		}
	}
}
