package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Visitor receives every drawable reached by Node.Traverse. The drawable has
// already been placed at its world transform.
type Visitor interface {
	Visit(group string, d *Drawable)
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(group string, d *Drawable)

func (f VisitorFunc) Visit(group string, d *Drawable) { f(group, d) }

// Node is a scene-graph node: a local transform, drawables, and children.
type Node struct {
	ID        uuid.UUID
	Transform Transform

	drawables *Container
	children  []*Node
}

func NewNode() *Node {
	return &Node{
		ID:        uuid.New(),
		Transform: NewTransform(),
		drawables: NewContainer(),
	}
}

func (n *Node) Drawables() *Container {
	if n.drawables == nil {
		n.drawables = NewContainer()
	}
	return n.drawables
}

func (n *Node) AddChild(child *Node) *Node {
	n.children = append(n.children, child)
	return child
}

func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) Children() []*Node {
	return n.children
}

// Traverse places every drawable below n at parent * local transforms and
// hands it to v, depth first, own drawables before children.
func (n *Node) Traverse(v Visitor, parent mgl32.Mat4) {
	world := parent.Mul4(n.Transform.ObjectToWorld())
	if n.drawables != nil {
		for _, group := range n.drawables.Groups() {
			for _, d := range n.drawables.Group(group) {
				d.SetWorld(world)
				v.Visit(group, d)
			}
		}
	}
	for _, c := range n.children {
		c.Traverse(v, world)
	}
}
