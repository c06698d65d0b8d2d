package scene

import (
	"github.com/google/uuid"
)

// Handle refers to a drawable inside a Container.
type Handle struct {
	Group string
	ID    uuid.UUID
}

// Container groups a node's drawables by draw-group name.
type Container struct {
	groups map[string][]*Drawable
	order  []string
}

func NewContainer() *Container {
	return &Container{groups: make(map[string][]*Drawable)}
}

// Insert stores a copy of d in group and returns the handle of the copy.
// Later changes to d do not reach the container; use Get to edit the
// stored drawable.
func (c *Container) Insert(group string, d *Drawable) Handle {
	if c.groups == nil {
		c.groups = make(map[string][]*Drawable)
	}
	if _, ok := c.groups[group]; !ok {
		c.order = append(c.order, group)
	}
	cp := d.clone()
	c.groups[group] = append(c.groups[group], cp)
	return Handle{Group: group, ID: cp.id}
}

func (c *Container) Get(h Handle) *Drawable {
	for _, d := range c.groups[h.Group] {
		if d.id == h.ID {
			return d
		}
	}
	return nil
}

// Erase removes the drawable behind h, keeping the order of the rest.
func (c *Container) Erase(h Handle) bool {
	list := c.groups[h.Group]
	for i, d := range list {
		if d.id == h.ID {
			c.groups[h.Group] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Group returns the drawables of one group in insertion order.
func (c *Container) Group(name string) []*Drawable {
	return c.groups[name]
}

// Groups returns group names in first-insertion order.
func (c *Container) Groups() []string {
	return c.order
}

func (c *Container) Len() int {
	n := 0
	for _, list := range c.groups {
		n += len(list)
	}
	return n
}

func (c *Container) Clear() {
	clear(c.groups)
	c.order = c.order[:0]
}

// ForEach visits every drawable, group by group, until fn returns false.
func (c *Container) ForEach(fn func(group string, d *Drawable) bool) {
	for _, g := range c.order {
		for _, d := range c.groups[g] {
			if !fn(g, d) {
				return
			}
		}
	}
}
