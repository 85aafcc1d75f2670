package scene

import (
	"github.com/hq2318768188/FFEngine/engine/core"
)

/**
 * @brief Appends child to this node's children. Self insertion, duplicates,
 * children that already have a parent and children that are ancestors of
 * this node are rejected and nothing changes.
 */
func (n *Node) AddChild(child Object) error {
	c := child.AsNode()
	if c == n {
		return core.ErrSelfChild
	}
	for _, existing := range n.children {
		if existing.AsNode() == c {
			return core.ErrDuplicateChild
		}
	}
	if c.parent != nil {
		return core.ErrAlreadyParented
	}
	for ancestor := n.parent; ancestor != nil; ancestor = ancestor.AsNode().parent {
		if ancestor.AsNode() == c {
			return core.ErrCycle
		}
	}

	c.parent = n.outer
	if c.parent == nil {
		c.parent = n
	}
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child, keeping the order of the remaining children.
func (n *Node) RemoveChild(child Object) bool {
	c := child.AsNode()
	for i, existing := range n.children {
		if existing.AsNode() == c {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// GetChildren returns the children in insertion order. The slice must not be modified.
func (n *Node) GetChildren() []Object {
	return n.children
}

func (n *Node) GetParent() Object {
	return n.parent
}

// RemoveFromParent detaches the node from its parent, if any.
func (n *Node) RemoveFromParent() bool {
	if n.parent == nil {
		return false
	}
	return n.parent.AsNode().RemoveChild(n)
}

/**
 * @brief Detaches the node and publishes its disposal. The event carries
 * only the id. Children are left alone; dispose them explicitly if they are
 * not held elsewhere.
 */
func (n *Node) Dispose() {
	n.disposeOnce.Do(func() {
		n.RemoveFromParent()
		if n.bus != nil {
			n.bus.Dispatch(&core.Event{
				Name:     core.EVENT_OBJECT_DISPOSE,
				TargetID: n.ID,
			})
		}
	})
}

// Traverse visits object and its descendants depth first, parents first.
func Traverse(object Object, fn func(Object)) {
	fn(object)
	for _, child := range object.AsNode().children {
		Traverse(child, fn)
	}
}

// TraverseVisible is Traverse that skips invisible subtrees.
func TraverseVisible(object Object, fn func(Object)) {
	if !object.AsNode().Visible {
		return
	}
	fn(object)
	for _, child := range object.AsNode().children {
		TraverseVisible(child, fn)
	}
}
