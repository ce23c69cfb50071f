package dom

import "strconv"

// IDAllocator hands out node IDs that are unique within one tree.
type IDAllocator struct {
	prefix string
	next   int
}

// NewIDAllocator creates an allocator producing prefix1, prefix2, ...
func NewIDAllocator(prefix string) *IDAllocator {
	if prefix == "" {
		prefix = "n"
	}
	return &IDAllocator{prefix: prefix}
}

// Assign gives every element under root (root included) that has no ID yet
// a fresh one.
func (a *IDAllocator) Assign(root *Node) {
	root.Walk(func(n *Node) bool {
		if n.Kind == KindElement && n.ID == "" {
			a.next++
			n.ID = a.prefix + strconv.Itoa(a.next)
		}
		return true
	})
}
