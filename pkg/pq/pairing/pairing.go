// Package pairing implements a mutable priority queue as a pairing heap: a
// single half-ordered multiway tree where merges are lazy and the work is
// paid on delete through a two-pass combine of the orphaned children.
package pairing

import (
	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// Node holds an inserted element, as well as pointers to maintain tree
// structure. Acts as a handle to clients for the purpose of mutability.
// Child lists are doubly linked; the first child's prev pointer leads back
// to the parent and the last child's next pointer is nil.
type Node struct {
	child *Node
	prev  *Node
	next  *Node

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable pairing heap.
type Heap struct {
	root *Node
	size uint32

	pool *slab.Pool[Node]
}

var _ pq.Queue[Node] = (*Heap)(nil)

// New creates an empty heap drawing nodes from pool.
func New(pool *slab.Pool[Node]) *Heap {
	return &Heap{pool: pool}
}

// Size returns the number of live nodes.
func (h *Heap) Size() uint32 { return h.size }

// Empty reports whether the heap holds no nodes.
func (h *Heap) Empty() bool { return h.size == 0 }

// Key returns node's current key.
func (h *Heap) Key(node *Node) pq.Key { return node.key }

// Item returns the client item node was inserted with.
func (h *Heap) Item(node *Node) pq.Item { return node.item }

// Clear repeatedly deletes the minimum until the heap is empty.
func (h *Heap) Clear() {
	for !h.Empty() {
		h.DeleteMin()
	}
}

// Destroy clears the heap. The pool itself belongs to the caller.
func (h *Heap) Destroy() {
	h.Clear()
	h.root = nil
}

// Insert merges a fresh singleton with the root.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key
	h.size++

	h.root = merge(h.root, node)

	return node
}

// FindMin returns the root, or nil when the heap is empty.
func (h *Heap) FindMin() *Node {
	if h.Empty() {
		return nil
	}
	return h.root
}

// DeleteMin removes the root and returns its key.
func (h *Heap) DeleteMin() pq.Key {
	if h.Empty() {
		return 0
	}
	return h.Delete(h.root)
}

// Delete removes an arbitrary node, replacing it by the two-pass collapse
// of its children.
func (h *Heap) Delete(node *Node) pq.Key {
	key := node.key

	if node == h.root {
		h.root = collapse(node.child)
	} else {
		h.unlink(node)
		h.root = merge(h.root, collapse(node.child))
	}

	h.pool.Free(node)
	h.size--

	return key
}

// DecreaseKey lowers node's key. Unless node is the root, its subtree is
// detached and merged back at the top.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "pairing: decrease-key from %d to %d", node.key, key)

	node.key = key
	if node == h.root {
		return
	}

	h.unlink(node)
	h.root = merge(h.root, node)
}

// unlink detaches a non-root node from its sibling list, leaving its child
// pointer intact.
func (h *Heap) unlink(node *Node) {
	if node.prev.child == node {
		node.prev.child = node.next
	} else {
		node.prev.next = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	}
}

// merge makes the larger-keyed of two roots the first child of the other.
// Either may be nil.
func merge(a, b *Node) *Node {
	if a == nil {
		return b
	}
	if b == nil || a == b {
		return a
	}

	parent, child := a, b
	if b.key < a.key {
		parent, child = b, a
	}

	child.next = parent.child
	if parent.child != nil {
		parent.child.prev = child
	}
	child.prev = parent
	parent.child = child

	parent.next = nil
	parent.prev = nil

	return parent
}

// collapse combines a list of siblings into a single tree: a first pass
// merges consecutive pairs left to right, a second pass folds the results
// back right to left.
func collapse(node *Node) *Node {
	if node == nil {
		return nil
	}

	var tail *Node

	next := node
	for next != nil {
		a := next
		b := a.next
		if b != nil {
			next = b.next
			result := merge(a, b)
			// tack the result onto the end of the temporary list
			result.prev = tail
			tail = result
		} else {
			a.prev = tail
			tail = a
			break
		}
	}

	var result *Node
	for tail != nil {
		// trace back through to merge the list
		next = tail.prev
		result = merge(result, tail)
		tail = next
	}

	return result
}
