// Package explicit implements a mutable priority queue as an explicit d-ary
// heap: the same complete-tree shape as package implicit, but linked by
// pointers instead of an array. Preferred when the capacity is large enough
// that a contiguous handle array is undesirable.
//
// Every node carries its parent, its first child, and its two neighbours in
// the sibling list. The first child's prev pointer leads back to the
// parent; the last child's next pointer is nil.
package explicit

import (
	"fmt"

	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// Node holds an inserted element, as well as pointers to maintain tree
// structure. Acts as a handle to clients for the purpose of mutability.
type Node struct {
	parent *Node
	child  *Node // first child
	prev   *Node // previous sibling, or parent when first child
	next   *Node // next sibling

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable, pointer-based d-ary heap.
type Heap struct {
	root  *Node
	size  uint32
	arity uint32

	pool *slab.Pool[Node]
}

var _ pq.Queue[Node] = (*Heap)(nil)

// New creates an empty heap drawing nodes from pool. arity must be one of
// 2, 4, 8 or 16.
func New(pool *slab.Pool[Node], arity uint32) *Heap {
	switch arity {
	case 2, 4, 8, 16:
	default:
		panic(fmt.Sprintf("explicit: unsupported arity %d", arity))
	}

	return &Heap{arity: arity, pool: pool}
}

// Arity returns the heap's branching factor.
func (h *Heap) Arity() uint32 { return h.arity }

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

// Insert places a new node in the next open position of the tree and sifts
// it up to its proper place.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key

	if h.root == nil {
		h.root = node
	} else {
		parent := h.findNode(parentOrdinal(h.size+1, h.arity))
		h.attachLast(parent, node)
	}

	h.size++
	h.siftUp(node)

	return node
}

// FindMin returns the root, or nil when the heap is empty.
func (h *Heap) FindMin() *Node {
	if h.size == 0 {
		return nil
	}
	return h.root
}

// DeleteMin removes the root and returns its key.
func (h *Heap) DeleteMin() pq.Key {
	if h.size == 0 {
		return 0
	}
	return h.Delete(h.root)
}

// Delete removes an arbitrary node. The node swaps places with the last
// node of the tree, is detached there, and the swapped-in node is sifted in
// whichever direction restores heap order.
func (h *Heap) Delete(node *Node) pq.Key {
	key := node.key

	last := h.findNode(h.size)
	h.swap(node, last)

	// node now occupies the final tree position; detach it.
	if node.prev != nil {
		if node.prev.child == node {
			node.prev.child = nil
		} else {
			node.prev.next = nil
		}
	}

	h.pool.Free(node)
	h.size--

	if h.size == 0 {
		h.root = nil
	} else if node != last {
		if last.parent != nil && last.key < last.parent.key {
			h.siftUp(last)
		} else {
			h.siftDown(last)
		}
	}

	return key
}

// DecreaseKey lowers node's key and sifts it up.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "explicit: decrease-key from %d to %d", node.key, key)

	node.key = key
	h.siftUp(node)
}

// siftUp repeatedly swaps node with its parent while it violates heap
// order.
func (h *Heap) siftUp(node *Node) {
	for node.parent != nil && node.key < node.parent.key {
		h.swap(node, node.parent)
	}
}

// siftDown repeatedly swaps node with its smallest child while it violates
// heap order. Equal-key children are resolved toward the leftmost.
func (h *Heap) siftDown(node *Node) {
	for {
		smallest := node.child
		if smallest == nil {
			return
		}
		for c := smallest.next; c != nil; c = c.next {
			if c.key < smallest.key {
				smallest = c
			}
		}

		if smallest.key >= node.key {
			return
		}
		h.swap(smallest, node)
	}
}

// attachLast appends node as parent's last child.
func (h *Heap) attachLast(parent, node *Node) {
	node.parent = parent

	if parent.child == nil {
		parent.child = node
		node.prev = parent
		return
	}

	last := parent.child
	for last.next != nil {
		last = last.next
	}
	last.next = node
	node.prev = last
}

// parentOrdinal returns the 1-based tree position of the parent of position
// n in a complete d-ary tree.
func parentOrdinal(n, d uint32) uint32 {
	return (n-2)/d + 1
}

// findNode walks from the root to the node at 1-based position n, selecting
// the child at each level by the base-d digits of the path.
func (h *Heap) findNode(n uint32) *Node {
	// Positions fit in uint32, so the path has at most 32 digits even for
	// arity 2.
	var digits [32]uint32
	depth := 0
	for n > 1 {
		digits[depth] = (n - 2) % h.arity
		n = parentOrdinal(n, h.arity)
		depth++
	}

	current := h.root
	for i := depth - 1; i >= 0; i-- {
		next := current.child
		for step := uint32(0); step < digits[i] && next.next != nil; step++ {
			next = next.next
		}
		current = next
	}

	return current
}

// swap exchanges the tree positions of a and b, fixing every neighbouring
// pointer. The nodes keep their items and keys; only structure moves.
//
// Sibling links of both nodes must be repaired before either child list is
// walked: when a and b are parent and child, the demoted parent sits inside
// the promoted node's child list and is only reachable once its own links
// are in place.
func (h *Heap) swap(a, b *Node) {
	if a == nil || b == nil || a == b {
		return
	}

	a.parent, b.parent = b.parent, a.parent
	a.child, b.child = b.child, a.child
	a.prev, b.prev = b.prev, a.prev
	a.next, b.next = b.next, a.next

	// Adjacent nodes end up pointing at themselves after the field
	// exchange; redirect those links at the counterpart.
	fixSelf(a, b)
	fixSelf(b, a)

	h.fixLinks(a, b)
	h.fixLinks(b, a)

	for c := a.child; c != nil; c = c.next {
		c.parent = a
	}
	for c := b.child; c != nil; c = c.next {
		c.parent = b
	}
	if a.child != nil {
		a.child.prev = a
	}
	if b.child != nil {
		b.child.prev = b
	}

	if h.root == a {
		h.root = b
	} else if h.root == b {
		h.root = a
	}
}

func fixSelf(n, other *Node) {
	if n.parent == n {
		n.parent = other
	}
	if n.child == n {
		n.child = other
	}
	if n.prev == n {
		n.prev = other
	}
	if n.next == n {
		n.next = other
	}
}

// fixLinks repairs the sibling back pointers around n after n has taken
// over other's old links.
func (h *Heap) fixLinks(n, other *Node) {
	if n.prev != nil {
		if n.prev == n.parent {
			n.prev.child = n
		} else {
			n.prev.next = n
		}
	}
	if n.next != nil {
		n.next.prev = n
	}
}
