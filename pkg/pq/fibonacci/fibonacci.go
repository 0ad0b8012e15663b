// Package fibonacci implements a mutable priority queue as a Fibonacci
// heap: a forest of heap-ordered trees held in a circular root list.
// Decrease-key cuts the affected subtree loose and cascades cuts through
// marked ancestors; delete-min consolidates the forest so at most one root
// of each rank remains.
package fibonacci

import (
	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// maxRank bounds tree ranks. A rank-k tree holds at least F(k+2) nodes, so
// 64 slots cover any heap addressable with 32-bit identifiers.
const maxRank = 64

// Node holds an inserted element, as well as pointers to maintain tree
// structure. Acts as a handle to clients for the purpose of mutability.
// Siblings form a circular doubly linked list; children hang off a single
// first-child pointer.
type Node struct {
	parent *Node
	child  *Node
	prev   *Node
	next   *Node

	rank   uint32
	marked bool

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable Fibonacci heap.
type Heap struct {
	// The minimum keeps the root ring; every traversal of the ring starts
	// and ends here.
	minimum *Node
	size    uint32

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
	h.minimum = nil
}

// Insert splices a singleton into the root list.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key
	node.prev = node
	node.next = node
	h.size++

	h.minimum = appendRings(h.minimum, node)
	if node.key < h.minimum.key {
		h.minimum = node
	}

	return node
}

// FindMin returns a root holding the minimum key, or nil when empty.
func (h *Heap) FindMin() *Node {
	if h.Empty() {
		return nil
	}
	return h.minimum
}

// DeleteMin removes the minimum, promotes its children to roots and
// consolidates the forest.
func (h *Heap) DeleteMin() pq.Key {
	z := h.minimum
	if z == nil {
		return 0
	}
	key := z.key

	h.promoteChildren(z)

	if z.next == z {
		h.minimum = nil
	} else {
		z.prev.next = z.next
		z.next.prev = z.prev
		h.minimum = z.next
		h.consolidate()
	}

	h.pool.Free(z)
	h.size--

	return key
}

// Delete removes an arbitrary node: a decrease-key-style cut brings it to
// the roots, then it is removed like a minimum.
func (h *Heap) Delete(node *Node) pq.Key {
	if node == h.minimum {
		return h.DeleteMin()
	}

	key := node.key

	if p := node.parent; p != nil {
		h.cut(node)
		h.cascadingCut(p)
	}

	h.promoteChildren(node)

	// node is a root distinct from the minimum, so the ring keeps at
	// least one member after unlinking.
	node.prev.next = node.next
	node.next.prev = node.prev
	h.consolidate()

	h.pool.Free(node)
	h.size--

	return key
}

// DecreaseKey lowers node's key, cutting it loose when heap order with its
// parent breaks.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "fibonacci: decrease-key from %d to %d", node.key, key)

	node.key = key

	if p := node.parent; p != nil && node.key < p.key {
		h.cut(node)
		h.cascadingCut(p)
	}

	if node.parent == nil && node.key < h.minimum.key {
		h.minimum = node
	}
}

// promoteChildren moves every child of z into the root ring.
func (h *Heap) promoteChildren(z *Node) {
	if z.child == nil {
		return
	}

	c := z.child
	for {
		c.parent = nil
		c = c.next
		if c == z.child {
			break
		}
	}

	h.minimum = appendRings(h.minimum, z.child)
	z.child = nil
	z.rank = 0
}

// cut detaches node from its parent and splices it into the root ring,
// clearing its mark.
func (h *Heap) cut(node *Node) {
	p := node.parent

	if node.next == node {
		p.child = nil
	} else {
		node.prev.next = node.next
		node.next.prev = node.prev
		if p.child == node {
			p.child = node.next
		}
	}
	p.rank--

	node.parent = nil
	node.marked = false
	node.prev = node
	node.next = node

	h.minimum = appendRings(h.minimum, node)
}

// cascadingCut walks up from a node that just lost a child: an unmarked
// ancestor is marked, a marked one is cut as well.
func (h *Heap) cascadingCut(node *Node) {
	for node.parent != nil {
		if !node.marked {
			node.marked = true
			return
		}
		p := node.parent
		h.cut(node)
		node = p
	}
}

// consolidate links roots of equal rank until at most one root per rank
// remains, then rebuilds the root ring and locates the new minimum. The
// rank table is only ever populated here.
func (h *Heap) consolidate() {
	var ranks [maxRank]*Node

	// Sever the ring into a nil-terminated list so roots can be detached
	// as they are visited.
	head := h.minimum
	head.prev.next = nil

	for cur := head; cur != nil; {
		next := cur.next

		x := cur
		x.prev = x
		x.next = x
		for ranks[x.rank] != nil {
			y := ranks[x.rank]
			ranks[x.rank] = nil
			x = link(x, y)
		}
		ranks[x.rank] = x

		cur = next
	}

	h.minimum = nil
	for _, r := range &ranks {
		if r == nil {
			continue
		}
		r.prev = r
		r.next = r
		h.minimum = appendRings(h.minimum, r)
		if r.key < h.minimum.key {
			h.minimum = r
		}
	}
}

// link makes the larger-keyed of two isolated roots a child of the other,
// unmarking it. Ties keep the first argument on top.
func link(a, b *Node) *Node {
	parent, child := a, b
	if b.key < a.key {
		parent, child = b, a
	}

	child.parent = parent
	child.marked = false
	parent.child = appendRings(parent.child, child)
	parent.rank++

	return parent
}

// appendRings concatenates two circular lists and returns the head of the
// combined ring.
func appendRings(a, b *Node) *Node {
	if a == nil {
		return b
	}
	if b == nil || a == b {
		return a
	}

	aPrev := a.prev
	bPrev := b.prev

	aPrev.next = b
	bPrev.next = a
	a.prev = bPrev
	b.prev = aPrev

	return a
}
