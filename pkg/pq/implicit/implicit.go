// Package implicit implements a mutable priority queue as an implicit d-ary
// heap: a complete d-ary tree stored in an array, with a back-index on every
// node so handles survive the element movement that sifting causes.
//
// Branching factors of 2, 4, 8 and 16 are supported. Wider nodes trade
// deeper sift-up chains for shorter, scan-heavier sift-down chains.
package implicit

import (
	"fmt"

	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// Node holds an inserted element. It acts as a handle to clients for the
// purpose of mutability; the index field tracks the node's current slot in
// the tree array.
type Node struct {
	index uint32

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable d-ary heap backed by a single array.
type Heap struct {
	// Array of the complete tree; slots 0..size-1 are live.
	nodes []*Node

	size  uint32
	arity uint32

	pool *slab.Pool[Node]
}

var _ pq.Queue[Node] = (*Heap)(nil)

// New creates an empty heap drawing nodes from pool. The heap can hold at
// most pool.Cap() elements. arity must be one of 2, 4, 8 or 16.
func New(pool *slab.Pool[Node], arity uint32) *Heap {
	switch arity {
	case 2, 4, 8, 16:
	default:
		panic(fmt.Sprintf("implicit: unsupported arity %d", arity))
	}

	return &Heap{
		nodes: make([]*Node, pool.Cap()),
		arity: arity,
		pool:  pool,
	}
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

// Clear returns every live node to the pool. All handles become invalid.
func (h *Heap) Clear() {
	for i := uint32(0); i < h.size; i++ {
		h.pool.Free(h.nodes[i])
		h.nodes[i] = nil
	}
	h.size = 0
}

// Destroy clears the heap and drops the tree array. The pool itself belongs
// to the caller.
func (h *Heap) Destroy() {
	h.Clear()
	h.nodes = nil
}

// Insert appends a new node in the next open slot and sifts it up to its
// proper place.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key
	node.index = h.size

	h.nodes[h.size] = node
	h.size++

	h.siftUp(node)

	return node
}

// FindMin returns the root, or nil when the heap is empty.
func (h *Heap) FindMin() *Node {
	if h.size == 0 {
		return nil
	}
	return h.nodes[0]
}

// DeleteMin removes the root and returns its key.
func (h *Heap) DeleteMin() pq.Key {
	if h.size == 0 {
		return 0
	}
	return h.Delete(h.nodes[0])
}

// Delete removes an arbitrary node: the last element takes over the vacated
// slot and is sifted in whichever direction restores heap order.
func (h *Heap) Delete(node *Node) pq.Key {
	key := node.key
	slot := node.index

	h.size--
	last := h.nodes[h.size]
	h.nodes[h.size] = nil

	h.pool.Free(node)

	if last != node {
		h.dump(last, slot)
		if slot > 0 && last.key < h.nodes[(slot-1)/h.arity].key {
			h.siftUp(last)
		} else {
			h.siftDown(last)
		}
	}

	return key
}

// DecreaseKey lowers node's key and sifts it up.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "implicit: decrease-key from %d to %d", node.key, key)

	node.key = key
	h.siftUp(node)
}

// push copies the node at src into dst. This is a single-sided swap which
// leaves a duplicate record at src, to be overwritten later in the sift
// chain; a final dump finishes the simulated swapping effect.
func (h *Heap) push(src, dst uint32) {
	if src >= h.size || dst >= h.size || src == dst {
		return
	}

	h.nodes[dst] = h.nodes[src]
	h.nodes[dst].index = dst
}

// dump places node into slot dst, updating both the array and the node's
// back-index.
func (h *Heap) dump(node *Node, dst uint32) {
	h.nodes[dst] = node
	node.index = dst
}

// siftUp pulls a node that may sit below its proper position up to the
// correct slot, writing each displaced parent exactly once.
func (h *Heap) siftUp(node *Node) {
	i := node.index
	for i > 0 {
		parent := (i - 1) / h.arity
		if node.key >= h.nodes[parent].key {
			break
		}
		h.push(parent, i)
		i = parent
	}
	h.dump(node, i)
}

// siftDown pushes a node that may sit above its proper position down to the
// correct slot.
func (h *Heap) siftDown(node *Node) {
	i := node.index
	for {
		child := h.minChild(i)
		if child == 0 || h.nodes[child].key >= node.key {
			break
		}
		h.push(child, i)
		i = child
	}
	h.dump(node, i)
}

// minChild returns the slot of i's smallest child, scanning the child block
// left to right and keeping the leftmost on equal keys. Returns 0 when i is
// a leaf.
func (h *Heap) minChild(i uint32) uint32 {
	first := h.arity*i + 1
	if first >= h.size {
		return 0
	}

	last := first + h.arity - 1
	if last >= h.size {
		last = h.size - 1
	}

	best := first
	for j := first + 1; j <= last; j++ {
		if h.nodes[j].key < h.nodes[best].key {
			best = j
		}
	}

	return best
}
