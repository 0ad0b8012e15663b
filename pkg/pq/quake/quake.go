// Package quake implements a mutable priority queue as a quake heap: a
// forest of tournament trees in which every non-leaf node has exactly two
// children, one of them a clone of itself. Roots are chained into a ring
// through their parent pointers. When the count of nodes at some height
// exceeds a fixed fraction of the count one level below, everything above
// the offending level is pruned back by fusing clones with their children.
package quake

import (
	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

const maxRank = 64

// alpha is the decay parameter: the heap tolerates at most alpha times as
// many nodes at height i as at height i-1.
const alpha = 0.75

// Node holds an inserted element, as well as pointers to maintain tree
// structure. Acts as a handle to clients for the purpose of mutability.
// For a root, parent links to the next root in the ring; clones created by
// linking carry copies of the winner's item and key.
type Node struct {
	parent *Node
	left   *Node
	right  *Node

	height uint32

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable quake heap.
//
// Linking doubles the records a live element can occupy, so the pool
// backing a quake heap must hold twice the maximum number of live
// elements.
type Heap struct {
	minimum *Node
	size    uint32

	// Height-indexed roots, used while fixing the ring after a delete.
	roots [maxRank]*Node
	// nodes[i] counts tree nodes of height i, clones included.
	nodes [maxRank]uint32

	highest   uint32
	violation uint32

	pool *slab.Pool[Node]
}

var _ pq.Queue[Node] = (*Heap)(nil)

// New creates an empty heap drawing nodes from pool.
func New(pool *slab.Pool[Node]) *Heap {
	return &Heap{pool: pool}
}

// Size returns the number of live elements (clones do not count).
func (h *Heap) Size() uint32 { return h.size }

// Empty reports whether the heap holds no elements.
func (h *Heap) Empty() bool { return h.size == 0 }

// Key returns node's current key.
func (h *Heap) Key(node *Node) pq.Key { return node.key }

// Item returns the client item node was inserted with.
func (h *Heap) Item(node *Node) pq.Item { return node.item }

// Clear repeatedly deletes the minimum until the heap is empty, then
// resets the level counters.
func (h *Heap) Clear() {
	for !h.Empty() {
		h.DeleteMin()
	}

	h.minimum = nil
	h.roots = [maxRank]*Node{}
	h.nodes = [maxRank]uint32{}
	h.highest = 0
	h.violation = 0
}

// Destroy clears the heap. The pool itself belongs to the caller.
func (h *Heap) Destroy() {
	h.Clear()
}

// Insert makes the new element a height-0 root.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key
	node.parent = node

	h.makeRoot(node)
	h.size++
	h.nodes[0]++

	return node
}

// FindMin returns a root holding the minimum key, or nil when empty.
func (h *Heap) FindMin() *Node {
	if h.Empty() {
		return nil
	}
	return h.minimum
}

// DeleteMin removes the minimum and returns its key.
func (h *Heap) DeleteMin() pq.Key {
	if h.Empty() {
		return 0
	}
	return h.Delete(h.minimum)
}

// Delete cuts the node out together with its clone chain, re-links the
// roots by height, and prunes if the decay invariant broke.
func (h *Heap) Delete(node *Node) pq.Key {
	key := node.key
	h.cut(node)

	h.fixRoots()
	h.fixDecay()

	h.size--

	return key
}

// DecreaseKey lowers node's key. A non-root is detached and made a root;
// the redundant clones left above it are cleaned up by the next delete.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "quake: decrease-key from %d to %d", node.key, key)

	node.key = key
	if h.isRoot(node) {
		if node.key < h.minimum.key {
			h.minimum = node
		}
	} else {
		if node.parent.left == node {
			node.parent.left = nil
		} else {
			node.parent.right = nil
		}

		h.makeRoot(node)
	}
}

// makeRoot splices node into the root ring, keeping the minimum current.
func (h *Heap) makeRoot(node *Node) {
	if node == nil {
		return
	}

	if h.minimum == nil {
		h.minimum = node
		node.parent = node
	} else {
		node.parent = h.minimum.parent
		h.minimum.parent = node
		if node.key < h.minimum.key {
			h.minimum = node
		}
	}
}

// removeFromRoots unlinks a root from the ring.
func (h *Heap) removeFromRoots(node *Node) {
	current := node.parent
	for current.parent != node {
		current = current.parent
	}
	if current == node {
		h.minimum = nil
	} else {
		current.parent = node.parent
		if h.minimum == node {
			h.minimum = current
		}
	}
}

// cut releases node: its clone chain on the left is freed recursively and
// every right child along it is promoted to a root.
func (h *Heap) cut(node *Node) {
	if node == nil {
		return
	}

	if h.isRoot(node) {
		h.removeFromRoots(node)
	} else {
		if node.parent.left == node {
			node.parent.left = nil
		} else if node.parent.right == node {
			node.parent.right = nil
		}
	}

	h.cut(node.left)
	h.makeRoot(node.right)

	h.nodes[node.height]--
	h.pool.Free(node)
}

// join links two roots: the smaller-keyed one wins, is cloned, and the
// clone inherits its old subtree while the loser becomes the right child.
func (h *Heap) join(a, b *Node) *Node {
	parent, child := a, b
	if b.key < a.key {
		parent, child = b, a
	}

	duplicate := h.cloneNode(parent)
	if duplicate.left != nil {
		duplicate.left.parent = duplicate
	}
	if duplicate.right != nil {
		duplicate.right.parent = duplicate
	}

	duplicate.parent = parent
	child.parent = parent

	parent.parent = nil
	parent.left = duplicate
	parent.right = child

	parent.height++
	h.nodes[parent.height]++

	return parent
}

// cloneNode duplicates a node about to win a link, inheriting its subtree
// pointers.
func (h *Heap) cloneNode(original *Node) *Node {
	clone := h.pool.Alloc()

	clone.item = original.item
	clone.key = original.key
	clone.height = original.height
	clone.left = original.left
	clone.right = original.right

	return clone
}

// fixRoots pairs roots of equal height by linking until every height has
// at most one root, then packs the survivors back into a ring.
func (h *Heap) fixRoots() {
	if h.minimum == nil {
		return
	}

	for i := uint32(0); i <= h.highest; i++ {
		h.roots[i] = nil
	}
	h.highest = 0

	current := h.minimum.parent
	tail := h.minimum
	h.minimum.parent = nil

	for current != nil {
		next := current.parent
		current.parent = nil
		if !h.attemptInsert(current) {
			height := current.height
			joined := h.join(current, h.roots[height])
			if current == tail {
				tail = joined
				next = tail
			} else {
				tail.parent = joined
				tail = tail.parent
			}
			h.roots[height] = nil
		}
		current = next
	}

	var head, last *Node
	for i := uint32(0); i <= h.highest; i++ {
		if h.roots[i] != nil {
			if head == nil {
				head = h.roots[i]
				last = h.roots[i]
			} else {
				last.parent = h.roots[i]
				last = last.parent
			}
		}
	}
	last.parent = head

	h.minimum = head
	h.fixMin()
}

func (h *Heap) attemptInsert(node *Node) bool {
	height := node.height
	if h.roots[height] != nil && h.roots[height] != node {
		return false
	}

	if height > h.highest {
		h.highest = height
	}
	h.roots[height] = node

	return true
}

// fixMin rescans the root ring for the minimum key.
func (h *Heap) fixMin() {
	start := h.minimum
	for current := start.parent; current != start; current = current.parent {
		if current.key < h.minimum.key {
			h.minimum = current
		}
	}
}

// fixDecay finds the lowest height where the decay invariant fails and
// prunes every tree reaching that height.
func (h *Heap) fixDecay() {
	h.checkDecay()
	if h.violationExists() {
		for i := h.violation; i < maxRank; i++ {
			if h.roots[i] != nil {
				h.prune(h.roots[i])
			}
		}
	}
}

func (h *Heap) checkDecay() {
	var i uint32
	for i = 1; i <= h.highest; i++ {
		if float64(h.nodes[i]) > alpha*float64(h.nodes[i-1]) {
			break
		}
	}
	h.violation = i
}

func (h *Heap) violationExists() bool {
	return h.violation < maxRank
}

// prune reduces a tree to the violating height by fusing each duplicate
// with its true child, freeing the clones and re-rooting the severed
// subtrees.
func (h *Heap) prune(node *Node) {
	if node == nil {
		return
	}

	if node.height < h.violation {
		if !h.isRoot(node) {
			h.makeRoot(node)
		}
		return
	}

	duplicate := node.left
	child := node.right

	h.prune(child)

	node.left = duplicate.left
	if node.left != nil {
		node.left.parent = node
	}
	node.right = duplicate.right
	if node.right != nil {
		node.right.parent = node
	}
	h.pool.Free(duplicate)
	h.nodes[node.height]--
	node.height--

	h.prune(node)
}

// isRoot reports whether node sits in the root ring; ring membership means
// the parent pointer leads to a node that does not own it as a child.
func (h *Heap) isRoot(node *Node) bool {
	return node.parent.left != node && node.parent.right != node
}
