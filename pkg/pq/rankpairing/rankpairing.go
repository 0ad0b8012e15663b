// Package rankpairing implements a mutable priority queue as a rank-pairing
// heap: a forest of half trees whose roots are chained into a circular list
// through their otherwise unused right pointers. Decrease-key detaches a
// node together with its left subtree, lets its right child take its place
// and repairs ranks upward; delete makes a single rank-by-rank linking pass
// over the roots that reaches the freshly exposed trees before the old ones.
package rankpairing

import (
	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

const maxRank = 64

// Node holds an inserted element, as well as pointers to maintain tree
// structure. Acts as a handle to clients for the purpose of mutability.
// For a root, right links to the next root in the ring; for any other node
// it is the right child.
type Node struct {
	parent *Node
	left   *Node
	right  *Node

	rank uint32

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable rank-pairing heap of type 1.
type Heap struct {
	minimum *Node
	size    uint32

	// Rank-indexed roots, populated transiently while fixing roots.
	roots       [maxRank]*Node
	largestRank uint32

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

// Insert splices a singleton half tree into the root ring.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key
	node.right = node
	h.size++

	h.mergeRoots(h.minimum, node)

	if h.minimum == nil || key < h.minimum.key {
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

// DeleteMin removes the minimum and returns its key.
func (h *Heap) DeleteMin() pq.Key {
	if h.Empty() {
		return 0
	}
	return h.Delete(h.minimum)
}

// Delete removes an arbitrary node. The node's left and right spines are
// severed into rings of fresh half trees and merged back among the roots;
// the saved pre-merge minimum makes the single linking pass of fixRoots
// reach the new trees before the old roots.
func (h *Heap) Delete(node *Node) pq.Key {
	key := node.key

	if node.parent != nil {
		if node.parent.right == node {
			node.parent.right = nil
		} else {
			node.parent.left = nil
		}
	} else {
		current := node
		for current.right != node {
			current = current.right
		}
		current.right = node.right
	}

	var leftList, rightList *Node
	if node.left != nil {
		leftList = severSpine(node.left)
	}
	if node.parent != nil && node.right != nil {
		rightList = severSpine(node.right)
	}
	mergeLists(leftList, rightList)
	fullList := pickMin(leftList, rightList)

	if h.minimum == node {
		if node.right == node {
			h.minimum = fullList
		} else {
			h.minimum = node.right
		}
	}

	// we save the original minimum so that the linking pass in fixRoots
	// visits the new trees before the old roots
	oldMin := h.minimum
	h.mergeRoots(h.minimum, fullList)
	h.minimum = oldMin
	h.fixRoots()

	h.pool.Free(node)
	h.size--

	return key
}

// DecreaseKey lowers node's key. A non-root is detached along with its
// left subtree; its right child takes its place and ranks are repaired
// upward from the old position.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "rankpairing: decrease-key from %d to %d", node.key, key)

	node.key = key

	if node.parent == nil {
		if node.key < h.minimum.key {
			h.minimum = node
		}
		return
	}

	if node.parent.right == node {
		node.parent.right = node.right
	} else {
		node.parent.left = node.right
	}
	if node.right != nil {
		node.right.parent = node.parent
		node.right = nil
	}

	h.propagateRanks(node)

	node.parent = nil
	node.right = node
	h.mergeRoots(h.minimum, node)
}

// mergeRoots splices two root rings and lets the smaller-keyed head become
// the minimum.
func (h *Heap) mergeRoots(a, b *Node) {
	mergeLists(a, b)
	h.minimum = pickMin(a, b)
}

// mergeLists concatenates two circular lists by exchanging the successors
// of their heads.
func mergeLists(a, b *Node) {
	if a == nil || b == nil || a == b {
		return
	}
	a.right, b.right = b.right, a.right
}

func pickMin(a, b *Node) *Node {
	switch {
	case a == nil:
		return b
	case b == nil, a == b:
		return a
	case b.key < a.key:
		return b
	default:
		return a
	}
}

// join makes the higher-keyed of two roots the left child of the other.
// The loser's new right child is the winner's previous left subtree.
func join(a, b *Node) *Node {
	parent, child := a, b
	if b.key < a.key {
		parent, child = b, a
	}

	child.right = parent.left
	if child.right != nil {
		child.right.parent = child
	}
	parent.left = child
	child.parent = parent
	parent.rank++

	return parent
}

// fixRoots walks the root ring once, linking any two roots of equal rank.
// Joined trees go onto a running output list and are not reconsidered this
// round; untouched roots leave the rank table afterwards. The pass is not
// repeated, so several roots may still share a rank when it ends.
func (h *Heap) fixRoots() {
	if h.minimum == nil {
		return
	}

	var outputHead, outputTail *Node

	h.largestRank = 0

	current := h.minimum.right
	h.minimum.right = nil
	for current != nil {
		next := current.right
		if !h.attemptInsert(current) {
			rank := current.rank
			joined := join(current, h.roots[rank])
			if outputHead == nil {
				outputHead = joined
			} else {
				outputTail.right = joined
			}
			outputTail = joined
			h.roots[rank] = nil
		}
		current = next
	}

	// move the untouched trees to the list and repair pointers
	for i := uint32(0); i <= h.largestRank; i++ {
		if h.roots[i] != nil {
			if outputHead == nil {
				outputHead = h.roots[i]
			} else {
				outputTail.right = h.roots[i]
			}
			outputTail = h.roots[i]
			h.roots[i] = nil
		}
	}

	outputTail.right = outputHead

	h.minimum = outputHead
	h.fixMin()
}

func (h *Heap) attemptInsert(node *Node) bool {
	rank := node.rank
	if h.roots[rank] != nil && h.roots[rank] != node {
		return false
	}
	h.roots[rank] = node

	if rank > h.largestRank {
		h.largestRank = rank
	}

	return true
}

// fixMin rescans the root ring for the minimum key.
func (h *Heap) fixMin() {
	if h.minimum == nil {
		return
	}
	start := h.minimum
	for current := start.right; current != start; current = current.right {
		if current.key < h.minimum.key {
			h.minimum = current
		}
	}
}

// propagateRanks walks up from a node whose subtree shrank, recomputing
// ranks. Ranks only ever decrease here; the walk stops at the first node
// whose rank is already consistent.
func (h *Heap) propagateRanks(node *Node) {
	for node != nil {
		k := rankFromChildren(node)
		if node.rank <= k {
			break
		}
		node.rank = k
		node = node.parent
	}
}

// rankFromChildren recomputes a node's rank from its children under the
// type-1 rules. A root's right pointer links the ring and does not count.
func rankFromChildren(node *Node) uint32 {
	left, right := node.left, node.right
	if node.parent == nil {
		right = nil
	}

	switch {
	case node.parent != nil && left != nil:
		return left.rank + 1
	case left != nil:
		if right != nil {
			if left.rank == right.rank {
				return left.rank + 1
			}
			return max(left.rank, right.rank)
		}
		return left.rank
	case right != nil:
		return right.rank + 1
	default:
		return 0
	}
}

// severSpine cuts a right spine loose from its parents and closes it into
// a circular list of new roots.
func severSpine(node *Node) *Node {
	current := node
	for current.right != nil {
		current.parent = nil
		current = current.right
	}
	current.parent = nil
	current.right = node

	return node
}
