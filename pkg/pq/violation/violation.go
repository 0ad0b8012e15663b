// Package violation implements a mutable priority queue as a violation
// heap: a forest with at most two roots per rank, where each node's two
// most recently attached children are its "active" children. Decrease-key
// splices the node out with its greater-rank active child standing in for
// it; deletes repair the forest with three-way joins of equal-rank roots.
//
// Sibling lists run in both directions: next leads toward newer siblings
// and finally the parent, prev toward older siblings. A node's child
// pointer names its newest child. Roots have nil prev pointers and form a
// singly linked ring through next.
package violation

import (
	"github.com/flier/gopq/internal/debug"
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

const maxRank = 64

// Node holds an inserted element, as well as pointers to maintain tree
// structure. Acts as a handle to clients for the purpose of mutability.
type Node struct {
	child *Node
	next  *Node
	prev  *Node

	rank int32

	item pq.Item
	key  pq.Key
}

// Heap is a mutable, addressable violation heap.
type Heap struct {
	minimum *Node
	size    uint32

	// Two slots per rank; fixRoots leaves at most two roots of any rank.
	roots       [maxRank][2]*Node
	largestRank int32

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

// Insert makes the new node a root.
func (h *Heap) Insert(item pq.Item, key pq.Key) *Node {
	node := h.pool.Alloc()
	node.item = item
	node.key = key
	node.next = node
	h.size++

	h.mergeIntoRoots(node)

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

// Delete removes an arbitrary node, reinserts its children among the roots
// and restores the two-roots-per-rank bound.
func (h *Heap) Delete(node *Node) pq.Key {
	key := node.key

	if getParent(node) == nil {
		prev := findPrevRoot(node)
		prev.next = node.next
	} else {
		if node.next != getParent(node) {
			node.next.prev = node.prev
		} else {
			node.next.child = node.prev
		}
		if node.prev != nil {
			node.prev.next = node.next
		}
	}

	if h.minimum == node {
		if node.next != node {
			h.minimum = node.next
		} else {
			h.minimum = node.child
		}
	}

	if node.child != nil {
		stripList(node.child)
		h.mergeIntoRoots(node.child)
	}
	h.fixRoots()

	h.pool.Free(node)
	h.size--

	return key
}

// DecreaseKey lowers node's key. A root, or an active child that still
// obeys heap order, stays put; any other node is spliced out, its
// greater-rank active child taking over its position, and becomes a root.
func (h *Heap) DecreaseKey(node *Node, key pq.Key) {
	debug.Assert(key <= node.key, "violation: decrease-key from %d to %d", node.key, key)

	node.key = key

	if getParent(node) == nil {
		if node.key < h.minimum.key {
			h.minimum = node
		}
		return
	}

	parent := getParent(node)
	if isActive(node) && node.key >= parent.key {
		return
	}

	firstChild := node.child
	if firstChild != nil {
		// determine the active child of greater rank
		secondChild := firstChild.prev
		var replacement *Node
		if secondChild == nil {
			node.child = nil
			replacement = firstChild
		} else if secondChild.rank > firstChild.rank {
			if secondChild.prev != nil {
				secondChild.prev.next = firstChild
			}
			firstChild.prev = secondChild.prev
			replacement = secondChild
		} else {
			node.child = secondChild
			secondChild.next = node
			replacement = firstChild
		}

		// swap the chosen child into this node's place
		replacement.next = node.next
		replacement.prev = node.prev
		if replacement.next != nil {
			if replacement.next.child == node {
				replacement.next.child = replacement
			} else {
				replacement.next.prev = replacement
			}
		}
		if replacement.prev != nil {
			replacement.prev.next = replacement
		}

		h.propagateRanks(replacement)
	} else {
		if node.next.child == node {
			node.next.child = node.prev
		} else {
			node.next.prev = node.prev
		}
		if node.prev != nil {
			node.prev.next = node.next
		}

		h.propagateRanks(node.next)
	}

	// make node a root
	node.next = node
	node.prev = nil
	h.mergeIntoRoots(node)
}

// mergeIntoRoots splices a ring of roots into the root ring.
func (h *Heap) mergeIntoRoots(list *Node) {
	if h.minimum == nil {
		h.minimum = list
	} else if list != nil && h.minimum != list {
		h.minimum.next, list.next = list.next, h.minimum.next

		if list.key < h.minimum.key {
			h.minimum = list
		}
	}
}

// tripleJoin combines three roots of equal rank into one tree. The
// smallest-keyed root wins; on equal keys the later argument wins. The losers
// become the winner's two newest children, ordered by descending rank.
func (h *Heap) tripleJoin(a, b, c *Node) *Node {
	var parent, child1, child2 *Node

	if a.key < b.key {
		if a.key < c.key {
			parent = a
			child1, child2 = orderByRank(b, c)
		} else {
			parent = c
			child1, child2 = orderByRank(a, b)
		}
	} else {
		if b.key < c.key {
			parent = b
			child1, child2 = orderByRank(a, c)
		} else {
			parent = c
			child1, child2 = orderByRank(a, b)
		}
	}

	return h.join(parent, child1, child2)
}

// orderByRank returns a and b with the greater rank first, preferring a on
// ties.
func orderByRank(a, b *Node) (*Node, *Node) {
	if a.rank >= b.rank {
		return a, b
	}
	return b, a
}

// join attaches child1 and child2 as parent's newest children. If the
// parent's current active children are out of rank order they are swapped
// first, so the displaced pair keeps the active-children rank discipline.
func (h *Heap) join(parent, child1, child2 *Node) *Node {
	if parent.child != nil {
		active1 := parent.child
		active2 := active1.prev
		if active2 != nil {
			rank1 := active1.rank
			rank2 := active2.rank
			if rank1 < rank2 {
				active1.prev = active2.prev
				if active1.prev != nil {
					active1.prev.next = active1
				}
				active2.next = parent
				active1.next = active2
				active2.prev = active1
				parent.child = active2
			}
		}
	}

	child1.next = parent
	child1.prev = child2
	child2.next = child1
	child2.prev = parent.child

	if parent.child != nil {
		parent.child.next = child2
	}
	parent.child = child1

	parent.rank++

	return parent
}

// fixRoots scans the root ring, three-way joining any three roots of equal
// rank, leaving at most two roots per rank.
func (h *Heap) fixRoots() {
	for i := int32(0); i <= h.largestRank; i++ {
		h.roots[i][0] = nil
		h.roots[i][1] = nil
	}

	if h.minimum == nil {
		return
	}

	head := h.minimum.next
	h.minimum.next = nil
	tail := h.minimum
	current := head
	for current != nil {
		next := current.next
		current.next = nil
		if !h.attemptInsert(current) {
			rank := current.rank
			tail.next = h.tripleJoin(current, h.roots[rank][0], h.roots[rank][1])
			if tail == current {
				next = tail.next
			}
			tail = tail.next
			h.roots[rank][0] = nil
			h.roots[rank][1] = nil
		}
		current = next
	}

	head = nil
	tail = nil
	for i := int32(0); i <= h.largestRank; i++ {
		for s := 0; s < 2; s++ {
			if h.roots[i][s] != nil {
				if head == nil {
					head = h.roots[i][s]
				} else {
					tail.next = h.roots[i][s]
				}
				tail = h.roots[i][s]
			}
		}
	}

	tail.next = head

	h.setMin()
}

// attemptInsert files a root into the two-slot rank table; false means the
// table already holds two other roots of that rank.
func (h *Heap) attemptInsert(node *Node) bool {
	rank := node.rank
	if h.roots[rank][0] != nil && h.roots[rank][0] != node {
		if h.roots[rank][1] != nil && h.roots[rank][1] != node {
			return false
		}
		h.roots[rank][1] = node
	} else {
		h.roots[rank][0] = node
	}

	if rank > h.largestRank {
		h.largestRank = rank
	}

	return true
}

// setMin rescans the rank table for the minimum root.
func (h *Heap) setMin() {
	h.minimum = nil
	for i := int32(0); i <= h.largestRank; i++ {
		for s := 0; s < 2; s++ {
			r := h.roots[i][s]
			if r == nil {
				continue
			}
			if h.minimum == nil || r.key < h.minimum.key {
				h.minimum = r
			}
		}
	}
}

// findPrevRoot walks the root ring to the root preceding node.
func findPrevRoot(node *Node) *Node {
	prev := node.next
	for prev.next != node {
		prev = prev.next
	}
	return prev
}

// propagateRanks recomputes a node's rank from its two active children
// (rank −1 standing in for a missing child) and recurses to the parent
// while the rank keeps decreasing through active nodes.
func (h *Heap) propagateRanks(node *Node) {
	rank1 := int32(-1)
	rank2 := int32(-1)

	if node.child != nil {
		rank1 = node.child.rank
		if node.child.prev != nil {
			rank2 = node.child.prev.rank
		}
	}

	total := rank1 + rank2
	var newRank int32
	switch {
	case total == -2:
		newRank = 0
	case total == -1:
		newRank = 1
	default:
		newRank = total/2 + total%2 + 1
	}
	updated := newRank < node.rank
	node.rank = newRank

	parent := getParent(node)
	if updated && parent != nil && isActive(parent) {
		h.propagateRanks(parent)
	}
}

// stripList turns a doubly linked child list into a singly linked ring of
// root candidates: prev pointers are cleared and the newest child is
// linked around to the oldest.
func stripList(node *Node) {
	current := node
	for current.prev != nil {
		prev := current.prev
		current.prev = nil
		current = prev
	}
	node.next = current
}

// isActive reports whether node is one of its parent's two newest
// children. Roots are always active.
func isActive(node *Node) bool {
	if getParent(node) == nil {
		return true
	}
	if node.next.child == node {
		return true
	}
	return node.next.next.child == node.next
}

// getParent returns node's parent, walking newer siblings until the parent
// link shows up, or nil for a root.
func getParent(node *Node) *Node {
	if node.next.child == node {
		return node.next
	}
	if node.prev == nil && node.next.prev == nil {
		return nil
	}
	return getParent(node.next)
}
