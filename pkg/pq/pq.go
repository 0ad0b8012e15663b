// Package pq defines the contract shared by every addressable priority
// queue variant in this module.
//
// A queue holds a multiset of (item, key) pairs. Insert returns a node
// pointer that acts as a stable handle: every later operation on that entry
// (DecreaseKey, Delete, Key, Item) names it by handle. A handle becomes
// invalid exactly when its node is deleted, the queue is cleared, or the
// queue is destroyed; use after that point is undefined.
//
// Smaller keys sort first. All operations are single-threaded and run to
// completion; no variant takes locks or suspends.
package pq

import "math"

// Key is a node's priority. Smaller is higher priority.
type Key uint32

// Item is an opaque client identifier attached to a node at insert.
type Item uint32

// MaxKey is the largest representable key.
const MaxKey Key = math.MaxUint32

// Queue is the capability set every heap variant implements, parameterized
// by the variant's node type. FindMin returns nil on an empty queue;
// DeleteMin and Delete return the removed node's key.
//
// DecreaseKey requires the new key to be no greater than the node's current
// key; violating that precondition leaves the queue in an undefined state
// (debug builds assert).
//
// The interface exists for the replay runner and the conformance suite.
// Client code is expected to use a concrete variant directly.
type Queue[N any] interface {
	// Clear removes every node. All outstanding handles become invalid.
	Clear()

	// Destroy releases all nodes and the queue shell.
	Destroy()

	// Size returns the number of live nodes.
	Size() uint32

	// Empty reports whether the queue holds no nodes.
	Empty() bool

	// Insert adds an item with the given key and returns its handle.
	Insert(item Item, key Key) *N

	// FindMin returns a handle holding a minimum key, or nil when empty.
	FindMin() *N

	// DeleteMin removes the node FindMin would return and yields its key.
	DeleteMin() Key

	// Delete removes an arbitrary live node and yields its key.
	Delete(n *N) Key

	// DecreaseKey lowers n's key to key.
	DecreaseKey(n *N, key Key)

	// Key returns n's current key.
	Key(n *N) Key

	// Item returns the client item n was inserted with.
	Item(n *N) Item
}
