package explicit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// checkInvariants walks the tree: linkage consistent in both directions,
// child counts within arity, heap order, and the node count matching the
// recorded size.
func checkInvariants(t *testing.T, h *Heap) {
	t.Helper()

	if h.size == 0 {
		require.Nil(t, h.root)
		return
	}

	require.NotNil(t, h.root)
	require.Nil(t, h.root.parent)
	require.Nil(t, h.root.prev)
	require.Nil(t, h.root.next)

	var count uint32
	var walk func(n *Node)
	walk = func(n *Node) {
		count++

		var children uint32
		for c := n.child; c != nil; c = c.next {
			children++
			require.Equal(t, n, c.parent, "child parent link")
			require.LessOrEqual(t, n.key, c.key, "heap order")

			if c == n.child {
				require.Equal(t, n, c.prev, "first child prev leads to parent")
			} else {
				require.Equal(t, c, c.prev.next, "sibling linkage")
			}

			walk(c)
		}
		require.LessOrEqual(t, children, h.arity, "child count")
	}
	walk(h.root)

	require.Equal(t, h.size, count, "node count")

	// Every tree position resolves to a distinct node, so the shape is
	// complete.
	seen := make(map[*Node]bool, h.size)
	for i := uint32(1); i <= h.size; i++ {
		n := h.findNode(i)
		require.False(t, seen[n], "position %d revisits a node", i)
		seen[n] = true
	}
}

func TestStructureUnderChurn(t *testing.T) {
	for _, arity := range []uint32{2, 4, 8, 16} {
		h := New(slab.New[Node](128), arity)
		rng := rand.New(rand.NewSource(11))

		var handles []*Node
		for step := 0; step < 1200; step++ {
			switch op := rng.Intn(8); {
			case op < 4 && len(handles) < 128:
				handles = append(handles, h.Insert(pq.Item(step), pq.Key(rng.Intn(4096))))
			case op < 6 && len(handles) > 0:
				i := rng.Intn(len(handles))
				n := handles[i]
				h.DecreaseKey(n, n.key/2)
			case len(handles) > 0:
				i := rng.Intn(len(handles))
				h.Delete(handles[i])
				handles[i] = handles[len(handles)-1]
				handles = handles[:len(handles)-1]
			}

			checkInvariants(t, h)
		}
	}
}
