package pairing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// checkInvariants walks the tree: heap order everywhere, child lists
// doubly linked with the head's prev leading back to the parent, and the
// node count matching the recorded size.
func checkInvariants(t *testing.T, h *Heap) {
	t.Helper()

	if h.size == 0 {
		require.Nil(t, h.root)
		return
	}

	require.NotNil(t, h.root)
	require.Nil(t, h.root.prev)
	require.Nil(t, h.root.next)

	var count uint32
	var walk func(n *Node)
	walk = func(n *Node) {
		count++

		for c := n.child; c != nil; c = c.next {
			require.LessOrEqual(t, n.key, c.key, "heap order")

			if c == n.child {
				require.Equal(t, n, c.prev, "first child prev leads to parent")
			} else {
				require.Equal(t, c, c.prev.next, "sibling linkage")
			}
			if c.next != nil {
				require.Equal(t, c, c.next.prev, "sibling back link")
			}

			walk(c)
		}
	}
	walk(h.root)

	require.Equal(t, h.size, count, "node count")
}

func TestStructureUnderChurn(t *testing.T) {
	h := New(slab.New[Node](256))
	rng := rand.New(rand.NewSource(13))

	var handles []*Node
	for step := 0; step < 2500; step++ {
		switch op := rng.Intn(8); {
		case op < 4 && len(handles) < 256:
			handles = append(handles, h.Insert(pq.Item(step), pq.Key(rng.Intn(4096))))
		case op < 6 && len(handles) > 0:
			i := rng.Intn(len(handles))
			n := handles[i]
			h.DecreaseKey(n, n.key/2)
		case len(handles) > 0:
			i := rng.Intn(len(handles))
			want := handles[i].key
			require.Equal(t, want, h.Delete(handles[i]))
			handles[i] = handles[len(handles)-1]
			handles = handles[:len(handles)-1]
		}

		checkInvariants(t, h)
	}
}
