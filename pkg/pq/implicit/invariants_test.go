package implicit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// checkInvariants walks the array: live slots populated, back-indices
// matching, and every child at least its parent.
func checkInvariants(t *testing.T, h *Heap) {
	t.Helper()

	for i := uint32(0); i < h.size; i++ {
		node := h.nodes[i]
		require.NotNil(t, node, "slot %d empty", i)
		require.Equal(t, i, node.index, "slot %d back-index", i)

		if i > 0 {
			parent := h.nodes[(i-1)/h.arity]
			require.LessOrEqual(t, parent.key, node.key, "order at slot %d", i)
		}
	}
	for i := h.size; i < uint32(len(h.nodes)); i++ {
		require.Nil(t, h.nodes[i], "slot %d beyond size", i)
	}
}

func TestStructureUnderChurn(t *testing.T) {
	for _, arity := range []uint32{2, 4, 8, 16} {
		h := New(slab.New[Node](256), arity)
		rng := rand.New(rand.NewSource(7))

		var handles []*Node
		for step := 0; step < 2000; step++ {
			switch op := rng.Intn(8); {
			case op < 4 && len(handles) < 256:
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

func TestSiftDownPrefersLeftmostChild(t *testing.T) {
	h := New(slab.New[Node](16), 4)

	// Root with one full child block, three equal keys and a larger last
	// one: after the minimum leaves, the leftmost equal child must win the
	// root.
	h.Insert(0, 1)
	children := []*Node{
		h.Insert(1, 5), h.Insert(2, 5), h.Insert(3, 5), h.Insert(4, 9),
	}

	require.Equal(t, pq.Key(1), h.DeleteMin())
	require.Equal(t, children[0], h.nodes[0])
	// The previous last element filled the root and sank; among the equal
	// keys below it the scan keeps the leftmost.
	checkInvariants(t, h)
}
