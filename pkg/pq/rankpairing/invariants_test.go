package rankpairing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// roots collects the root ring, failing unless it forms one cycle through
// the right pointers back to the minimum.
func roots(t *testing.T, h *Heap) []*Node {
	t.Helper()

	if h.minimum == nil {
		return nil
	}

	var out []*Node
	n := h.minimum
	for {
		require.Nil(t, n.parent, "root with a parent")
		out = append(out, n)
		require.Less(t, len(out), 1<<20, "root ring does not close")

		n = n.right
		require.NotNil(t, n, "root ring broken")
		if n == h.minimum {
			return out
		}
	}
}

// walkSubtree checks the half-tree order below a node: every key in a
// node's left subtree is at least the node's own key. Returns the node
// count and minimum key of the subtree rooted at n.
func walkSubtree(t *testing.T, n *Node) (uint32, pq.Key) {
	t.Helper()

	count := uint32(1)
	min := n.key

	if n.left != nil {
		require.Equal(t, n, n.left.parent, "left child parent link")
		lc, lmin := walkSubtree(t, n.left)
		require.LessOrEqual(t, n.key, lmin, "half-tree order")
		count += lc
		if lmin < min {
			min = lmin
		}
	}
	if n.parent != nil && n.right != nil {
		require.Equal(t, n, n.right.parent, "right child parent link")
		rc, rmin := walkSubtree(t, n.right)
		count += rc
		if rmin < min {
			min = rmin
		}
	}

	return count, min
}

func checkInvariants(t *testing.T, h *Heap) {
	t.Helper()

	var count uint32
	for _, r := range roots(t, h) {
		require.LessOrEqual(t, h.minimum.key, r.key, "minimum not minimal")

		count++
		if r.left != nil {
			require.Equal(t, r, r.left.parent, "root left child parent link")
			lc, lmin := walkSubtree(t, r.left)
			require.LessOrEqual(t, r.key, lmin, "half-tree order at root")
			count += lc
		}
	}

	require.Equal(t, h.size, count, "node count")
}

func TestStructureUnderChurn(t *testing.T) {
	h := New(slab.New[Node](256))
	rng := rand.New(rand.NewSource(23))

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

		// The rank table is scratch space; nothing may survive an
		// operation.
		for rank, r := range h.roots {
			require.Nil(t, r, "rank table slot %d left populated", rank)
		}
	}
}
