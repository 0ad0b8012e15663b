package quake

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
)

// rootRing collects the root ring threaded through the parent pointers,
// failing if it does not close on the minimum.
func rootRing(t *testing.T, h *Heap) []*Node {
	t.Helper()

	if h.minimum == nil {
		return nil
	}

	var out []*Node
	n := h.minimum
	for {
		out = append(out, n)
		require.Less(t, len(out), 1<<20, "root ring does not close")

		n = n.parent
		require.NotNil(t, n, "root ring broken")
		if n == h.minimum {
			return out
		}
	}
}

// countHeights tallies every record per height by walking all trees.
func countHeights(t *testing.T, h *Heap) [maxRank]uint32 {
	t.Helper()

	var counts [maxRank]uint32

	var walk func(n *Node)
	walk = func(n *Node) {
		counts[n.height]++
		if n.left != nil {
			walk(n.left)
		}
		if n.right != nil {
			walk(n.right)
		}
	}
	for _, r := range rootRing(t, h) {
		walk(r)
	}

	return counts
}

// checkDecayInvariant verifies the per-height counters against a fresh
// walk and the decay bound against the counters.
func checkDecayInvariant(t *testing.T, h *Heap) {
	t.Helper()

	counts := countHeights(t, h)
	require.Equal(t, h.nodes, counts, "height counters out of sync")

	for i := 1; i < maxRank; i++ {
		if counts[i] == 0 {
			continue
		}
		require.LessOrEqual(t, float64(counts[i]), alpha*float64(counts[i-1]),
			"decay invariant broken at height %d", i)
	}
}

func TestTournamentShapeAfterDeletes(t *testing.T) {
	h := New(slab.New[Node](512))
	rng := rand.New(rand.NewSource(31))

	for i := 0; i < 200; i++ {
		h.Insert(pq.Item(i), pq.Key(rng.Intn(4096)))
	}

	for step := 0; step < 150; step++ {
		h.DeleteMin()

		// Without decrease-keys the tournament is intact: every non-leaf
		// root carries its own clone on the left and a beaten subtree on
		// the right, one level down each.
		for _, r := range rootRing(t, h) {
			if r.height == 0 {
				require.Nil(t, r.left)
				require.Nil(t, r.right)
				continue
			}
			require.NotNil(t, r.left)
			require.NotNil(t, r.right)
			require.Equal(t, r.key, r.left.key, "left child is not a clone")
			require.Equal(t, r.height-1, r.left.height)
			require.Equal(t, r.height-1, r.right.height)
			require.LessOrEqual(t, r.key, r.right.key, "tournament order")
		}

		checkDecayInvariant(t, h)
	}
}

func TestDecayUnderChurn(t *testing.T) {
	h := New(slab.New[Node](1024))
	rng := rand.New(rand.NewSource(37))

	var handles []*Node
	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(8); {
		case op < 4 && len(handles) < 512:
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

			// Deletes rebuild the roots and settle the decay bound.
			checkDecayInvariant(t, h)
		}

		require.Equal(t, uint32(len(handles)), h.Size())
	}
}
