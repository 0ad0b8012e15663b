package quake_test

import (
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/pq/quake"
	"github.com/flier/gopq/pkg/slab"
)

func TestQuakeHeap(t *testing.T) {
	pqtest.Run(t, func(capacity uint32) pq.Queue[quake.Node] {
		// Linking clones the winner, so the pool holds twice the live
		// element bound.
		return quake.New(slab.New[quake.Node](2 * capacity))
	})
}
