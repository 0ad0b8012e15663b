package rankpairing_test

import (
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/pq/rankpairing"
	"github.com/flier/gopq/pkg/slab"
)

func TestRankPairingHeap(t *testing.T) {
	pqtest.Run(t, func(capacity uint32) pq.Queue[rankpairing.Node] {
		return rankpairing.New(slab.New[rankpairing.Node](capacity))
	})
}
