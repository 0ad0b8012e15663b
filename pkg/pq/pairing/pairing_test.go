package pairing_test

import (
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/pairing"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/slab"
)

func TestPairingHeap(t *testing.T) {
	pqtest.Run(t, func(capacity uint32) pq.Queue[pairing.Node] {
		return pairing.New(slab.New[pairing.Node](capacity))
	})
}
