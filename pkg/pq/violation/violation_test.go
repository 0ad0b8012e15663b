package violation_test

import (
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/pq/violation"
	"github.com/flier/gopq/pkg/slab"
)

func TestViolationHeap(t *testing.T) {
	pqtest.Run(t, func(capacity uint32) pq.Queue[violation.Node] {
		return violation.New(slab.New[violation.Node](capacity))
	})
}
