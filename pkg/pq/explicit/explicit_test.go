package explicit_test

import (
	"fmt"
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/explicit"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/slab"
)

func TestExplicitHeap(t *testing.T) {
	for _, arity := range []uint32{2, 4, 8, 16} {
		arity := arity
		t.Run(fmt.Sprintf("arity=%d", arity), func(t *testing.T) {
			pqtest.Run(t, func(capacity uint32) pq.Queue[explicit.Node] {
				return explicit.New(slab.New[explicit.Node](capacity), arity)
			})
		})
	}
}
