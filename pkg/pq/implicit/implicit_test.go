package implicit_test

import (
	"fmt"
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/implicit"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/slab"
)

func TestImplicitHeap(t *testing.T) {
	for _, arity := range []uint32{2, 4, 8, 16} {
		arity := arity
		t.Run(fmt.Sprintf("arity=%d", arity), func(t *testing.T) {
			pqtest.Run(t, func(capacity uint32) pq.Queue[implicit.Node] {
				return implicit.New(slab.New[implicit.Node](capacity), arity)
			})
		})
	}
}

func TestImplicitHeapRejectsOddArity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for arity 3")
		}
	}()

	implicit.New(slab.New[implicit.Node](8), 3)
}
