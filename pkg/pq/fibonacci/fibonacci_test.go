package fibonacci_test

import (
	"testing"

	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/pq/fibonacci"
	"github.com/flier/gopq/pkg/pq/pqtest"
	"github.com/flier/gopq/pkg/slab"
)

func TestFibonacciHeap(t *testing.T) {
	pqtest.Run(t, func(capacity uint32) pq.Queue[fibonacci.Node] {
		return fibonacci.New(slab.New[fibonacci.Node](capacity))
	})
}
