package replay

import (
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
	"github.com/flier/gopq/pkg/trace"
)

// queueRunner erases a variant's node type so the engine can drive any of
// them through one code path.
type queueRunner interface {
	reset()
	dispatch(op *trace.Op)
	shutdown()
}

// runner binds a variant to the pool and id tables a replay needs. The
// trace addresses queues and nodes by dense ids; the header bounds both
// tables up front.
type runner[N any] struct {
	pool     *slab.Pool[N]
	newQueue func(*slab.Pool[N]) pq.Queue[N]

	queues []pq.Queue[N]
	nodes  []*N
}

// newRunner sizes the pool from the header's live-node bound. capFactor
// covers variants whose structure keeps extra records per element.
func newRunner[N any](h trace.Header, capFactor uint64, mk func(*slab.Pool[N]) pq.Queue[N]) *runner[N] {
	return &runner[N]{
		pool:     slab.New[N](uint32(h.MaxLiveNodes * capFactor)),
		newQueue: mk,
		queues:   make([]pq.Queue[N], h.PQIDs),
		nodes:    make([]*N, h.NodeIDs),
	}
}

// reset recycles every node in O(1) ahead of the next iteration. Queue
// shells and node handles left in the tables are overwritten as the trace
// re-creates them.
func (r *runner[N]) reset() {
	r.pool.Clear()
}

// dispatch executes one operation. Ops that name a node resolve it through
// the node table; an insert files the fresh handle under the record's node
// id. Unknown and reserved opcodes are skipped.
func (r *runner[N]) dispatch(op *trace.Op) {
	switch op.Code {
	case trace.OpCreate:
		r.queues[op.PQID] = r.newQueue(r.pool)
	case trace.OpDestroy:
		r.queues[op.PQID].Destroy()
		r.queues[op.PQID] = nil
	case trace.OpClear:
		r.queues[op.PQID].Clear()
	case trace.OpGetKey:
		r.queues[op.PQID].Key(r.nodes[op.NodeID])
	case trace.OpGetItem:
		r.queues[op.PQID].Item(r.nodes[op.NodeID])
	case trace.OpGetSize:
		r.queues[op.PQID].Size()
	case trace.OpInsert:
		r.nodes[op.NodeID] = r.queues[op.PQID].Insert(pq.Item(op.Item), pq.Key(op.Key))
	case trace.OpFindMin:
		r.queues[op.PQID].FindMin()
	case trace.OpDelete:
		r.queues[op.PQID].Delete(r.nodes[op.NodeID])
	case trace.OpDeleteMin:
		r.queues[op.PQID].DeleteMin()
	case trace.OpDecreaseKey:
		r.queues[op.PQID].DecreaseKey(r.nodes[op.NodeID], pq.Key(op.Key))
	case trace.OpEmpty:
		r.queues[op.PQID].Empty()
	default:
		// Reserved (meld) and unknown opcodes are ignored.
	}
}

// shutdown destroys queues the trace left live, then the pool.
func (r *runner[N]) shutdown() {
	for i, q := range r.queues {
		if q != nil {
			q.Destroy()
			r.queues[i] = nil
		}
	}
	r.pool.Destroy()
}
