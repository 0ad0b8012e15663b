package trace

import "fmt"

// Recorder builds a trace one operation at a time, tracking everything the
// header needs and rejecting streams that would break the format's
// self-consistency rules: every op must address a created queue, inserts
// may not reuse a live node id, and node-addressed ops must name a node
// live in the addressed queue.
//
// DeleteMin takes a bookkeeping argument that is not serialized (the wire
// record carries only the queue id); the workload generator knows which
// node died and tells the recorder so the live index stays exact.
type Recorder struct {
	ops []Op

	// live maps node id -> owning queue id.
	live *liveSet

	created   []bool
	queueLive []uint64

	liveNow uint64
	maxLive uint64

	pqIDs   uint32
	nodeIDs uint32
}

// NewRecorder returns an empty recorder. sizeHint may be 0.
func NewRecorder(sizeHint int) *Recorder {
	return &Recorder{
		ops:  make([]Op, 0, sizeHint),
		live: newLiveSet(0),
	}
}

// Len returns the number of recorded operations.
func (r *Recorder) Len() int { return len(r.ops) }

// Create records the creation of queue pq.
func (r *Recorder) Create(pq uint32) error {
	r.growQueues(pq)
	if r.created[pq] {
		return fmt.Errorf("%w: create of live queue %d", ErrInconsistent, pq)
	}
	r.created[pq] = true

	r.append(Op{Code: OpCreate, PQID: pq})
	return nil
}

// Destroy records the destruction of queue pq; its nodes die with it.
func (r *Recorder) Destroy(pq uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	r.dropQueueNodes(pq)
	r.created[pq] = false

	r.append(Op{Code: OpDestroy, PQID: pq})
	return nil
}

// Clear records clearing queue pq; its nodes die but the queue lives on.
func (r *Recorder) Clear(pq uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	r.dropQueueNodes(pq)

	r.append(Op{Code: OpClear, PQID: pq})
	return nil
}

// GetKey records a key lookup of node in queue pq.
func (r *Recorder) GetKey(pq, node uint32) error {
	if err := r.checkNode(pq, node); err != nil {
		return err
	}
	r.append(Op{Code: OpGetKey, PQID: pq, NodeID: node})
	return nil
}

// GetItem records an item lookup of node in queue pq.
func (r *Recorder) GetItem(pq, node uint32) error {
	if err := r.checkNode(pq, node); err != nil {
		return err
	}
	r.append(Op{Code: OpGetItem, PQID: pq, NodeID: node})
	return nil
}

// GetSize records a size query of queue pq.
func (r *Recorder) GetSize(pq uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	r.append(Op{Code: OpGetSize, PQID: pq})
	return nil
}

// Insert records inserting (item, key) into queue pq as node id node.
func (r *Recorder) Insert(pq, node, item, key uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	if _, ok := r.live.Get(node); ok {
		return fmt.Errorf("%w: insert reuses live node id %d", ErrInconsistent, node)
	}

	r.live.Put(node, pq)
	if node >= r.nodeIDs {
		r.nodeIDs = node + 1
	}
	r.queueLive[pq]++
	r.liveNow++
	if r.liveNow > r.maxLive {
		r.maxLive = r.liveNow
	}

	r.append(Op{Code: OpInsert, PQID: pq, NodeID: node, Item: item, Key: key})
	return nil
}

// FindMin records a find-min on queue pq.
func (r *Recorder) FindMin(pq uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	r.append(Op{Code: OpFindMin, PQID: pq})
	return nil
}

// Delete records deleting node from queue pq.
func (r *Recorder) Delete(pq, node uint32) error {
	if err := r.checkNode(pq, node); err != nil {
		return err
	}
	r.dropNode(pq, node)

	r.append(Op{Code: OpDelete, PQID: pq, NodeID: node})
	return nil
}

// DeleteMin records a delete-min on queue pq. node names the element the
// generator knows will die; it is bookkeeping only and not serialized.
func (r *Recorder) DeleteMin(pq, node uint32) error {
	if err := r.checkNode(pq, node); err != nil {
		return err
	}
	r.dropNode(pq, node)

	r.append(Op{Code: OpDeleteMin, PQID: pq})
	return nil
}

// DecreaseKey records lowering node's key in queue pq.
func (r *Recorder) DecreaseKey(pq, node, key uint32) error {
	if err := r.checkNode(pq, node); err != nil {
		return err
	}
	r.append(Op{Code: OpDecreaseKey, PQID: pq, NodeID: node, Key: key})
	return nil
}

// Empty records an emptiness query of queue pq.
func (r *Recorder) Empty(pq uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	r.append(Op{Code: OpEmpty, PQID: pq})
	return nil
}

// Build assembles the recorded stream into a trace with a self-consistent
// header.
func (r *Recorder) Build() *Trace {
	return &Trace{
		Header: Header{
			OpCount:      uint64(len(r.ops)),
			PQIDs:        r.pqIDs,
			NodeIDs:      r.nodeIDs,
			MaxLiveNodes: r.maxLive,
		},
		Ops: r.ops,
	}
}

func (r *Recorder) append(op Op) {
	r.ops = append(r.ops, op)
}

func (r *Recorder) growQueues(pq uint32) {
	if pq >= r.pqIDs {
		r.pqIDs = pq + 1
	}
	for uint32(len(r.created)) <= pq {
		r.created = append(r.created, false)
		r.queueLive = append(r.queueLive, 0)
	}
}

func (r *Recorder) checkQueue(pq uint32) error {
	if pq >= uint32(len(r.created)) || !r.created[pq] {
		return fmt.Errorf("%w: op on queue %d which is not live", ErrInconsistent, pq)
	}
	return nil
}

func (r *Recorder) checkNode(pq, node uint32) error {
	if err := r.checkQueue(pq); err != nil {
		return err
	}
	owner, ok := r.live.Get(node)
	if !ok {
		return fmt.Errorf("%w: op on dead node id %d", ErrInconsistent, node)
	}
	if owner != pq {
		return fmt.Errorf("%w: node %d lives in queue %d, not %d", ErrInconsistent, node, owner, pq)
	}
	return nil
}

func (r *Recorder) dropNode(pq, node uint32) {
	r.live.Delete(node)
	r.queueLive[pq]--
	r.liveNow--
}

func (r *Recorder) dropQueueNodes(pq uint32) {
	var doomed []uint32
	r.live.Range(func(node, owner uint32) bool {
		if owner == pq {
			doomed = append(doomed, node)
		}
		return true
	})
	for _, node := range doomed {
		r.live.Delete(node)
	}

	r.liveNow -= r.queueLive[pq]
	r.queueLive[pq] = 0
}
