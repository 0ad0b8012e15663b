// Package trace defines the binary format for recorded priority-queue
// operation streams and the tools to read, write and summarize them.
//
// A trace file is a 24-byte header followed by op_count fixed-width
// records. Every record occupies RecordSize bytes regardless of opcode, so
// a reader can slice the stream without branching; payload words a given
// opcode does not use are zero. All integers are little-endian.
//
//	Header:
//	  op_count       u64    number of op records following
//	  pq_ids         u32    one past the highest pq id used
//	  node_ids       u32    one past the highest node id used
//	  max_live_nodes u64    upper bound for allocator sizing
//
//	Record:
//	  code           u32    opcode
//	  payload        4×u32  fields per opcode, zero padded
package trace

import (
	"errors"
	"fmt"
)

// Opcode tags an operation record.
type Opcode uint32

const (
	OpCreate Opcode = iota
	OpDestroy
	OpClear
	OpGetKey
	OpGetItem
	OpGetSize
	OpInsert
	OpFindMin
	OpDelete
	OpDeleteMin
	OpDecreaseKey
	OpMeld // reserved, unused
	OpEmpty

	opcodeCount
)

var opcodeNames = [...]string{
	"create", "destroy", "clear", "get_key", "get_item", "get_size",
	"insert", "find_min", "delete", "delete_min", "decrease_key",
	"meld", "empty",
}

func (c Opcode) String() string {
	if int(c) < len(opcodeNames) {
		return opcodeNames[c]
	}
	return fmt.Sprintf("opcode(%d)", uint32(c))
}

// Valid reports whether c is a known opcode.
func (c Opcode) Valid() bool { return c < opcodeCount }

const (
	// HeaderSize is the on-disk size of a trace header.
	HeaderSize = 24

	// RecordSize is the common on-disk size of every op record.
	RecordSize = 20
)

// Header describes the stream that follows it.
type Header struct {
	// OpCount is the number of op records in the stream.
	OpCount uint64

	// PQIDs is one past the highest queue id any record uses.
	PQIDs uint32

	// NodeIDs is one past the highest node id any record uses.
	NodeIDs uint32

	// MaxLiveNodes bounds the number of concurrently live nodes; the
	// replay engine sizes its allocator from it.
	MaxLiveNodes uint64
}

// Op is one decoded operation record. Which fields carry meaning depends
// on the opcode; unused fields are zero.
type Op struct {
	Code   Opcode
	PQID   uint32
	NodeID uint32
	Item   uint32
	Key    uint32
}

// Trace is a fully materialized trace.
type Trace struct {
	Header Header
	Ops    []Op
}

var (
	// ErrTruncated reports a header or record cut short.
	ErrTruncated = errors.New("trace: truncated stream")

	// ErrBadOpcode reports a record with an unknown opcode.
	ErrBadOpcode = errors.New("trace: unknown opcode")

	// ErrHeaderMismatch reports a file whose size disagrees with its
	// header.
	ErrHeaderMismatch = errors.New("trace: header disagrees with stream")

	// ErrInconsistent reports a recorded operation that would break the
	// self-consistency rules of the format.
	ErrInconsistent = errors.New("trace: inconsistent operation")
)

// FormatError decorates a format-level error with the position it was
// detected at.
type FormatError struct {
	// Record is the index of the offending record, or -1 for the header.
	Record int64

	Err error
}

func (e *FormatError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("trace: bad header: %v", e.Err)
	}
	return fmt.Sprintf("trace: bad record %d: %v", e.Record, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
