package trace_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flier/gopq/pkg/trace"
)

// record builds the short Dijkstra-like workload of the format docs:
// three inserts, a decrease to a new minimum, a full drain.
func record(t *testing.T) *trace.Trace {
	t.Helper()

	r := trace.NewRecorder(10)

	require.NoError(t, r.Create(0))
	require.NoError(t, r.Insert(0, 1, 100, 10))
	require.NoError(t, r.Insert(0, 2, 200, 20))
	require.NoError(t, r.Insert(0, 3, 300, 30))
	require.NoError(t, r.DecreaseKey(0, 2, 5))
	require.NoError(t, r.DeleteMin(0, 2))
	require.NoError(t, r.DeleteMin(0, 1))
	require.NoError(t, r.DeleteMin(0, 3))
	require.NoError(t, r.Destroy(0))

	return r.Build()
}

func TestRecorderHeader(t *testing.T) {
	tr := record(t)

	require.Equal(t, uint64(9), tr.Header.OpCount)
	require.Equal(t, uint32(1), tr.Header.PQIDs)
	require.Equal(t, uint32(4), tr.Header.NodeIDs)
	require.Equal(t, uint64(3), tr.Header.MaxLiveNodes)
	require.Len(t, tr.Ops, 9)

	require.Equal(t, trace.Op{Code: trace.OpInsert, PQID: 0, NodeID: 2, Item: 200, Key: 20}, tr.Ops[2])
	require.Equal(t, trace.Op{Code: trace.OpDecreaseKey, PQID: 0, NodeID: 2, Key: 5}, tr.Ops[4])
	// Delete-min records carry no node id on the wire.
	require.Equal(t, trace.Op{Code: trace.OpDeleteMin, PQID: 0}, tr.Ops[5])
}

func TestRoundTrip(t *testing.T) {
	tr := record(t)

	var buf bytes.Buffer
	n, err := tr.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(trace.HeaderSize+9*trace.RecordSize), n)
	require.Equal(t, int(n), buf.Len())

	got, err := trace.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, tr.Header, got.Header)
	require.Equal(t, tr.Ops, got.Ops)
}

func TestFileRoundTrip(t *testing.T) {
	tr := record(t)
	path := filepath.Join(t.TempDir(), "workload.trace")

	require.NoError(t, tr.WriteFile(path))

	got, err := trace.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, tr.Header, got.Header)
	require.Equal(t, tr.Ops, got.Ops)
}

func TestReadFileHeaderMismatch(t *testing.T) {
	tr := record(t)
	path := filepath.Join(t.TempDir(), "short.trace")
	require.NoError(t, tr.WriteFile(path))

	// Chop the last record off; the header now promises more than the
	// file holds.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-trace.RecordSize], 0o644))

	_, err = trace.ReadFile(path)
	require.ErrorIs(t, err, trace.ErrHeaderMismatch)
}

func TestDecodeTruncated(t *testing.T) {
	tr := record(t)

	var buf bytes.Buffer
	_, err := tr.WriteTo(&buf)
	require.NoError(t, err)

	_, err = trace.Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-5]))
	require.ErrorIs(t, err, trace.ErrTruncated)

	var fe *trace.FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, int64(8), fe.Record)

	_, err = trace.Decode(bytes.NewReader(buf.Bytes()[:10]))
	require.ErrorIs(t, err, trace.ErrTruncated)
}

func TestDecodeBadOpcode(t *testing.T) {
	tr := record(t)

	var buf bytes.Buffer
	_, err := tr.WriteTo(&buf)
	require.NoError(t, err)

	// Overwrite the code word of record 3 with garbage.
	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[trace.HeaderSize+3*trace.RecordSize:], 99)

	_, err = trace.Decode(bytes.NewReader(raw))
	require.ErrorIs(t, err, trace.ErrBadOpcode)

	var fe *trace.FormatError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, int64(3), fe.Record)
}

func TestMeldIsReservedButReadable(t *testing.T) {
	tr := &trace.Trace{
		Header: trace.Header{OpCount: 1, PQIDs: 2, NodeIDs: 1, MaxLiveNodes: 1},
		Ops:    []trace.Op{{Code: trace.OpMeld, PQID: 0, NodeID: 1}},
	}

	var buf bytes.Buffer
	_, err := tr.WriteTo(&buf)
	require.NoError(t, err)

	got, err := trace.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, trace.OpMeld, got.Ops[0].Code)
}

func TestRecorderRejectsInconsistentStreams(t *testing.T) {
	r := trace.NewRecorder(0)

	require.ErrorIs(t, r.Insert(0, 0, 0, 1), trace.ErrInconsistent) // queue not created
	require.NoError(t, r.Create(0))
	require.ErrorIs(t, r.Create(0), trace.ErrInconsistent) // double create

	require.NoError(t, r.Insert(0, 7, 0, 1))
	require.ErrorIs(t, r.Insert(0, 7, 0, 2), trace.ErrInconsistent) // live id reuse
	require.ErrorIs(t, r.Delete(0, 8), trace.ErrInconsistent)       // dead node
	require.ErrorIs(t, r.GetKey(1, 7), trace.ErrInconsistent)       // wrong queue

	require.NoError(t, r.Delete(0, 7))
	require.NoError(t, r.Insert(0, 7, 0, 3)) // dead ids may be reused

	require.NoError(t, r.Clear(0))
	require.ErrorIs(t, r.DecreaseKey(0, 7, 1), trace.ErrInconsistent) // cleared
}

func TestRecorderMaxLiveAcrossQueues(t *testing.T) {
	r := trace.NewRecorder(0)

	require.NoError(t, r.Create(0))
	require.NoError(t, r.Create(1))
	require.NoError(t, r.Insert(0, 0, 0, 1))
	require.NoError(t, r.Insert(1, 1, 0, 2))
	require.NoError(t, r.Insert(1, 2, 0, 3))
	require.NoError(t, r.Destroy(1))
	require.NoError(t, r.Insert(0, 3, 0, 4))
	require.NoError(t, r.Destroy(0))

	tr := r.Build()
	require.Equal(t, uint32(2), tr.Header.PQIDs)
	require.Equal(t, uint32(4), tr.Header.NodeIDs)
	// Three nodes were live at once across both queues, never four.
	require.Equal(t, uint64(3), tr.Header.MaxLiveNodes)
}

func TestStats(t *testing.T) {
	tr := record(t)

	s := trace.Collect(tr.Ops)
	require.Equal(t, uint64(9), s.Total())
	require.Equal(t, uint64(3), s.Counts[trace.OpInsert])
	require.Equal(t, uint64(3), s.Counts[trace.OpDeleteMin])
	require.Equal(t, uint64(1), s.Counts[trace.OpDecreaseKey])

	out := s.String()
	require.Contains(t, out, "insert: 3\n")
	require.Contains(t, out, "delete_min: 3\n")
	require.NotContains(t, out, "meld")
}

func TestOpcodeNames(t *testing.T) {
	require.Equal(t, "decrease_key", trace.OpDecreaseKey.String())
	require.False(t, trace.Opcode(13).Valid())
	require.True(t, errors.Is(&trace.FormatError{Record: 1, Err: trace.ErrBadOpcode}, trace.ErrBadOpcode))
}
