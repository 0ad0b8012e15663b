package trace

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// WriteHeader encodes h to w.
func WriteHeader(w io.Writer, h Header) error {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], h.OpCount)
	binary.LittleEndian.PutUint32(buf[8:12], h.PQIDs)
	binary.LittleEndian.PutUint32(buf[12:16], h.NodeIDs)
	binary.LittleEndian.PutUint64(buf[16:24], h.MaxLiveNodes)

	_, err := w.Write(buf[:])
	return err
}

// WriteOp encodes one record to w.
func WriteOp(w io.Writer, op *Op) error {
	var buf [RecordSize]byte
	encodeRecord(buf[:], op)

	_, err := w.Write(buf[:])
	return err
}

// encodeRecord lays out the typed Op fields into the raw record slots per
// opcode, leaving unused words zero.
func encodeRecord(buf []byte, op *Op) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op.Code))
	binary.LittleEndian.PutUint32(buf[4:8], op.PQID)

	switch op.Code {
	case OpGetKey, OpGetItem, OpDelete, OpMeld:
		binary.LittleEndian.PutUint32(buf[8:12], op.NodeID)
	case OpInsert:
		binary.LittleEndian.PutUint32(buf[8:12], op.NodeID)
		binary.LittleEndian.PutUint32(buf[12:16], op.Item)
		binary.LittleEndian.PutUint32(buf[16:20], op.Key)
	case OpDecreaseKey:
		binary.LittleEndian.PutUint32(buf[8:12], op.NodeID)
		binary.LittleEndian.PutUint32(buf[12:16], op.Key)
	}
}

// WriteTo streams the whole trace to w, header first.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	if err := WriteHeader(bw, t.Header); err != nil {
		return 0, err
	}
	written := int64(HeaderSize)

	for i := range t.Ops {
		if err := WriteOp(bw, &t.Ops[i]); err != nil {
			return written, err
		}
		written += RecordSize
	}

	return written, bw.Flush()
}

// WriteFile writes the whole trace to path.
func (t *Trace) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
