package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ReadHeader decodes a trace header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, headerErr(err)
	}

	return Header{
		OpCount:      binary.LittleEndian.Uint64(buf[0:8]),
		PQIDs:        binary.LittleEndian.Uint32(buf[8:12]),
		NodeIDs:      binary.LittleEndian.Uint32(buf[12:16]),
		MaxLiveNodes: binary.LittleEndian.Uint64(buf[16:24]),
	}, nil
}

// ReadOp decodes the next record from r into op.
func ReadOp(r io.Reader, op *Op) error {
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrTruncated
		}
		return err
	}

	return decodeRecord(buf[:], op)
}

// decodeRecord maps a raw record onto the typed Op fields per opcode.
func decodeRecord(buf []byte, op *Op) error {
	code := Opcode(binary.LittleEndian.Uint32(buf[0:4]))
	if !code.Valid() {
		return fmt.Errorf("%w: %d", ErrBadOpcode, uint32(code))
	}

	w0 := binary.LittleEndian.Uint32(buf[4:8])
	w1 := binary.LittleEndian.Uint32(buf[8:12])
	w2 := binary.LittleEndian.Uint32(buf[12:16])
	w3 := binary.LittleEndian.Uint32(buf[16:20])

	*op = Op{Code: code, PQID: w0}

	switch code {
	case OpGetKey, OpGetItem, OpDelete:
		op.NodeID = w1
	case OpInsert:
		op.NodeID = w1
		op.Item = w2
		op.Key = w3
	case OpDecreaseKey:
		op.NodeID = w1
		op.Key = w2
	case OpMeld:
		// Reserved: keep the raw payload words around.
		op.NodeID = w1
	}

	return nil
}

// Decode reads a header and all its records from r.
func Decode(r io.Reader) (*Trace, error) {
	br := bufio.NewReader(r)

	header, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	tr := &Trace{
		Header: header,
		Ops:    make([]Op, header.OpCount),
	}
	for i := range tr.Ops {
		if err := ReadOp(br, &tr.Ops[i]); err != nil {
			return nil, &FormatError{Record: int64(i), Err: err}
		}
	}

	return tr, nil
}

// ReadFile loads the trace at path, checking that the file size matches
// the header before materializing the op stream.
func ReadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	header, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}

	want := int64(HeaderSize) + int64(header.OpCount)*RecordSize
	if info.Size() != want {
		return nil, fmt.Errorf("%w: %d ops need %d bytes, file has %d",
			ErrHeaderMismatch, header.OpCount, want, info.Size())
	}

	tr := &Trace{
		Header: header,
		Ops:    make([]Op, header.OpCount),
	}

	br := bufio.NewReader(f)
	for i := range tr.Ops {
		if err := ReadOp(br, &tr.Ops[i]); err != nil {
			return nil, &FormatError{Record: int64(i), Err: err}
		}
	}

	return tr, nil
}

func headerErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &FormatError{Record: -1, Err: ErrTruncated}
	}
	return err
}
