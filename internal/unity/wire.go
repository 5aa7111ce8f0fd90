package unity

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Low-level wire helpers shared by the container, bundle and module
// codecs. All multi-byte values are little endian; strings and blobs are
// uvarint length prefixed.

type wireWriter struct {
	buf bytes.Buffer
}

func (w *wireWriter) byte(b byte) {
	w.buf.WriteByte(b)
}

func (w *wireWriter) uvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *wireWriter) varint(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *wireWriter) uint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf.Write(tmp[:])
}

func (w *wireWriter) float64(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf.Write(tmp[:])
}

func (w *wireWriter) string(s string) {
	w.uvarint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *wireWriter) bytes(b []byte) {
	w.uvarint(uint64(len(b)))
	w.buf.Write(b)
}

func (w *wireWriter) raw(b []byte) {
	w.buf.Write(b)
}

func (w *wireWriter) data() []byte {
	return w.buf.Bytes()
}

type wireReader struct {
	r *bytes.Reader
}

func newWireReader(data []byte) *wireReader {
	return &wireReader{r: bytes.NewReader(data)}
}

func (r *wireReader) byte() (byte, error) {
	return r.r.ReadByte()
}

func (r *wireReader) uvarint() (uint64, error) {
	return binary.ReadUvarint(r.r)
}

func (r *wireReader) varint() (int64, error) {
	return binary.ReadVarint(r.r)
}

func (r *wireReader) uint32() (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r.r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func (r *wireReader) float64() (float64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r.r, tmp[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(tmp[:])), nil
}

func (r *wireReader) string() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *wireReader) bytes() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.r.Len()) {
		return nil, fmt.Errorf("truncated payload: declared %d bytes, %d remain", n, r.r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *wireReader) expectMagic(magic string) error {
	b := make([]byte, len(magic))
	if _, err := io.ReadFull(r.r, b); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if string(b) != magic {
		return fmt.Errorf("bad magic %q, want %q", b, magic)
	}
	return nil
}
