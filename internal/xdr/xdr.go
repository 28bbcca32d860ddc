// Package xdr provides little-endian binary encoding and decoding utilities
// for raster file headers and payloads.
//
// Reader and Writer keep the first error they encounter; later calls become
// no-ops, so a header can be read field by field and checked once.
package xdr

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrShortBuffer is returned when a read cannot complete because there
	// isn't enough data left.
	ErrShortBuffer = errors.New("xdr: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("xdr: negative size")
)

// ByteOrder is the byte order used by raster files.
var ByteOrder = binary.LittleEndian

// Reader reads little-endian values from a byte slice.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader creates a Reader from a byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// next returns the next n bytes, or nil once an error has occurred.
func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.err = ErrNegativeSize
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) []byte {
	return r.next(n)
}

// Uint8 reads an unsigned 8-bit integer.
func (r *Reader) Uint8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

// Uint32 reads an unsigned 32-bit integer.
func (r *Reader) Uint32() uint32 {
	if b := r.next(4); b != nil {
		return ByteOrder.Uint32(b)
	}
	return 0
}

// Uint64 reads an unsigned 64-bit integer.
func (r *Reader) Uint64() uint64 {
	if b := r.next(8); b != nil {
		return ByteOrder.Uint64(b)
	}
	return 0
}

// Int64 reads a signed 64-bit integer.
func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

// Writer appends little-endian values to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written data.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Write appends raw bytes.
func (w *Writer) Write(b []byte) {
	w.buf = append(w.buf, b...)
}

// Uint8 writes an unsigned 8-bit integer.
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Uint32 writes an unsigned 32-bit integer.
func (w *Writer) Uint32(v uint32) {
	w.buf = ByteOrder.AppendUint32(w.buf, v)
}

// Uint64 writes an unsigned 64-bit integer.
func (w *Writer) Uint64(v uint64) {
	w.buf = ByteOrder.AppendUint64(w.buf, v)
}

// Int64 writes a signed 64-bit integer.
func (w *Writer) Int64(v int64) {
	w.Uint64(uint64(v))
}
