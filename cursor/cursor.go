// Package cursor contains the bounds-checked binary readers used to decode
// song files and instrument banks. All multi-byte reads are explicit about
// their endianness; nothing in here ever indexes past the end of its input.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncated is returned (wrapped in an *Error) whenever fewer bytes remain
// than a read requires.
var ErrTruncated = errors.New("truncated data")

// Error describes a short read: at Offset, Need bytes were required but only
// Have were available.
type Error struct {
	Offset int
	Need   int
	Have   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at offset %d: need %d bytes, have %d", ErrTruncated, e.Offset, e.Need, e.Have)
}

func (e *Error) Unwrap() error { return ErrTruncated }

// Reader reads values sequentially from a fixed byte slice.
type Reader struct {
	data []byte
	pos  int
}

func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the index of the next byte to be read.
func (r *Reader) Offset() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, &Error{Offset: r.pos, Need: n, Have: r.Remaining()}
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16LE() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32LE() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U24BE reads a three byte big-endian unsigned integer, used for lengths in
// the instrument bank.
func (r *Reader) U24BE() (uint32, error) {
	b, err := r.take(3)
	if err != nil {
		return 0, err
	}
	return be24(b), nil
}

func (r *Reader) U16BE() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Bytes returns the next n bytes. The returned slice aliases the underlying
// buffer; copy it if it needs to outlive the input.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// be24 decodes a three byte big-endian value by widening it to four bytes.
func be24(b []byte) uint32 {
	var w [4]byte
	copy(w[1:], b)
	return binary.BigEndian.Uint32(w[:])
}

// ReadFull reads exactly n bytes from r. A short read is reported as an
// *Error wrapping ErrTruncated, with offset the position relative to the
// start of this read; other reader failures are returned unchanged.
func ReadFull(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, &Error{Offset: got, Need: n, Have: got}
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func ReadU8(r io.Reader) (uint8, error) {
	b, err := ReadFull(r, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadU16BE(r io.Reader) (uint16, error) {
	b, err := ReadFull(r, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func ReadU24BE(r io.Reader) (uint32, error) {
	b, err := ReadFull(r, 3)
	if err != nil {
		return 0, err
	}
	return be24(b), nil
}

// Signed reinterprets a raw byte as a two's complement signed 8-bit sample:
// 0..127 stay as they are, 128..255 map to -128..-1.
func Signed(b byte) int8 {
	return int8(b)
}

// SignedSlice converts raw bytes to signed 8-bit PCM into a new slice.
func SignedSlice(data []byte) []int8 {
	ret := make([]int8, len(data))
	for i, b := range data {
		ret[i] = Signed(b)
	}
	return ret
}
