// Package binary provides low-level binary I/O operations for GRIB section parsing.
package binary

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a read extends past the end of the buffer.
var ErrShortBuffer = errors.New("read past end of buffer")

// Reader provides methods for reading GRIB binary fields from an in-memory
// octet sequence. All multi-byte fields in GRIB are big-endian, and signed
// fields use sign-and-magnitude representation rather than two's complement.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a reader over buf, positioned at the start.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// At returns a new reader over the same buffer positioned at offset.
// The new reader shares the underlying bytes but has independent position.
func (r *Reader) At(offset int) *Reader {
	return &Reader{buf: r.buf, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int) error {
	if r.pos+n > len(r.buf) {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// ReadBytes reads exactly n bytes from the current position.
// The returned slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads an unsigned big-endian 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint24 reads an unsigned big-endian 24-bit integer, used by GRIB
// for medium-range counts such as section lengths in edition 1.
func (r *Reader) ReadUint24() (uint32, error) {
	b, err := r.ReadBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// ReadUint32 reads an unsigned big-endian 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadUint64 reads an unsigned big-endian 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadSignMagnitude16 reads a 16-bit signed field in GRIB sign-and-magnitude
// form: the high bit carries the sign, the remaining 15 bits the magnitude.
func (r *Reader) ReadSignMagnitude16() (int32, error) {
	v, err := r.ReadUint16()
	if err != nil {
		return 0, err
	}
	mag := int32(v & 0x7fff)
	if v&0x8000 != 0 {
		return -mag, nil
	}
	return mag, nil
}

// ReadSignMagnitude32 reads a 32-bit signed field in sign-and-magnitude form.
func (r *Reader) ReadSignMagnitude32() (int64, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	mag := int64(v & 0x7fffffff)
	if v&0x80000000 != 0 {
		return -mag, nil
	}
	return mag, nil
}

// ReadFloat32 reads a big-endian IEEE 754 single-precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
