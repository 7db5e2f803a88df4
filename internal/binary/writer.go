package binary

import (
	"encoding/binary"
	"math"
)

// Writer builds a big-endian octet sequence in memory. It is the encoding
// counterpart of Reader and exists for constructing GRIB sections, mainly
// from test fixtures.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteUint8 appends an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteUint16 appends an unsigned big-endian 16-bit integer.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteUint24 appends an unsigned big-endian 24-bit integer.
func (w *Writer) WriteUint24(v uint32) {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
}

// WriteUint32 appends an unsigned big-endian 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// WriteUint64 appends an unsigned big-endian 64-bit integer.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// WriteSignMagnitude16 appends a 16-bit signed field in sign-and-magnitude form.
func (w *Writer) WriteSignMagnitude16(v int32) {
	var u uint16
	if v < 0 {
		u = uint16(-v) | 0x8000
	} else {
		u = uint16(v)
	}
	w.WriteUint16(u)
}

// WriteSignMagnitude32 appends a 32-bit signed field in sign-and-magnitude form.
func (w *Writer) WriteSignMagnitude32(v int64) {
	var u uint32
	if v < 0 {
		u = uint32(-v) | 0x80000000
	} else {
		u = uint32(v)
	}
	w.WriteUint32(u)
}

// WriteFloat32 appends a big-endian IEEE 754 single-precision float.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// BitWriter packs fixed-width unsigned integers into a bit stream, most
// significant bit first, padding the final byte with zero bits.
type BitWriter struct {
	buf    []byte
	bitPos int
}

// NewBitWriter creates an empty bit writer.
func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// WriteBits appends the low width bits of v.
func (b *BitWriter) WriteBits(v uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		if b.bitPos&7 == 0 {
			b.buf = append(b.buf, 0)
		}
		if v>>i&1 != 0 {
			b.buf[len(b.buf)-1] |= 1 << (7 - b.bitPos&7)
		}
		b.bitPos++
	}
}

// Bytes returns the packed buffer, including any zero padding in the last byte.
func (b *BitWriter) Bytes() []byte {
	return b.buf
}
