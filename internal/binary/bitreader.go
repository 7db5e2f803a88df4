package binary

// BitReader extracts fixed-width unsigned integers from a packed bit stream.
// GRIB data sections pack each grid value into bitsPerValue bits with no
// byte alignment between values.
type BitReader struct {
	buf    []byte
	bitPos int
}

// NewBitReader creates a bit reader over buf starting at bit 0.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// Remaining returns the number of unread bits.
func (b *BitReader) Remaining() int {
	return len(b.buf)*8 - b.bitPos
}

// ReadBits reads the next width bits as an unsigned integer, most
// significant bit first. width must be between 1 and 32.
func (b *BitReader) ReadBits(width int) (uint32, error) {
	if width < 1 || width > 32 {
		return 0, ErrShortBuffer
	}
	if b.bitPos+width > len(b.buf)*8 {
		return 0, ErrShortBuffer
	}
	var v uint32
	for i := 0; i < width; i++ {
		byteIdx := b.bitPos >> 3
		bitIdx := 7 - (b.bitPos & 7)
		v = v<<1 | uint32(b.buf[byteIdx]>>bitIdx&1)
		b.bitPos++
	}
	return v, nil
}
