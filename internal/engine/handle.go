package engine

import "strconv"

// Handle is the engine-side resource for one decoded message. It owns the
// parsed section index over the raw message bytes and must be released
// exactly once by its single owner. A Handle is not safe for concurrent use.
type Handle struct {
	buf      []byte
	msg      *message
	released bool
}

// newHandle indexes buf into a handle. Callers already hold the engine mutex.
func newHandle(buf []byte) (*Handle, *Error) {
	msg, err := parseMessage(buf)
	if err != nil {
		return nil, err
	}
	return &Handle{buf: buf, msg: msg}, nil
}

// Release frees the handle. Further calls are no-ops; further key access
// reports CodeNullHandle.
func (h *Handle) Release() {
	h.released = true
	h.buf = nil
	h.msg = nil
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	return h.released
}

// Length returns the total message length in octets.
func (h *Handle) Length() int {
	if h.released {
		return 0
	}
	return len(h.buf)
}

// CheckTrailer verifies the 7777 end-of-message marker.
func (h *Handle) CheckTrailer() *Error {
	if h.released {
		return errorf(CodeNullHandle, "handle already released")
	}
	if !h.msg.hasTrailer {
		return errorf(Code7777NotFound, "end-of-message marker 7777 not found")
	}
	return nil
}

// IsDefined reports whether key has a value for this message.
func (h *Handle) IsDefined(key string) bool {
	if h.released {
		return false
	}
	_, ok := h.lookup(key)
	return ok
}

// GetString returns the value of a scalar key formatted as a string.
func (h *Handle) GetString(key string) (string, *Error) {
	if h.released {
		return "", errorf(CodeNullHandle, "handle already released")
	}
	v, ok := h.lookup(key)
	if !ok {
		return "", errorf(CodeNotFound, "key %q not defined", key)
	}
	switch v.kind {
	case kindString:
		return v.s, nil
	case kindLong:
		return strconv.FormatInt(v.i, 10), nil
	default:
		return strconv.FormatFloat(v.f, 'g', -1, 64), nil
	}
}

// GetLong returns the value of a scalar key as an integer.
func (h *Handle) GetLong(key string) (int64, *Error) {
	if h.released {
		return 0, errorf(CodeNullHandle, "handle already released")
	}
	v, ok := h.lookup(key)
	if !ok {
		return 0, errorf(CodeNotFound, "key %q not defined", key)
	}
	switch v.kind {
	case kindLong:
		return v.i, nil
	case kindDouble:
		return int64(v.f), nil
	default:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, errorf(CodeWrongType, "key %q is not integer-valued", key)
		}
		return n, nil
	}
}

// GetDouble returns the value of a scalar key as a float.
func (h *Handle) GetDouble(key string) (float64, *Error) {
	if h.released {
		return 0, errorf(CodeNullHandle, "handle already released")
	}
	v, ok := h.lookup(key)
	if !ok {
		return 0, errorf(CodeNotFound, "key %q not defined", key)
	}
	switch v.kind {
	case kindDouble:
		return v.f, nil
	case kindLong:
		return float64(v.i), nil
	default:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, errorf(CodeWrongType, "key %q is not numeric", key)
		}
		return f, nil
	}
}

// GetSize returns the element count of an array-valued key.
func (h *Handle) GetSize(key string) (int, *Error) {
	if h.released {
		return 0, errorf(CodeNullHandle, "handle already released")
	}
	switch key {
	case "values":
		if h.msg.repr == nil || h.msg.data == nil {
			return 0, errorf(CodeNotFound, "key %q not defined", key)
		}
		return h.msg.fullCount(), nil
	case "bitmap":
		if !h.msg.bitmapApplies() {
			return 0, errorf(CodeNotFound, "key %q not defined", key)
		}
		return h.msg.fullCount(), nil
	default:
		if _, ok := h.lookup(key); ok {
			return 0, errorf(CodeWrongType, "key %q is not array-valued", key)
		}
		return 0, errorf(CodeNotFound, "key %q not defined", key)
	}
}

// GetDoubleArray decodes an array-valued key as floats. For "values" the
// result has full grid length, with points excluded by the bitmap filled
// with MissingValue.
func (h *Handle) GetDoubleArray(key string) ([]float64, *Error) {
	n, err := h.GetSize(key)
	if err != nil {
		return nil, err
	}
	dst := make([]float64, n)
	if err := h.GetDoubleArrayInto(key, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// GetDoubleArrayInto decodes an array-valued key into dst, whose length
// must equal GetSize(key).
func (h *Handle) GetDoubleArrayInto(key string, dst []float64) *Error {
	n, err := h.GetSize(key)
	if err != nil {
		return err
	}
	if len(dst) != n {
		return errorf(CodeBufferTooSmall, "destination holds %d elements, key %q has %d", len(dst), key, n)
	}
	switch key {
	case "values":
		return h.decodeValuesInto(dst)
	default:
		bits, err := h.bitmapFlags()
		if err != nil {
			return err
		}
		for i, b := range bits {
			dst[i] = float64(b)
		}
		return nil
	}
}

// GetLongArray decodes an array-valued key as integers. Float values are
// truncated toward zero.
func (h *Handle) GetLongArray(key string) ([]int64, *Error) {
	n, err := h.GetSize(key)
	if err != nil {
		return nil, err
	}
	dst := make([]int64, n)
	if err := h.GetLongArrayInto(key, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// GetLongArrayInto decodes an array-valued key into dst, whose length must
// equal GetSize(key).
func (h *Handle) GetLongArrayInto(key string, dst []int64) *Error {
	n, err := h.GetSize(key)
	if err != nil {
		return err
	}
	if len(dst) != n {
		return errorf(CodeBufferTooSmall, "destination holds %d elements, key %q has %d", len(dst), key, n)
	}
	switch key {
	case "bitmap":
		bits, err := h.bitmapFlags()
		if err != nil {
			return err
		}
		copy(dst, bits)
		return nil
	default:
		vals := make([]float64, n)
		if err := h.decodeValuesInto(vals); err != nil {
			return err
		}
		for i, v := range vals {
			dst[i] = int64(v)
		}
		return nil
	}
}

// bitmapFlags expands the bitmap section into one 0/1 flag per grid point.
func (h *Handle) bitmapFlags() ([]int64, *Error) {
	if h.released {
		return nil, errorf(CodeNullHandle, "handle already released")
	}
	if !h.msg.bitmapApplies() {
		return nil, errorf(CodeNotFound, "message declares no bitmap")
	}
	n := h.msg.fullCount()
	if len(h.msg.bitmap.bits)*8 < n {
		return nil, errorf(CodeInvalidSection, "bitmap holds %d bits, grid has %d points", len(h.msg.bitmap.bits)*8, n)
	}
	flags := make([]int64, n)
	for i := 0; i < n; i++ {
		if h.msg.bitmap.bits[i>>3]>>(7-i&7)&1 != 0 {
			flags[i] = 1
		}
	}
	return flags, nil
}
