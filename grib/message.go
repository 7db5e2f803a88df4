package grib

import (
	"math"

	"github.com/robert-malhotra/go-grib/internal/engine"
)

// Message is one decoded GRIB record. It exclusively owns its engine handle
// until Close; attribute lookups go to the engine on demand and are not
// cached. A Message decoded from a byte buffer is valid only while that
// buffer stays alive.
type Message struct {
	h      *engine.Handle
	closed bool
}

// newMessage wraps a fresh handle, validating the end-of-message trailer.
// On validation failure the handle is released and no Message is returned.
func newMessage(h *engine.Handle) (*Message, error) {
	if e := h.CheckTrailer(); e != nil {
		h.Release()
		return nil, ErrMalformedMessage
	}
	return &Message{h: h}, nil
}

// Close releases the engine handle. Idempotent; every accessor on a closed
// Message reports ErrMessageClosed or an undefined key.
func (m *Message) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.h.Release()
	return nil
}

// Length returns the total encoded message length in bytes.
func (m *Message) Length() int {
	return m.h.Length()
}

// Get looks up a key as a string. The second return is false when the key
// is not defined for this message; absence is common and is not an error.
func (m *Message) Get(key string) (string, bool) {
	if m.closed {
		return "", false
	}
	v, err := m.h.GetString(key)
	if err != nil {
		return "", false
	}
	return v, true
}

// GetInt looks up a key as an integer.
func (m *Message) GetInt(key string) (int64, bool) {
	if m.closed {
		return 0, false
	}
	v, err := m.h.GetLong(key)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Size returns the element count of an array-valued key such as "values"
// or "bitmap". Unlike Get, a missing or non-array key here is an error:
// callers asking for an array size rely on the key existing.
func (m *Message) Size(key string) (int, error) {
	if m.closed {
		return 0, ErrMessageClosed
	}
	n, err := m.h.GetSize(key)
	if err != nil {
		return 0, engineErr(err)
	}
	return n, nil
}

// Values decodes the numeric payload with missing points masked to NaN
// wherever the bitmap flags them absent. Without a bitmap the payload is
// returned unmasked.
func (m *Message) Values() ([]float64, error) {
	if m.closed {
		return nil, ErrMessageClosed
	}
	vals, err := m.h.GetDoubleArray("values")
	if err != nil {
		return nil, engineErr(err)
	}
	if err := m.maskValues(vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// ValuesInto decodes the payload into *dst, resizing it first: grown with
// zeros or truncated to the value count. Reusing one buffer across messages
// of similar size avoids per-message allocation. On error the buffer
// contents are unspecified and must not be used.
func (m *Message) ValuesInto(dst *[]float64) error {
	if m.closed {
		return ErrMessageClosed
	}
	n, err := m.h.GetSize("values")
	if err != nil {
		return engineErr(err)
	}
	*dst = resizeFloat64(*dst, n)
	if err := m.h.GetDoubleArrayInto("values", *dst); err != nil {
		return engineErr(err)
	}
	return m.maskValues(*dst)
}

// Bitmap returns the 0/1 presence flags, one per grid point, or nil when
// the message declares no bitmap. A nil result with a nil error is the
// normal no-bitmap case, not a failure.
func (m *Message) Bitmap() ([]int64, error) {
	if m.closed {
		return nil, ErrMessageClosed
	}
	present, ok := m.bitmapPresent()
	if !ok || !present {
		return nil, nil
	}
	bm, err := m.h.GetLongArray("bitmap")
	if err != nil {
		return nil, engineErr(err)
	}
	return bm, nil
}

// BitmapInto decodes the bitmap into *dst with the same resize contract as
// ValuesInto. The no-bitmap case truncates *dst to zero length.
func (m *Message) BitmapInto(dst *[]int64) error {
	if m.closed {
		return ErrMessageClosed
	}
	present, ok := m.bitmapPresent()
	if !ok || !present {
		*dst = (*dst)[:0]
		return nil
	}
	n, err := m.h.GetSize("bitmap")
	if err != nil {
		return engineErr(err)
	}
	*dst = resizeInt64(*dst, n)
	if err := m.h.GetLongArrayInto("bitmap", *dst); err != nil {
		return engineErr(err)
	}
	return nil
}

// Keys iterates the (key, value) pairs defined for this message within ns.
// The iterator is lazy, finite and single pass; close it when abandoning
// iteration early.
func (m *Message) Keys(ns Namespace) *KeyIterator {
	if m.closed {
		return &KeyIterator{err: ErrMessageClosed, closed: true}
	}
	return &KeyIterator{
		m:    m,
		it:   m.h.NewKeyIterator(string(ns)),
		seen: make(map[string]struct{}),
	}
}

// Coordinates iterates (latitude, longitude, value) triples over the grid
// in storage order, masking values to NaN where the bitmap marks them
// missing. The iterator is lazy, finite and single pass.
func (m *Message) Coordinates() (*GridIterator, error) {
	if m.closed {
		return nil, ErrMessageClosed
	}
	it, err := m.h.NewGridIterator()
	if err != nil {
		return nil, engineErr(err)
	}
	bitmap, berr := m.Bitmap()
	if berr != nil {
		it.Release()
		return nil, berr
	}
	return &GridIterator{it: it, bitmap: bitmap}, nil
}

// bitmapPresent reports the message's bitmapPresent key.
func (m *Message) bitmapPresent() (present, ok bool) {
	v, err := m.h.GetLong("bitmapPresent")
	if err != nil {
		return false, false
	}
	return v != 0, true
}

// maskValues applies the canonical missing-value contract: for every index
// the bitmap flags as 0, the value becomes NaN; all other values are left
// untouched. No bitmap means no masking.
func (m *Message) maskValues(vals []float64) error {
	bitmap, err := m.Bitmap()
	if err != nil {
		return err
	}
	if bitmap == nil {
		return nil
	}
	for i, flag := range bitmap {
		if flag == 0 {
			vals[i] = math.NaN()
		}
	}
	return nil
}

func resizeFloat64(s []float64, n int) []float64 {
	if cap(s) >= n {
		s = s[:n]
	} else {
		s = append(s[:cap(s)], make([]float64, n-cap(s))...)
	}
	return s
}

func resizeInt64(s []int64, n int) []int64 {
	if cap(s) >= n {
		s = s[:n]
	} else {
		s = append(s[:cap(s)], make([]int64, n-cap(s))...)
	}
	return s
}
