package engine

import (
	"math"

	"github.com/robert-malhotra/go-grib/internal/binary"
)

// MissingValue fills grid points excluded by the bitmap in decoded value
// arrays, matching the GRIB convention for missing data placeholders.
const MissingValue = 9999.0

// decodeValuesInto unpacks the data section into dst, which must have full
// grid length. With a bitmap, the packed stream holds only present points;
// excluded points are filled with MissingValue.
func (h *Handle) decodeValuesInto(dst []float64) *Error {
	if h.released {
		return errorf(CodeNullHandle, "handle already released")
	}
	repr := h.msg.repr
	if repr == nil || h.msg.data == nil {
		return errorf(CodeNotFound, "message has no data section")
	}
	if repr.templateNumber != 0 {
		return errorf(CodeUnsupportedTemplate, "data representation template %d not supported", repr.templateNumber)
	}

	scale := math.Pow(2, float64(repr.binaryScale)) / math.Pow(10, float64(repr.decimalScale))
	ref := float64(repr.referenceValue) / math.Pow(10, float64(repr.decimalScale))

	unpack := func() (float64, *Error) {
		return ref, nil
	}
	if repr.bitsPerValue > 0 {
		if repr.bitsPerValue > 32 {
			return errorf(CodeUnsupportedTemplate, "bitsPerValue %d not supported", repr.bitsPerValue)
		}
		br := binary.NewBitReader(h.msg.data)
		width := int(repr.bitsPerValue)
		unpack = func() (float64, *Error) {
			x, err := br.ReadBits(width)
			if err != nil {
				return 0, errorf(CodePrematureEndOfFile, "data section exhausted while unpacking")
			}
			return ref + float64(x)*scale, nil
		}
	}

	if h.msg.bitmapApplies() {
		bits := h.msg.bitmap.bits
		if len(bits)*8 < len(dst) {
			return errorf(CodeInvalidSection, "bitmap holds %d bits, grid has %d points", len(bits)*8, len(dst))
		}
		for i := range dst {
			if bits[i>>3]>>(7-i&7)&1 == 0 {
				dst[i] = MissingValue
				continue
			}
			v, err := unpack()
			if err != nil {
				return err
			}
			dst[i] = v
		}
		return nil
	}

	for i := range dst {
		v, err := unpack()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// valueStats holds statistics over the present (non-missing) grid points.
type valueStats struct {
	min float64
	max float64
	avg float64
}

// valueStatistics decodes the payload and reduces it, skipping points the
// bitmap marks missing. Fails when the message has no decodable data.
func (h *Handle) valueStatistics() (*valueStats, *Error) {
	n, err := h.GetSize("values")
	if err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	if err := h.decodeValuesInto(vals); err != nil {
		return nil, err
	}

	var flags []int64
	if h.msg.bitmapApplies() {
		flags, err = h.bitmapFlags()
		if err != nil {
			return nil, err
		}
	}

	s := &valueStats{min: math.Inf(1), max: math.Inf(-1)}
	var sum float64
	var count int
	for i, v := range vals {
		if flags != nil && flags[i] == 0 {
			continue
		}
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
		sum += v
		count++
	}
	if count == 0 {
		return nil, errorf(CodeNotFound, "message has no present values")
	}
	s.avg = sum / float64(count)
	return s, nil
}
