// Package gribtest builds synthetic GRIB edition 2 messages for tests.
// Messages use grid definition template 3.0 (regular lat/lon), product
// definition template 4.0 and data representation template 5.0 (simple
// packing), which is the subset the engine decodes.
package gribtest

import (
	"math"

	"github.com/robert-malhotra/go-grib/internal/binary"
)

// Grid describes a regular latitude/longitude grid. Coordinates and
// increments are in degrees; scanning mode 0 stores rows north to south,
// columns west to east.
type Grid struct {
	Ni, Nj       int
	Lat1, Lon1   float64
	Lat2, Lon2   float64
	IInc, JInc   float64
	ScanningMode uint8
}

// Options describes one synthetic message. Zero values produce a valid
// minimal message; Values defaults to a small ramp when nil.
type Options struct {
	Discipline uint8
	Category   uint8
	Number     uint8

	Centre   uint16
	DataType uint8
	Year     int
	Month    int
	Day      int
	Hour     int
	Minute   int

	SurfaceType  uint8
	SurfaceValue uint32

	ForecastTime int

	Grid   Grid
	Values []float64
	// Bitmap flags presence per grid point; nil means no bitmap section.
	// Values at positions flagged false are not encoded.
	Bitmap []bool

	// OmitTrailer replaces the 7777 end marker with garbage of the same
	// length, producing a malformed message of the declared size.
	OmitTrailer bool
	// Truncate removes this many bytes from the end of the encoded
	// message without adjusting the declared length.
	Truncate int
}

// Build encodes one message.
func Build(opt Options) []byte {
	opt = withDefaults(opt)

	sections := [][]byte{
		section(1, identification(opt)),
		section(3, gridDefinition(opt.Grid)),
		section(4, productDefinition(opt)),
	}
	packed, ref, bits, count := pack(opt.Values, opt.Bitmap)
	sections = append(sections, section(5, dataRepresentation(ref, bits, count)))
	sections = append(sections, section(6, bitmapSection(opt.Bitmap)))
	sections = append(sections, section(7, packed))

	body := 0
	for _, s := range sections {
		body += len(s)
	}
	total := 16 + body + 4

	w := binary.NewWriter()
	w.WriteBytes([]byte("GRIB"))
	w.WriteUint16(0) // reserved
	w.WriteUint8(opt.Discipline)
	w.WriteUint8(2) // edition
	w.WriteUint64(uint64(total))
	for _, s := range sections {
		w.WriteBytes(s)
	}
	if opt.OmitTrailer {
		w.WriteBytes([]byte("XXXX"))
	} else {
		w.WriteBytes([]byte("7777"))
	}

	buf := w.Bytes()
	if opt.Truncate > 0 && opt.Truncate < len(buf) {
		buf = buf[:len(buf)-opt.Truncate]
	}
	return buf
}

// Concat joins encoded messages into one container buffer.
func Concat(msgs ...[]byte) []byte {
	var out []byte
	for _, m := range msgs {
		out = append(out, m...)
	}
	return out
}

func withDefaults(opt Options) Options {
	if opt.Centre == 0 {
		opt.Centre = 98
	}
	if opt.Year == 0 {
		opt.Year = 2024
	}
	if opt.Month == 0 {
		opt.Month = 1
	}
	if opt.Day == 0 {
		opt.Day = 15
	}
	if opt.SurfaceType == 0 {
		opt.SurfaceType = 1
	}
	if opt.Grid.Ni == 0 {
		opt.Grid = Grid{Ni: 4, Nj: 2, Lat1: 60, Lon1: 0, Lat2: 59, Lon2: 3, IInc: 1, JInc: 1}
	}
	if opt.Values == nil {
		opt.Values = make([]float64, opt.Grid.Ni*opt.Grid.Nj)
		for i := range opt.Values {
			opt.Values[i] = float64(i)
		}
	}
	return opt
}

func section(number uint8, body []byte) []byte {
	w := binary.NewWriter()
	w.WriteUint32(uint32(len(body) + 5))
	w.WriteUint8(number)
	w.WriteBytes(body)
	return w.Bytes()
}

func identification(opt Options) []byte {
	w := binary.NewWriter()
	w.WriteUint16(opt.Centre)
	w.WriteUint16(0) // subCentre
	w.WriteUint8(2)  // tablesVersion
	w.WriteUint8(0)  // localTablesVersion
	w.WriteUint8(1)  // significance of reference time
	w.WriteUint16(uint16(opt.Year))
	w.WriteUint8(uint8(opt.Month))
	w.WriteUint8(uint8(opt.Day))
	w.WriteUint8(uint8(opt.Hour))
	w.WriteUint8(uint8(opt.Minute))
	w.WriteUint8(0) // second
	w.WriteUint8(0) // production status
	w.WriteUint8(opt.DataType)
	return w.Bytes()
}

func gridDefinition(g Grid) []byte {
	w := binary.NewWriter()
	w.WriteUint8(0) // source of grid definition
	w.WriteUint32(uint32(g.Ni * g.Nj))
	w.WriteUint8(0)  // octets for optional list
	w.WriteUint8(0)  // interpretation
	w.WriteUint16(0) // template 3.0

	w.WriteUint8(6) // shape of the earth
	w.WriteUint8(0)
	w.WriteUint32(0)
	w.WriteUint8(0)
	w.WriteUint32(0)
	w.WriteUint8(0)
	w.WriteUint32(0)
	w.WriteUint32(uint32(g.Ni))
	w.WriteUint32(uint32(g.Nj))
	w.WriteUint32(0) // basic angle
	w.WriteUint32(0) // subdivisions
	w.WriteSignMagnitude32(microdegrees(g.Lat1))
	w.WriteSignMagnitude32(microdegrees(g.Lon1))
	w.WriteUint8(0x30) // resolution and component flags: increments given
	w.WriteSignMagnitude32(microdegrees(g.Lat2))
	w.WriteSignMagnitude32(microdegrees(g.Lon2))
	w.WriteSignMagnitude32(microdegrees(g.IInc))
	w.WriteSignMagnitude32(microdegrees(g.JInc))
	w.WriteUint8(g.ScanningMode)
	return w.Bytes()
}

func productDefinition(opt Options) []byte {
	w := binary.NewWriter()
	w.WriteUint16(0) // coordinate values
	w.WriteUint16(0) // template 4.0
	w.WriteUint8(opt.Category)
	w.WriteUint8(opt.Number)
	w.WriteUint8(2)  // generating process: forecast
	w.WriteUint8(0)  // background process
	w.WriteUint8(0)  // process identifier
	w.WriteUint16(0) // cutoff hours
	w.WriteUint8(0)  // cutoff minutes
	w.WriteUint8(1)  // time range unit: hour
	w.WriteSignMagnitude32(int64(opt.ForecastTime))
	w.WriteUint8(opt.SurfaceType)
	w.WriteUint8(0)
	w.WriteUint32(opt.SurfaceValue)
	w.WriteUint8(255) // second fixed surface: missing
	w.WriteUint8(255)
	w.WriteUint32(0xffffffff)
	return w.Bytes()
}

func dataRepresentation(ref float64, bits uint8, count int) []byte {
	w := binary.NewWriter()
	w.WriteUint32(uint32(count))
	w.WriteUint16(0) // template 5.0
	w.WriteFloat32(float32(ref))
	w.WriteSignMagnitude16(0) // binary scale factor
	w.WriteSignMagnitude16(0) // decimal scale factor
	w.WriteUint8(bits)
	w.WriteUint8(0) // original field type: float
	return w.Bytes()
}

func bitmapSection(bitmap []bool) []byte {
	w := binary.NewWriter()
	if bitmap == nil {
		w.WriteUint8(255) // no bitmap applies
		return w.Bytes()
	}
	w.WriteUint8(0)
	bw := binary.NewBitWriter()
	for _, present := range bitmap {
		if present {
			bw.WriteBits(1, 1)
		} else {
			bw.WriteBits(0, 1)
		}
	}
	w.WriteBytes(bw.Bytes())
	return w.Bytes()
}

// pack applies simple packing with zero binary and decimal scale factors:
// values must be integer-valued floats for exact round trips. The reference
// is the minimum present value; bit width fits the largest offset.
func pack(values []float64, bitmap []bool) (packed []byte, ref float64, bits uint8, count int) {
	var present []float64
	for i, v := range values {
		if bitmap != nil && !bitmap[i] {
			continue
		}
		present = append(present, v)
	}
	count = len(present)
	if count == 0 {
		return nil, 0, 0, 0
	}

	ref = math.Inf(1)
	max := math.Inf(-1)
	for _, v := range present {
		ref = math.Min(ref, v)
		max = math.Max(max, v)
	}
	span := uint64(max - ref)
	for s := span; s > 0; s >>= 1 {
		bits++
	}
	if bits == 0 {
		return nil, ref, 0, count
	}

	bw := binary.NewBitWriter()
	for _, v := range present {
		bw.WriteBits(uint32(v-ref), int(bits))
	}
	return bw.Bytes(), ref, bits, count
}

func microdegrees(deg float64) int64 {
	return int64(math.Round(deg * 1e6))
}
