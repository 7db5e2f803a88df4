package engine

import (
	"bytes"

	"github.com/robert-malhotra/go-grib/internal/binary"
)

// Magic is the four-octet marker opening section 0 of every GRIB message.
var Magic = []byte("GRIB")

// Trailer is the four-octet end-of-message marker (section 8).
var Trailer = []byte("7777")

// indicator is section 0: discipline, edition and the total message length.
type indicator struct {
	discipline  uint8
	edition     uint8
	totalLength uint64
}

// identification is section 1: originating centre and reference time.
type identification struct {
	centre             uint16
	subCentre          uint16
	tablesVersion      uint8
	localTablesVersion uint8
	significanceOfRT   uint8
	year               uint16
	month              uint8
	day                uint8
	hour               uint8
	minute             uint8
	second             uint8
	productionStatus   uint8
	dataType           uint8
}

// gridDefinition is section 3. Template fields are populated only for
// grid definition template 3.0 (regular latitude/longitude).
type gridDefinition struct {
	numberOfDataPoints uint32
	templateNumber     uint16

	ni              uint32
	nj              uint32
	lat1            int64 // microdegrees
	lon1            int64
	lat2            int64
	lon2            int64
	iInc            int64
	jInc            int64
	resolutionFlags uint8
	scanningMode    uint8
}

// productDefinition is section 4, product definition template 4.0.
type productDefinition struct {
	templateNumber    uint16
	parameterCategory uint8
	parameterNumber   uint8
	generatingProcess uint8
	timeRangeUnit     uint8
	forecastTime      int64
	surfaceType       uint8
	surfaceScale      uint8
	surfaceValue      uint32
}

// dataRepresentation is section 5, data representation template 5.0
// (grid point data, simple packing).
type dataRepresentation struct {
	numberOfValues uint32
	templateNumber uint16
	referenceValue float32
	binaryScale    int32
	decimalScale   int32
	bitsPerValue   uint8
}

// bitmapSection is section 6. bits holds the packed presence flags when
// the indicator is 0; indicator 255 means no bitmap applies.
type bitmapSection struct {
	indicator uint8
	bits      []byte
}

// message is the fully indexed form of one raw GRIB2 message.
type message struct {
	ind        indicator
	id         *identification
	grid       *gridDefinition
	product    *productDefinition
	repr       *dataRepresentation
	bitmap     *bitmapSection
	data       []byte
	hasTrailer bool
}

// parseIndicator reads section 0 from the first 16 octets of buf.
func parseIndicator(buf []byte) (indicator, *Error) {
	if len(buf) < 16 || !bytes.Equal(buf[:4], Magic) {
		return indicator{}, errorf(CodeInvalidSection, "indicator section missing GRIB marker")
	}
	r := binary.NewReader(buf).At(6)
	discipline, _ := r.ReadUint8()
	edition, _ := r.ReadUint8()
	length, _ := r.ReadUint64()
	return indicator{discipline: discipline, edition: edition, totalLength: length}, nil
}

// parseMessage indexes every section of one raw message. The trailer check
// is recorded, not enforced: handle construction at the public layer decides
// whether a trailerless message is usable.
func parseMessage(buf []byte) (*message, *Error) {
	ind, err := parseIndicator(buf)
	if err != nil {
		return nil, err
	}
	if ind.edition != 2 {
		return nil, errorf(CodeUnsupportedEdition, "GRIB edition %d not supported", ind.edition)
	}
	msg := &message{ind: ind}

	pos := 16
	for pos < len(buf) {
		if len(buf)-pos == 4 {
			msg.hasTrailer = bytes.Equal(buf[pos:], Trailer)
			break
		}
		if len(buf)-pos < 5 {
			break
		}
		r := binary.NewReader(buf).At(pos)
		length, _ := r.ReadUint32()
		number, _ := r.ReadUint8()
		if length < 5 || pos+int(length) > len(buf) {
			return nil, errorf(CodeInvalidSection, "section %d at offset %d has invalid length %d", number, pos, length)
		}
		body := buf[pos+5 : pos+int(length)]
		if err := msg.addSection(number, body); err != nil {
			return nil, err
		}
		pos += int(length)
	}
	return msg, nil
}

// addSection parses one section body into its typed form. Repeated sections
// keep the first occurrence.
func (m *message) addSection(number uint8, body []byte) *Error {
	switch number {
	case 1:
		if m.id == nil {
			id, err := parseIdentification(body)
			if err != nil {
				return err
			}
			m.id = id
		}
	case 2:
		// Local use section: carried but not interpreted.
	case 3:
		if m.grid == nil {
			grid, err := parseGridDefinition(body)
			if err != nil {
				return err
			}
			m.grid = grid
		}
	case 4:
		if m.product == nil {
			product, err := parseProductDefinition(body)
			if err != nil {
				return err
			}
			m.product = product
		}
	case 5:
		if m.repr == nil {
			repr, err := parseDataRepresentation(body)
			if err != nil {
				return err
			}
			m.repr = repr
		}
	case 6:
		if m.bitmap == nil {
			bm, err := parseBitmap(body)
			if err != nil {
				return err
			}
			m.bitmap = bm
		}
	case 7:
		if m.data == nil {
			m.data = body
		}
	default:
		return errorf(CodeInvalidSection, "unknown section number %d", number)
	}
	return nil
}

func parseIdentification(body []byte) (*identification, *Error) {
	r := binary.NewReader(body)
	if r.Len() < 16 {
		return nil, errorf(CodeInvalidSection, "identification section too short: %d octets", r.Len())
	}
	id := &identification{}
	id.centre, _ = r.ReadUint16()
	id.subCentre, _ = r.ReadUint16()
	id.tablesVersion, _ = r.ReadUint8()
	id.localTablesVersion, _ = r.ReadUint8()
	id.significanceOfRT, _ = r.ReadUint8()
	id.year, _ = r.ReadUint16()
	id.month, _ = r.ReadUint8()
	id.day, _ = r.ReadUint8()
	id.hour, _ = r.ReadUint8()
	id.minute, _ = r.ReadUint8()
	id.second, _ = r.ReadUint8()
	id.productionStatus, _ = r.ReadUint8()
	id.dataType, _ = r.ReadUint8()
	return id, nil
}

func parseGridDefinition(body []byte) (*gridDefinition, *Error) {
	r := binary.NewReader(body)
	if r.Len() < 9 {
		return nil, errorf(CodeInvalidSection, "grid definition section too short: %d octets", r.Len())
	}
	grid := &gridDefinition{}
	r.Skip(1) // source of grid definition
	grid.numberOfDataPoints, _ = r.ReadUint32()
	r.Skip(2) // optional list octets + interpretation
	grid.templateNumber, _ = r.ReadUint16()
	if grid.templateNumber != 0 {
		// Metadata keys for other grids stay readable; the template
		// fields below are only meaningful for regular_ll.
		return grid, nil
	}
	if r.Remaining() < 58 {
		return nil, errorf(CodeInvalidSection, "grid definition template 3.0 truncated")
	}
	r.Skip(16) // shape of the earth and radius fields
	grid.ni, _ = r.ReadUint32()
	grid.nj, _ = r.ReadUint32()
	r.Skip(8) // basic angle + subdivisions
	grid.lat1, _ = r.ReadSignMagnitude32()
	grid.lon1, _ = r.ReadSignMagnitude32()
	grid.resolutionFlags, _ = r.ReadUint8()
	grid.lat2, _ = r.ReadSignMagnitude32()
	grid.lon2, _ = r.ReadSignMagnitude32()
	grid.iInc, _ = r.ReadSignMagnitude32()
	grid.jInc, _ = r.ReadSignMagnitude32()
	grid.scanningMode, _ = r.ReadUint8()
	return grid, nil
}

func parseProductDefinition(body []byte) (*productDefinition, *Error) {
	r := binary.NewReader(body)
	if r.Len() < 4 {
		return nil, errorf(CodeInvalidSection, "product definition section too short: %d octets", r.Len())
	}
	product := &productDefinition{}
	r.Skip(2) // number of coordinate values
	product.templateNumber, _ = r.ReadUint16()
	if product.templateNumber != 0 {
		return product, nil
	}
	if r.Remaining() < 25 {
		return nil, errorf(CodeInvalidSection, "product definition template 4.0 truncated")
	}
	product.parameterCategory, _ = r.ReadUint8()
	product.parameterNumber, _ = r.ReadUint8()
	product.generatingProcess, _ = r.ReadUint8()
	r.Skip(5) // background process, process id, cutoff hours/minutes
	product.timeRangeUnit, _ = r.ReadUint8()
	product.forecastTime, _ = r.ReadSignMagnitude32()
	product.surfaceType, _ = r.ReadUint8()
	product.surfaceScale, _ = r.ReadUint8()
	product.surfaceValue, _ = r.ReadUint32()
	return product, nil
}

func parseDataRepresentation(body []byte) (*dataRepresentation, *Error) {
	r := binary.NewReader(body)
	if r.Len() < 6 {
		return nil, errorf(CodeInvalidSection, "data representation section too short: %d octets", r.Len())
	}
	repr := &dataRepresentation{}
	repr.numberOfValues, _ = r.ReadUint32()
	repr.templateNumber, _ = r.ReadUint16()
	if repr.templateNumber != 0 {
		return repr, nil
	}
	if r.Remaining() < 9 {
		return nil, errorf(CodeInvalidSection, "data representation template 5.0 truncated")
	}
	repr.referenceValue, _ = r.ReadFloat32()
	repr.binaryScale, _ = r.ReadSignMagnitude16()
	repr.decimalScale, _ = r.ReadSignMagnitude16()
	repr.bitsPerValue, _ = r.ReadUint8()
	return repr, nil
}

func parseBitmap(body []byte) (*bitmapSection, *Error) {
	if len(body) < 1 {
		return nil, errorf(CodeInvalidSection, "bitmap section too short")
	}
	return &bitmapSection{indicator: body[0], bits: body[1:]}, nil
}

// fullCount is the number of grid points a decoded value array must have:
// the grid's declared point count, falling back to the packed value count
// when no grid definition is present.
func (m *message) fullCount() int {
	if m.grid != nil && m.grid.numberOfDataPoints > 0 {
		return int(m.grid.numberOfDataPoints)
	}
	if m.repr != nil {
		return int(m.repr.numberOfValues)
	}
	return 0
}

// bitmapApplies reports whether a bitmap governs the data section.
func (m *message) bitmapApplies() bool {
	return m.bitmap != nil && m.bitmap.indicator == 0
}
