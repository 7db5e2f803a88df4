package engine

// Scanning mode flags from GRIB2 flag table 3.4.
const (
	scanNegativeI    = 0x80 // points scan east to west
	scanPositiveJ    = 0x40 // points scan south to north
	scanJConsecutive = 0x20 // adjacent points are in the j direction
)

// GridIterator yields (latitude, longitude, value) per grid cell of a
// regular latitude/longitude grid, in the storage order of the data section.
// Values are the raw decoded payload: points excluded by the bitmap carry
// MissingValue, not NaN. Single pass; release when done or abandoned.
type GridIterator struct {
	ni, nj   int
	lat0     float64
	lon0     float64
	iStep    float64
	jStep    float64
	values   []float64
	idx      int
	released bool

	lat, lon, val float64
}

// NewGridIterator decodes the payload and prepares cell traversal. Fails for
// grids other than regular_ll and for j-consecutive storage order.
func (h *Handle) NewGridIterator() (*GridIterator, *Error) {
	if h.released {
		return nil, errorf(CodeNullHandle, "handle already released")
	}
	grid := h.msg.grid
	if grid == nil {
		return nil, errorf(CodeNotFound, "message has no grid definition section")
	}
	if grid.templateNumber != 0 {
		return nil, errorf(CodeUnsupportedTemplate, "grid definition template %d not supported", grid.templateNumber)
	}
	if grid.scanningMode&scanJConsecutive != 0 {
		return nil, errorf(CodeUnsupportedTemplate, "j-consecutive scanning not supported")
	}
	n := h.msg.fullCount()
	if int(grid.ni)*int(grid.nj) != n {
		return nil, errorf(CodeInvalidSection, "grid declares %dx%d points but %d data points", grid.ni, grid.nj, n)
	}

	values := make([]float64, n)
	if err := h.decodeValuesInto(values); err != nil {
		return nil, err
	}

	it := &GridIterator{
		ni:     int(grid.ni),
		nj:     int(grid.nj),
		lat0:   float64(grid.lat1) / 1e6,
		lon0:   float64(grid.lon1) / 1e6,
		iStep:  float64(grid.iInc) / 1e6,
		jStep:  -float64(grid.jInc) / 1e6,
		values: values,
	}
	if grid.scanningMode&scanNegativeI != 0 {
		it.iStep = -it.iStep
	}
	if grid.scanningMode&scanPositiveJ != 0 {
		it.jStep = -it.jStep
	}
	return it, nil
}

// Next advances to the next cell. After it returns false the iterator is
// exhausted and the accessors are no longer meaningful.
func (it *GridIterator) Next() bool {
	if it.released || it.idx >= len(it.values) {
		return false
	}
	i := it.idx % it.ni
	j := it.idx / it.ni
	it.lat = it.lat0 + float64(j)*it.jStep
	it.lon = it.lon0 + float64(i)*it.iStep
	it.val = it.values[it.idx]
	it.idx++
	return true
}

// Latitude returns the current cell's latitude in degrees.
func (it *GridIterator) Latitude() float64 { return it.lat }

// Longitude returns the current cell's longitude in degrees.
func (it *GridIterator) Longitude() float64 { return it.lon }

// Value returns the current cell's raw value.
func (it *GridIterator) Value() float64 { return it.val }

// Release frees the iterator. Safe to call more than once.
func (it *GridIterator) Release() {
	it.released = true
	it.values = nil
}
