package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-grib/internal/gribtest"
)

func buildTemperature(t *testing.T) []byte {
	t.Helper()
	return gribtest.Build(gribtest.Options{
		Discipline: 0, Category: 0, Number: 0,
		Centre: 98,
		Year:   2024, Month: 3, Day: 5, Hour: 12,
		ForecastTime: 6,
		Grid: gribtest.Grid{
			Ni: 4, Nj: 2,
			Lat1: 50, Lon1: 0, Lat2: 49, Lon2: 3,
			IInc: 1, JInc: 1,
		},
		Values: []float64{273, 274, 275, 276, 277, 278, 279, 280},
	})
}

func nextHandle(t *testing.T, data []byte) *Handle {
	t.Helper()
	src := &BytesSource{Data: data}
	h, err := Default().NextFromBytes(src, true)
	require.Nil(t, err)
	require.NotNil(t, h)
	return h
}

func TestScalarKeys(t *testing.T) {
	h := nextHandle(t, buildTemperature(t))
	defer h.Release()

	require.Nil(t, h.CheckTrailer())

	edition, err := h.GetLong("edition")
	require.Nil(t, err)
	assert.Equal(t, int64(2), edition)

	centre, err := h.GetString("centre")
	require.Nil(t, err)
	assert.Equal(t, "ecmf", centre)

	date, err := h.GetLong("dataDate")
	require.Nil(t, err)
	assert.Equal(t, int64(20240305), date)

	tm, err := h.GetLong("dataTime")
	require.Nil(t, err)
	assert.Equal(t, int64(1200), tm)

	gridType, err := h.GetString("gridType")
	require.Nil(t, err)
	assert.Equal(t, "regular_ll", gridType)

	ni, err := h.GetLong("Ni")
	require.Nil(t, err)
	assert.Equal(t, int64(4), ni)

	shortName, err := h.GetString("shortName")
	require.Nil(t, err)
	assert.Equal(t, "t", shortName)

	units, err := h.GetString("units")
	require.Nil(t, err)
	assert.Equal(t, "K", units)

	lat1, err := h.GetDouble("latitudeOfFirstGridPointInDegrees")
	require.Nil(t, err)
	assert.InDelta(t, 50.0, lat1, 1e-9)

	step, err := h.GetString("stepRange")
	require.Nil(t, err)
	assert.Equal(t, "6", step)

	level, err := h.GetString("typeOfLevel")
	require.Nil(t, err)
	assert.Equal(t, "surface", level)
}

func TestUnknownKey(t *testing.T) {
	h := nextHandle(t, buildTemperature(t))
	defer h.Release()

	assert.False(t, h.IsDefined("noSuchKey"))
	_, err := h.GetString("noSuchKey")
	require.NotNil(t, err)
	assert.Equal(t, CodeNotFound, err.Code)
}

func TestUnknownParameterFallback(t *testing.T) {
	data := gribtest.Build(gribtest.Options{Discipline: 9, Category: 200, Number: 200})
	h := nextHandle(t, data)
	defer h.Release()

	name, err := h.GetString("shortName")
	require.Nil(t, err)
	assert.Equal(t, "unknown", name)
}

func TestValuesSimplePacking(t *testing.T) {
	h := nextHandle(t, buildTemperature(t))
	defer h.Release()

	n, err := h.GetSize("values")
	require.Nil(t, err)
	assert.Equal(t, 8, n)

	vals, err := h.GetDoubleArray("values")
	require.Nil(t, err)
	assert.Equal(t, []float64{273, 274, 275, 276, 277, 278, 279, 280}, vals)
}

func TestValuesConstantField(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 3, Nj: 1, Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 2, IInc: 1, JInc: 1},
		Values: []float64{42, 42, 42},
	})
	h := nextHandle(t, data)
	defer h.Release()

	bits, err := h.GetLong("bitsPerValue")
	require.Nil(t, err)
	assert.Equal(t, int64(0), bits)

	vals, err := h.GetDoubleArray("values")
	require.Nil(t, err)
	assert.Equal(t, []float64{42, 42, 42}, vals)
}

func TestBitmapExpansion(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 4, Nj: 1, Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 3, IInc: 1, JInc: 1},
		Values: []float64{10, 0, 12, 0},
		Bitmap: []bool{true, false, true, false},
	})
	h := nextHandle(t, data)
	defer h.Release()

	present, err := h.GetLong("bitmapPresent")
	require.Nil(t, err)
	assert.Equal(t, int64(1), present)

	// Packed count holds present points only; full length comes from the grid.
	packed, err := h.GetLong("numberOfValues")
	require.Nil(t, err)
	assert.Equal(t, int64(2), packed)

	vals, err := h.GetDoubleArray("values")
	require.Nil(t, err)
	assert.Equal(t, []float64{10, MissingValue, 12, MissingValue}, vals)

	flags, err := h.GetLongArray("bitmap")
	require.Nil(t, err)
	assert.Equal(t, []int64{1, 0, 1, 0}, flags)
}

func TestStatisticsSkipMissing(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 4, Nj: 1, Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 3, IInc: 1, JInc: 1},
		Values: []float64{10, 0, 20, 0},
		Bitmap: []bool{true, false, true, false},
	})
	h := nextHandle(t, data)
	defer h.Release()

	max, err := h.GetDouble("maximum")
	require.Nil(t, err)
	assert.Equal(t, 20.0, max)

	min, err := h.GetDouble("minimum")
	require.Nil(t, err)
	assert.Equal(t, 10.0, min)

	avg, err := h.GetDouble("average")
	require.Nil(t, err)
	assert.Equal(t, 15.0, avg)
}

func TestTrailerValidation(t *testing.T) {
	data := gribtest.Build(gribtest.Options{OmitTrailer: true})
	h := nextHandle(t, data)
	defer h.Release()

	err := h.CheckTrailer()
	require.NotNil(t, err)
	assert.Equal(t, Code7777NotFound, err.Code)
}

func TestReleasedHandle(t *testing.T) {
	h := nextHandle(t, buildTemperature(t))
	h.Release()
	h.Release() // second release is a no-op

	assert.True(t, h.Released())
	assert.False(t, h.IsDefined("edition"))

	_, err := h.GetString("edition")
	require.NotNil(t, err)
	assert.Equal(t, CodeNullHandle, err.Code)
}

func TestBytesSourceContinuation(t *testing.T) {
	one := buildTemperature(t)
	two := gribtest.Build(gribtest.Options{Category: 2, Number: 2})
	src := &BytesSource{Data: gribtest.Concat(one, two)}

	h1, err := Default().NextFromBytes(src, true)
	require.Nil(t, err)
	require.NotNil(t, h1)
	assert.Equal(t, len(one), src.Off)
	h1.Release()

	h2, err := Default().NextFromBytes(src, true)
	require.Nil(t, err)
	require.NotNil(t, h2)
	name, gerr := h2.GetString("shortName")
	require.Nil(t, gerr)
	assert.Equal(t, "u", name)
	h2.Release()

	h3, err := Default().NextFromBytes(src, true)
	require.Nil(t, err)
	assert.Nil(t, h3)
}

func TestBytesSourceSingleMessageMode(t *testing.T) {
	src := &BytesSource{Data: gribtest.Concat(buildTemperature(t), buildTemperature(t))}

	h1, err := Default().NextFromBytes(src, false)
	require.Nil(t, err)
	require.NotNil(t, h1)
	h1.Release()

	h2, err := Default().NextFromBytes(src, false)
	require.Nil(t, err)
	assert.Nil(t, h2)
}

func TestBytesSourceTruncated(t *testing.T) {
	data := gribtest.Build(gribtest.Options{Truncate: 10})
	src := &BytesSource{Data: data}

	_, err := Default().NextFromBytes(src, true)
	require.NotNil(t, err)
	assert.Equal(t, CodePrematureEndOfFile, err.Code)
}

func TestNextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.grib2")
	require.NoError(t, os.WriteFile(path, gribtest.Concat(buildTemperature(t), buildTemperature(t)), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	h1, gerr := Default().NextFromFile(f, true)
	require.Nil(t, gerr)
	require.NotNil(t, h1)
	h1.Release()

	h2, gerr := Default().NextFromFile(f, true)
	require.Nil(t, gerr)
	require.NotNil(t, h2)
	h2.Release()

	h3, gerr := Default().NextFromFile(f, true)
	require.Nil(t, gerr)
	assert.Nil(t, h3)
}

func TestKeyIteratorNamespaces(t *testing.T) {
	h := nextHandle(t, buildTemperature(t))
	defer h.Release()

	collect := func(ns string) []string {
		it := h.NewKeyIterator(ns)
		defer it.Release()
		var names []string
		for {
			name, ok := it.Next()
			if !ok {
				break
			}
			names = append(names, name)
		}
		return names
	}

	ls := collect("ls")
	assert.Contains(t, ls, "shortName")
	assert.Contains(t, ls, "dataDate")
	assert.Contains(t, ls, "gridType")
	assert.NotContains(t, ls, "Ni")

	geo := collect("geography")
	assert.Contains(t, geo, "Ni")
	assert.Contains(t, geo, "latitudeOfFirstGridPointInDegrees")
	assert.NotContains(t, geo, "shortName")

	all := collect("")
	assert.Greater(t, len(all), len(ls))

	assert.Empty(t, collect("bogus"))
}

func TestGridIteratorTraversal(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid: gribtest.Grid{
			Ni: 3, Nj: 2,
			Lat1: 10, Lon1: 20, Lat2: 9, Lon2: 22,
			IInc: 1, JInc: 1,
		},
		Values: []float64{1, 2, 3, 4, 5, 6},
	})
	h := nextHandle(t, data)
	defer h.Release()

	it, err := h.NewGridIterator()
	require.Nil(t, err)
	defer it.Release()

	type cell struct{ lat, lon, val float64 }
	var cells []cell
	for it.Next() {
		cells = append(cells, cell{it.Latitude(), it.Longitude(), it.Value()})
	}

	require.Len(t, cells, 6)
	assert.Equal(t, cell{10, 20, 1}, cells[0])
	assert.Equal(t, cell{10, 22, 3}, cells[2])
	// Second row steps south by the j increment.
	assert.Equal(t, cell{9, 20, 4}, cells[3])
	assert.Equal(t, cell{9, 22, 6}, cells[5])
}
