package grib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-grib/internal/gribtest"
)

func TestKeyIteratorLS(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	it := m.Keys(NamespaceLS)
	defer it.Close()

	pairs := map[string]string{}
	for it.Next() {
		pairs[it.Key()] = it.Value()
	}
	require.NoError(t, it.Err())

	assert.Equal(t, "t", pairs["shortName"])
	assert.Equal(t, "ecmf", pairs["centre"])
	assert.Equal(t, "regular_ll", pairs["gridType"])
	assert.Equal(t, "grid_simple", pairs["packingType"])
	assert.NotContains(t, pairs, "Ni")
}

func TestKeyIteratorNoDuplicates(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	it := m.Keys(NamespaceAll)
	defer it.Close()

	seen := map[string]int{}
	for it.Next() {
		seen[it.Key()]++
	}
	require.NoError(t, it.Err())
	for key, count := range seen {
		assert.Equal(t, 1, count, "key %s yielded %d times", key, count)
	}
}

func TestKeyIteratorBitmapValueEmpty(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 2, Nj: 1, Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 1, IInc: 1, JInc: 1},
		Values: []float64{1, 0},
		Bitmap: []bool{true, false},
	})
	m := decodeOne(t, data)

	it := m.Keys(NamespaceAll)
	defer it.Close()

	found := false
	for it.Next() {
		if it.Key() == "bitmap" {
			found = true
			assert.Equal(t, "", it.Value())
		}
	}
	require.NoError(t, it.Err())
	assert.True(t, found, "bitmap key not iterated")
}

func TestKeyIteratorEarlyClose(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	it := m.Keys(NamespaceAll)
	require.True(t, it.Next())
	require.NoError(t, it.Close())

	assert.False(t, it.Next())
	require.NoError(t, it.Close()) // safe to close twice
}

func TestKeyIteratorNotRestartable(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	it := m.Keys(NamespaceLS)
	for it.Next() {
	}
	require.NoError(t, it.Err())
	assert.False(t, it.Next())
}

func TestGridIteratorFirstRow(t *testing.T) {
	// Regular grid starting at longitude 0, first row at constant latitude.
	const step = 0.25
	data := gribtest.Build(gribtest.Options{
		Grid: gribtest.Grid{
			Ni: 16, Nj: 4,
			Lat1: 60, Lon1: 0, Lat2: 59.25, Lon2: 3.75,
			IInc: step, JInc: step,
		},
		Values: ramp(64),
	})
	m := decodeOne(t, data)

	it, err := m.Coordinates()
	require.NoError(t, err)
	defer it.Close()

	for i := 0; i < 10; i++ {
		require.True(t, it.Next())
		assert.InDelta(t, 60.0, it.Latitude(), 1e-9)
		assert.InDelta(t, float64(i)*step, it.Longitude(), 1e-9)
		assert.InDelta(t, float64(i), it.Value(), 1e-9)
	}
}

func TestGridIteratorBitmapLockstep(t *testing.T) {
	bitmap := []bool{true, false, true, false, true, true}
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 3, Nj: 2, Lat1: 1, Lon1: 0, Lat2: 0, Lon2: 2, IInc: 1, JInc: 1},
		Values: []float64{5, 0, 7, 0, 9, 10},
		Bitmap: bitmap,
	})
	m := decodeOne(t, data)

	it, err := m.Coordinates()
	require.NoError(t, err)
	defer it.Close()

	for i, present := range bitmap {
		require.True(t, it.Next(), "cell %d", i)
		if present {
			assert.False(t, math.IsNaN(it.Value()), "cell %d", i)
		} else {
			assert.True(t, math.IsNaN(it.Value()), "cell %d", i)
		}
	}
	assert.False(t, it.Next())
}

func TestGridIteratorCellCount(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	it, err := m.Coordinates()
	require.NoError(t, err)

	count := 0
	for it.Next() {
		count++
	}
	assert.Equal(t, 8, count)
	require.NoError(t, it.Close())
}

func ramp(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	return vals
}
