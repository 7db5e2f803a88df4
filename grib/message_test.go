package grib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-grib/internal/gribtest"
)

func decodeOne(t *testing.T, data []byte) *Message {
	t.Helper()
	r := NewReader(data)
	m, err := r.Next()
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestGetIdempotent(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	first, ok := m.Get("shortName")
	require.True(t, ok)
	second, ok := m.Get("shortName")
	require.True(t, ok)
	assert.Equal(t, first, second)

	n1, ok := m.GetInt("Ni")
	require.True(t, ok)
	n2, ok := m.GetInt("Ni")
	require.True(t, ok)
	assert.Equal(t, n1, n2)
}

func TestGetUndefinedKey(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	_, ok := m.Get("definitelyNotAKey")
	assert.False(t, ok)
	_, ok = m.GetInt("definitelyNotAKey")
	assert.False(t, ok)
}

func TestSizeErrors(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	n, err := m.Size("values")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	// Scalar keys are not array-valued; missing keys are missing.
	_, err = m.Size("edition")
	require.Error(t, err)
	_, err = m.Size("noSuchKey")
	require.Error(t, err)

	// No bitmap declared: its length is a precondition violation.
	_, err = m.Size("bitmap")
	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
}

func TestValuesWithoutBitmapUnmasked(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))

	vals, err := m.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, vals)
	for _, v := range vals {
		assert.False(t, math.IsNaN(v))
	}

	bm, err := m.Bitmap()
	require.NoError(t, err)
	assert.Nil(t, bm)
}

func TestValuesBitmapMasking(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 3, Nj: 2, Lat1: 1, Lon1: 0, Lat2: 0, Lon2: 2, IInc: 1, JInc: 1},
		Values: []float64{5, 0, 7, 8, 0, 10},
		Bitmap: []bool{true, false, true, true, false, true},
	})
	m := decodeOne(t, data)

	vals, err := m.Values()
	require.NoError(t, err)
	require.Len(t, vals, 6)

	bm, err := m.Bitmap()
	require.NoError(t, err)
	require.Len(t, bm, 6)

	for i := range vals {
		if bm[i] == 0 {
			assert.True(t, math.IsNaN(vals[i]), "index %d should be NaN", i)
		} else {
			assert.False(t, math.IsNaN(vals[i]), "index %d should be present", i)
		}
	}
	assert.Equal(t, 5.0, vals[0])
	assert.Equal(t, 10.0, vals[5])
}

func TestLargeBitmapGrid(t *testing.T) {
	// 380x192 grid, 72960 points; point 0 flagged missing, 2984 present.
	const ni, nj = 380, 192
	const total = ni * nj
	values := make([]float64, total)
	bitmap := make([]bool, total)
	for i := range values {
		values[i] = float64(i % 50)
		bitmap[i] = true
	}
	bitmap[0] = false
	values[0] = 0

	data := gribtest.Build(gribtest.Options{
		Grid: gribtest.Grid{
			Ni: ni, Nj: nj,
			Lat1: 89.5, Lon1: 0, Lat2: -89.5, Lon2: 359,
			IInc: 360.0 / ni, JInc: 179.0 / (nj - 1),
		},
		Values: values,
		Bitmap: bitmap,
	})
	m := decodeOne(t, data)

	vals, err := m.Values()
	require.NoError(t, err)
	require.Len(t, vals, total)

	assert.True(t, math.IsNaN(vals[0]))
	assert.False(t, math.IsNaN(vals[2984]))
	assert.Equal(t, float64(2984%50), vals[2984])
}

func TestValuesIntoReuse(t *testing.T) {
	m1 := decodeOne(t, buildMessage(t, 0, 0))

	var buf []float64
	require.NoError(t, m1.ValuesInto(&buf))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, buf)

	// A smaller message truncates the same buffer.
	small := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 2, Nj: 1, Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 1, IInc: 1, JInc: 1},
		Values: []float64{30, 40},
	})
	m2 := decodeOne(t, small)
	require.NoError(t, m2.ValuesInto(&buf))
	assert.Equal(t, []float64{30, 40}, buf)
}

func TestBitmapInto(t *testing.T) {
	data := gribtest.Build(gribtest.Options{
		Grid:   gribtest.Grid{Ni: 4, Nj: 1, Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 3, IInc: 1, JInc: 1},
		Values: []float64{1, 0, 3, 4},
		Bitmap: []bool{true, false, true, true},
	})
	m := decodeOne(t, data)

	var buf []int64
	require.NoError(t, m.BitmapInto(&buf))
	assert.Equal(t, []int64{1, 0, 1, 1}, buf)

	// A bitmap-free message truncates the buffer to empty.
	m2 := decodeOne(t, buildMessage(t, 0, 0))
	require.NoError(t, m2.BitmapInto(&buf))
	assert.Empty(t, buf)
}

func TestClosedMessage(t *testing.T) {
	m := decodeOne(t, buildMessage(t, 0, 0))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent

	_, ok := m.Get("shortName")
	assert.False(t, ok)

	_, err := m.Values()
	assert.ErrorIs(t, err, ErrMessageClosed)
	_, err = m.Size("values")
	assert.ErrorIs(t, err, ErrMessageClosed)
	_, err = m.Coordinates()
	assert.ErrorIs(t, err, ErrMessageClosed)
}
