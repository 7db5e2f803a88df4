package grib

import (
	"math"

	"github.com/robert-malhotra/go-grib/internal/engine"
)

// KeyIterator walks the (key, value) string pairs of one message, scoped to
// a namespace. Usage follows the decoder pattern:
//
//	it := msg.Keys(grib.NamespaceLS)
//	defer it.Close()
//	for it.Next() {
//		fmt.Println(it.Key(), it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
//
// The underlying engine iterator is released on exhaustion, on the first
// error, or on Close, whichever comes first. Duplicate key names are
// skipped. The reserved key "bitmap" is reported with an empty value; the
// bitmap content is only available through Message.Bitmap.
type KeyIterator struct {
	m      *Message
	it     *engine.KeyIterator
	seen   map[string]struct{}
	key    string
	value  string
	err    error
	closed bool
}

// Next advances to the next key, returning false on exhaustion or error.
func (it *KeyIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	for {
		name, ok := it.it.Next()
		if !ok {
			it.Close()
			return false
		}
		if _, dup := it.seen[name]; dup {
			continue
		}
		it.seen[name] = struct{}{}

		if name == "bitmap" {
			it.key, it.value = name, ""
			return true
		}
		v, ok := it.m.Get(name)
		if !ok {
			// The key vanished between enumeration and lookup; a
			// released message is the only way this happens.
			it.err = ErrMessageClosed
			it.Close()
			return false
		}
		it.key, it.value = name, v
		return true
	}
}

// Key returns the current key name.
func (it *KeyIterator) Key() string { return it.key }

// Value returns the current key's string value.
func (it *KeyIterator) Value() string { return it.value }

// Err returns the error that terminated iteration, if any.
func (it *KeyIterator) Err() error { return it.err }

// Close releases the engine-side iterator. Safe to call more than once and
// after exhaustion.
func (it *KeyIterator) Close() error {
	if !it.closed {
		it.closed = true
		if it.it != nil {
			it.it.Release()
		}
	}
	return nil
}

// GridIterator walks (latitude, longitude, value) triples cell by cell.
// Values are masked to NaN wherever the parallel bitmap position is 0; the
// bitmap index advances in lockstep with the cell order.
type GridIterator struct {
	it     *engine.GridIterator
	bitmap []int64
	idx    int
	val    float64
	closed bool
}

// Next advances to the next grid cell.
func (g *GridIterator) Next() bool {
	if g.closed {
		return false
	}
	if !g.it.Next() {
		g.Close()
		return false
	}
	g.val = g.it.Value()
	if g.bitmap != nil && g.bitmap[g.idx] == 0 {
		g.val = math.NaN()
	}
	g.idx++
	return true
}

// Latitude returns the current cell's latitude in degrees.
func (g *GridIterator) Latitude() float64 { return g.it.Latitude() }

// Longitude returns the current cell's longitude in degrees.
func (g *GridIterator) Longitude() float64 { return g.it.Longitude() }

// Value returns the current cell's value, NaN when missing.
func (g *GridIterator) Value() float64 { return g.val }

// Err returns the error that terminated iteration, if any.
func (g *GridIterator) Err() error { return nil }

// Close releases the engine-side iterator. Safe to call more than once.
func (g *GridIterator) Close() error {
	if !g.closed {
		g.closed = true
		g.it.Release()
	}
	return nil
}
