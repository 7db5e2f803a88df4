package grib

import (
	"bytes"

	binpkg "github.com/robert-malhotra/go-grib/internal/binary"
	"github.com/robert-malhotra/go-grib/internal/engine"
)

// maxSaneLength bounds both the marker offset and the declared message
// length. A hit beyond it is treated as a false positive in a
// non-conforming stream.
const maxSaneLength = 1 << 40

// FindMessage locates the first GRIB message header in buf, returning the
// byte offset of the marker and the total message length declared in the
// fixed header. It is intended for buffers with no alignment guarantee,
// such as HTTP range fetches.
//
// ok is false when no acceptable header is present: marker absent, marker
// offset or declared length beyond the sanity bound, too few bytes left for
// the fixed header, nonzero reserved field, or an edition other than 1 or 2.
//
// FindMessage does not verify that offset+length bytes exist in buf. A
// range-fetched buffer may end mid-message; callers must re-check before
// slicing.
func FindMessage(buf []byte) (offset int64, length int64, ok bool) {
	idx := bytes.Index(buf, engine.Magic)
	if idx < 0 {
		return 0, 0, false
	}
	if int64(idx) > maxSaneLength {
		return 0, 0, false
	}
	if len(buf)-idx < 16 {
		return 0, 0, false
	}

	r := binpkg.NewReader(buf).At(idx + 4)
	reserved, _ := r.ReadUint16()
	if reserved != 0 {
		return 0, 0, false
	}
	r.Skip(1) // discipline
	edition, _ := r.ReadUint8()
	if edition != 1 && edition != 2 {
		return 0, 0, false
	}
	total, _ := r.ReadUint64()
	if total > maxSaneLength {
		return 0, 0, false
	}
	return int64(idx), int64(total), true
}
