// Package engine decodes single GRIB edition 2 messages: section parsing,
// key lookup, simple-packing value extraction and grid traversal.
//
// The engine keeps one process-wide context whose multi-message flag is
// mutated per read. Every entry point that produces a new handle or touches
// that flag serializes through a package mutex; handles themselves are
// independent after acquisition and carry no shared state.
package engine

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// maxMessageLength bounds a declared total length. Anything larger is
// treated as a false marker hit in a non-conforming stream.
const maxMessageLength = 1 << 40

// mu serializes all access to the shared context. It is the single
// mutual-exclusion boundary of the engine.
var mu sync.Mutex

// Context carries the engine configuration shared by every read.
type Context struct {
	multiSupport bool
}

var defaultContext = &Context{multiSupport: true}

// Default returns the shared engine context.
func Default() *Context {
	return defaultContext
}

// SetMultiSupport toggles continuation parsing across concatenated messages.
func (c *Context) SetMultiSupport(on bool) {
	mu.Lock()
	defer mu.Unlock()
	c.multiSupport = on
}

// MultiSupport reports the current multi-message setting.
func (c *Context) MultiSupport() bool {
	mu.Lock()
	defer mu.Unlock()
	return c.multiSupport
}

// BytesSource is the length/pointer pair for in-memory decoding. The engine
// advances Off past each consumed message; callers must not modify the pair
// between reads. Data is caller-owned and never copied.
type BytesSource struct {
	Data []byte
	Off  int
}

// NextFromFile parses the next message from the stream position of f.
// The multi flag is stored into the shared context before reading; when
// continuation is off, only a message starting the stream is returned.
//
// A nil handle with a nil error means the source is exhausted. The engine
// never closes f.
func (c *Context) NextFromFile(f *os.File, multi bool) (*Handle, *Error) {
	mu.Lock()
	defer mu.Unlock()
	c.multiSupport = multi

	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errorf(CodeIOProblem, "seeking stream position: %v", err)
	}
	if !c.multiSupport && start != 0 {
		return nil, nil
	}

	off, found, err := scanFileForMagic(f, start)
	if err != nil {
		return nil, errorf(CodeIOProblem, "scanning for GRIB marker: %v", err)
	}
	if !found {
		return nil, nil
	}

	head := make([]byte, 16)
	if _, err := f.ReadAt(head, off); err != nil {
		return nil, errorf(CodePrematureEndOfFile, "message header truncated at offset %d", off)
	}
	ind, perr := parseIndicator(head)
	if perr != nil {
		return nil, perr
	}
	if ind.edition != 2 {
		return nil, errorf(CodeUnsupportedEdition, "GRIB edition %d not supported", ind.edition)
	}
	if ind.totalLength < 16 || ind.totalLength > maxMessageLength {
		return nil, errorf(CodeMessageTooLarge, "declared message length %d out of range", ind.totalLength)
	}

	buf := make([]byte, ind.totalLength)
	if _, err := f.ReadAt(buf, off); err != nil {
		return nil, errorf(CodePrematureEndOfFile, "message truncated: declared %d octets at offset %d", ind.totalLength, off)
	}
	if _, err := f.Seek(off+int64(ind.totalLength), io.SeekStart); err != nil {
		return nil, errorf(CodeIOProblem, "advancing stream position: %v", err)
	}

	return newHandle(buf)
}

// NextFromBytes parses the next message from src, advancing src.Off past it.
// The returned handle aliases src.Data; it is only valid while that memory
// stays alive.
func (c *Context) NextFromBytes(src *BytesSource, multi bool) (*Handle, *Error) {
	mu.Lock()
	defer mu.Unlock()
	c.multiSupport = multi

	if !c.multiSupport && src.Off != 0 {
		return nil, nil
	}
	if src.Off >= len(src.Data) {
		return nil, nil
	}

	idx := bytes.Index(src.Data[src.Off:], Magic)
	if idx < 0 {
		src.Off = len(src.Data)
		return nil, nil
	}
	off := src.Off + idx
	if len(src.Data)-off < 16 {
		return nil, errorf(CodePrematureEndOfFile, "message header truncated at offset %d", off)
	}
	ind, perr := parseIndicator(src.Data[off : off+16])
	if perr != nil {
		return nil, perr
	}
	if ind.edition != 2 {
		return nil, errorf(CodeUnsupportedEdition, "GRIB edition %d not supported", ind.edition)
	}
	if ind.totalLength < 16 || ind.totalLength > maxMessageLength {
		return nil, errorf(CodeMessageTooLarge, "declared message length %d out of range", ind.totalLength)
	}
	if off+int(ind.totalLength) > len(src.Data) {
		return nil, errorf(CodePrematureEndOfFile, "message truncated: declared %d octets, %d available", ind.totalLength, len(src.Data)-off)
	}

	buf := src.Data[off : off+int(ind.totalLength)]
	src.Off = off + int(ind.totalLength)

	return newHandle(buf)
}

// scanFileForMagic searches f for the GRIB marker starting at offset start.
// Chunks overlap by three octets so a marker spanning a boundary is found.
func scanFileForMagic(f *os.File, start int64) (int64, bool, error) {
	const chunkSize = 4096
	chunk := make([]byte, chunkSize)
	pos := start
	for {
		n, err := f.ReadAt(chunk, pos)
		if n > 0 {
			if idx := bytes.Index(chunk[:n], Magic); idx >= 0 {
				return pos + int64(idx), true, nil
			}
		}
		if err == io.EOF {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		if n < len(Magic) {
			return 0, false, nil
		}
		pos += int64(n - (len(Magic) - 1))
	}
}
