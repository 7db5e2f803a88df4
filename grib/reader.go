package grib

import (
	"fmt"
	"io"
	"os"

	"github.com/robert-malhotra/go-grib/internal/engine"
)

// Reader decodes a byte source into a sequence of Messages, one per Next
// call. Messages are yielded in the exact byte order of the source; the
// sequence is finite and not restartable. A Reader is not safe for
// concurrent use: at most one Next call may be outstanding.
//
// A file-backed Reader owns its descriptor and closes it exactly once, on
// Close or on natural exhaustion. A memory-backed Reader does not own the
// buffer; the buffer must outlive every Message produced from it.
type Reader struct {
	file   *os.File
	src    *engine.BytesSource
	multi  bool
	done   bool
	closed bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithMultiMessage toggles continuation parsing across concatenated
// messages. It is enabled by default; disabling it limits the reader to the
// first message of the source.
func WithMultiMessage(on bool) Option {
	return func(r *Reader) { r.multi = on }
}

// Open creates a file-backed Reader. The open failure wraps the underlying
// *os.PathError, which carries the path and the OS error detail.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening GRIB file: %w", err)
	}
	r := &Reader{file: f, multi: true}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewReader creates a memory-backed Reader over data. The buffer is neither
// copied nor owned: it must stay alive for as long as any Message decoded
// from it is in use, a precondition this layer cannot enforce.
func NewReader(data []byte, opts ...Option) *Reader {
	r := &Reader{src: &engine.BytesSource{Data: data}, multi: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next decodes the next message from the source. It returns io.EOF on
// natural exhaustion, which also releases the reader's own resources.
// An engine error code and end-of-data are never conflated: a coded failure
// surfaces as *EngineError even at the end of the stream.
//
// Each returned Message owns its handle independently and stays valid after
// the Reader is closed (file-backed) or as long as the source buffer lives
// (memory-backed).
func (r *Reader) Next() (*Message, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.closed {
		return nil, ErrReaderClosed
	}

	var h *engine.Handle
	var e *engine.Error
	if r.file != nil {
		h, e = engine.Default().NextFromFile(r.file, r.multi)
	} else {
		h, e = engine.Default().NextFromBytes(r.src, r.multi)
	}
	if e != nil {
		return nil, engineErr(e)
	}
	if h == nil {
		r.done = true
		if err := r.Close(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return newMessage(h)
}

// ReadAll drains the reader and returns every remaining message in source
// order. On any decode error the messages collected so far are closed and
// discarded: a truncated or corrupt container fails as a whole rather than
// yielding a short, valid-looking list.
func (r *Reader) ReadAll() ([]*Message, error) {
	var msgs []*Message
	for {
		msg, err := r.Next()
		if err == io.EOF {
			return msgs, nil
		}
		if err != nil {
			for _, m := range msgs {
				m.Close()
			}
			return nil, err
		}
		msgs = append(msgs, msg)
	}
}

// Close releases the reader's resources. Idempotent. Messages already
// yielded are unaffected.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
