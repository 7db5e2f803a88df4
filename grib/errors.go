// Package grib provides a pure Go implementation for reading GRIB edition 2
// containers: sequential message iteration over files and byte buffers,
// namespaced key access, and numeric grid extraction with bitmap masking.
package grib

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-grib/internal/engine"
)

// Common errors
var (
	ErrMalformedMessage = errors.New("message lacks end-of-message marker 7777")
	ErrMessageClosed    = errors.New("message is closed")
	ErrReaderClosed     = errors.New("reader is closed")
)

// EngineError reports a nonzero status code from the decode engine. It is
// never used for natural end of a container, which is io.EOF.
type EngineError struct {
	Code int
	Op   string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("grib: %s (code %d)", e.Op, e.Code)
}

// engineErr converts an engine status into a public error.
func engineErr(e *engine.Error) error {
	if e == nil {
		return nil
	}
	return &EngineError{Code: e.Code, Op: e.Op}
}
