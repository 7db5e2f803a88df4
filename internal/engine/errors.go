package engine

import "fmt"

// Engine status codes. Zero is success; all failures are negative, in the
// tradition of GRIB decoding libraries. End-of-data is reported as the
// absence of a handle with a nil error, never as a code.
const (
	CodeSuccess             = 0
	CodeEndOfFile           = -1
	CodePrematureEndOfFile  = -3
	Code7777NotFound        = -5
	CodeInvalidSection      = -7
	CodeNotFound            = -10
	CodeWrongType           = -11
	CodeBufferTooSmall      = -12
	CodeMessageTooLarge     = -13
	CodeUnsupportedEdition  = -14
	CodeUnsupportedTemplate = -15
	CodeNullHandle          = -16
	CodeIOProblem           = -17
)

// Error is a coded engine failure. The code distinguishes failure classes
// so callers can map them onto their own error taxonomy.
type Error struct {
	Code int
	Op   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Op, e.Code)
}

func errorf(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Op: fmt.Sprintf(format, args...)}
}
