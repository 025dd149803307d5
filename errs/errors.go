// Package errs defines the sentinel errors shared by the anvil packages.
//
// Errors fall into four groups:
//
//   - malformed input: the bytes being decoded are corrupt or truncated. All of
//     these wrap ErrMalformed, so errors.Is(err, ErrMalformed) identifies them.
//   - structural limit: ErrMaxDepth. It is deliberately not part of the
//     malformed group so callers can tell "too deep" from "corrupt".
//   - usage: a precondition of the called function was violated.
//   - absent data is never an error; getters return zero values instead.
package errs

import (
	"errors"
	"fmt"
)

// ErrMalformed is the base error for every malformed-input condition.
var ErrMalformed = errors.New("malformed input")

// Malformed input.
var (
	ErrTruncated          = malformed("unexpected end of data")
	ErrNegativeLength     = malformed("negative length")
	ErrUnknownKind        = malformed("unknown tag kind")
	ErrUnknownCompression = malformed("unknown compression type")
	ErrCorruptLocation    = malformed("corrupt chunk location")
	ErrNotCompound        = malformed("root tag is not a compound")
	ErrIndexOutOfPalette  = malformed("packed index exceeds palette size")
	ErrTrailingData       = malformed("trailing data after root tag")
)

// ErrMaxDepth is returned when a tree nests more containers than allowed.
var ErrMaxDepth = errors.New("max depth exceeded")

// Usage errors.
var (
	ErrKindReserved      = errors.New("tag kind id is reserved")
	ErrKindRegistered    = errors.New("tag kind id already registered")
	ErrKindNotRegistered = errors.New("tag kind id not registered")
	ErrListKindMismatch  = errors.New("list element kind mismatch")
	ErrCyclicTree        = errors.New("tag tree would contain itself")
	ErrNilTag            = errors.New("nil tag")
	ErrEndTag            = errors.New("end tag cannot be stored as a value")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrStringTooLong     = errors.New("string exceeds 65535 bytes")
	ErrChunkTooLarge     = errors.New("chunk too large for inline storage")
	ErrInvalidOption     = errors.New("invalid option")
)

// malformedError carries its own message while unwrapping to ErrMalformed.
type malformedError struct {
	msg string
}

func malformed(msg string) error {
	return &malformedError{msg: msg}
}

func (e *malformedError) Error() string {
	return e.msg
}

func (e *malformedError) Unwrap() error {
	return ErrMalformed
}

// Malformedf returns a new error wrapping ErrMalformed with a formatted message.
func Malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
