package message

import (
	"errors"
	"fmt"
)

// Sentinel errors for the message package.
var (
	// ErrDecode is the root of every decoding failure. Use errors.Is to test
	// for it; errors.As with *DecodeError gives the offending field.
	ErrDecode = errors.New("message: decode failed")

	// ErrUnknownType indicates a type code outside the supported set.
	ErrUnknownType = errors.New("message: unknown type code")

	// ErrMissingLocalID indicates an outgoing message without a local id.
	ErrMissingLocalID = errors.New("message: local_id is required")
)

// DecodeError describes why an inbound frame could not be decoded.
// Field is empty when the frame itself is not a JSON object.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("message: decode failed: %v", e.Err)
	}
	return fmt.Sprintf("message: decode failed: field %q: %v", e.Field, e.Err)
}

// Unwrap returns both ErrDecode and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func decodeErr(field string, err error) error {
	return &DecodeError{Field: field, Err: err}
}
