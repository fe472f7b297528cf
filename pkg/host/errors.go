package host

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no complete response arrived in time.
	// The link is left as is.
	ErrTimeout = errors.New("response timeout")
	// ErrFrameTooLong indicates a response frame exceeding the maximum length.
	ErrFrameTooLong = errors.New("response frame too long")
)

// ABIError indicates a response frame which could not be decoded. Both ends
// are built from the same message model, so this means they disagree on it.
type ABIError struct {
	Frame []byte
	Err   error
}

// Error implements error.
func (e *ABIError) Error() string {
	return fmt.Sprintf("ABI mismatch: %v (frame % x)", e.Err, e.Frame)
}

// Unwrap returns the decoding error.
func (e *ABIError) Unwrap() error {
	return e.Err
}

// LinkError indicates the link failed.
type LinkError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *LinkError) Unwrap() error {
	return e.Err
}
