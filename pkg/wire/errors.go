package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferTooSmall indicates the output buffer cannot hold the frame.
	// With buffers sized by the MaxXFrameLen constants it never happens.
	ErrBufferTooSmall = errors.New("buffer too small")
	// ErrUnsupportedMessage indicates a value which is not part of the
	// message model was passed for encoding.
	ErrUnsupportedMessage = errors.New("unsupported message")

	// ErrCorrupted is wrapped by every decoding error.
	ErrCorrupted = errors.New("corrupted frame")
	// ErrInvalidStuffing indicates the byte-stuffing could not be reversed.
	ErrInvalidStuffing = fmt.Errorf("%w: invalid stuffing", ErrCorrupted)
	// ErrShortFrame indicates the frame ended before the value was complete.
	ErrShortFrame = fmt.Errorf("%w: short frame", ErrCorrupted)
	// ErrTrailingBytes indicates bytes were left after the value.
	ErrTrailingBytes = fmt.Errorf("%w: trailing bytes", ErrCorrupted)
	// ErrInvalidOption indicates an optional value tag other than 0 or 1.
	ErrInvalidOption = fmt.Errorf("%w: invalid option tag", ErrCorrupted)
)

// UnknownTagError indicates an enum tag outside the known variants.
type UnknownTagError struct {
	Kind string
	Tag  uint32
}

// Error implements error.
func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("%v: unknown %s tag %d", ErrCorrupted, e.Kind, e.Tag)
}

// Unwrap makes errors.Is(err, ErrCorrupted) hold.
func (e *UnknownTagError) Unwrap() error {
	return ErrCorrupted
}
