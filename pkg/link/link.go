// Package link defines the byte stream connecting host and device.
package link

import (
	"io"
	"time"
)

// Port is a byte stream whose reads give up after a timeout.
// A read timing out returns 0 bytes and no error.
type Port interface {
	io.ReadWriter
	SetReadTimeout(time.Duration) error
}

// WriteFull writes all of b, retrying partial writes. A writer reporting
// no progress without an error fails with io.ErrShortWrite.
func WriteFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n <= 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}
