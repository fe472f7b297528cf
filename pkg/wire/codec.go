// Package wire frames messages for a byte stream.
//
// A value is first encoded with a fixed-width little-endian layout, then
// byte-stuffed (COBS) so that Terminator never occurs in the payload, and
// Terminator is appended as the frame end marker.
package wire

import (
	"github.com/robotalks/serialproto/pkg/msgs"
)

// SlackLen is one word reserved on top of each layout size so variants can
// be added, or bookkeeping prepended, without changing the frame bounds.
const SlackLen = 4

// Maximum frame lengths, terminator included. Both ends size their buffers
// with exactly these values.
const (
	MaxCommandFrameLen  = (msgs.CommandSize + SlackLen) + (msgs.CommandSize+SlackLen)/maxBlock + 2
	MaxResponseFrameLen = (msgs.ResponseSize + SlackLen) + (msgs.ResponseSize+SlackLen)/maxBlock + 2
)

// CommandFrame is a buffer large enough for any encoded Command.
type CommandFrame [MaxCommandFrameLen]byte

// ResponseFrame is a buffer large enough for any encoded Response.
type ResponseFrame [MaxResponseFrameLen]byte

// EncodeCommand encodes cmd into out and returns the sub-slice used,
// terminator included.
func EncodeCommand(cmd msgs.Command, out *CommandFrame) ([]byte, error) {
	var raw [msgs.CommandSize + SlackLen]byte
	e := encoder{buf: raw[:]}
	e.command(cmd)
	if e.err != nil {
		return nil, e.err
	}
	return terminate(out[:], raw[:e.n])
}

// EncodeResponse encodes resp into out and returns the sub-slice used,
// terminator included.
func EncodeResponse(resp msgs.Response, out *ResponseFrame) ([]byte, error) {
	var raw [msgs.ResponseSize + SlackLen]byte
	e := encoder{buf: raw[:]}
	e.response(resp)
	if e.err != nil {
		return nil, e.err
	}
	return terminate(out[:], raw[:e.n])
}

// terminate stuffs raw into dst and appends Terminator.
func terminate(dst, raw []byte) ([]byte, error) {
	n, err := StuffBytes(dst, raw)
	if err != nil {
		return nil, err
	}
	if n >= len(dst) {
		return nil, ErrBufferTooSmall
	}
	dst[n] = Terminator
	return dst[:n+1], nil
}

// DecodeCommand decodes a frame in place. The frame may end with Terminator.
// The content of frame is destroyed.
func DecodeCommand(frame []byte) (msgs.Command, error) {
	cmd, trailing, err := DecodeCommandLenient(frame)
	if err == nil && trailing {
		return nil, ErrTrailingBytes
	}
	return cmd, err
}

// DecodeCommandLenient is DecodeCommand tolerating extra bytes after the
// command, which is reported by trailing.
func DecodeCommandLenient(frame []byte) (cmd msgs.Command, trailing bool, err error) {
	n, err := UnstuffInPlace(frame)
	if err != nil {
		return nil, false, err
	}
	d := decoder{buf: frame[:n]}
	cmd = d.command()
	if d.err != nil {
		return nil, false, d.err
	}
	return cmd, d.off != n, nil
}

// DecodeResponse decodes a frame in place. The frame may end with Terminator.
// The content of frame is destroyed.
func DecodeResponse(frame []byte) (msgs.Response, error) {
	n, err := UnstuffInPlace(frame)
	if err != nil {
		return nil, err
	}
	d := decoder{buf: frame[:n]}
	resp := d.response()
	if d.err != nil {
		return nil, d.err
	}
	if d.off != n {
		return nil, ErrTrailingBytes
	}
	return resp, nil
}
