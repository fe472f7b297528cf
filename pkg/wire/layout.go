package wire

import (
	"encoding/binary"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// encoder writes the fixed-width little-endian layout into a fixed buffer.
type encoder struct {
	buf []byte
	n   int
	err error
}

func (e *encoder) grow(size int) []byte {
	if e.err != nil {
		return nil
	}
	if e.n+size > len(e.buf) {
		e.err = ErrBufferTooSmall
		return nil
	}
	b := e.buf[e.n : e.n+size]
	e.n += size
	return b
}

func (e *encoder) u8(v byte) {
	if b := e.grow(1); b != nil {
		b[0] = v
	}
}

func (e *encoder) u32(v uint32) {
	if b := e.grow(4); b != nil {
		binary.LittleEndian.PutUint32(b, v)
	}
}

func (e *encoder) u64(v uint64) {
	if b := e.grow(8); b != nil {
		binary.LittleEndian.PutUint64(b, v)
	}
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) dateTime(d msgs.DateTime) {
	e.u32(uint32(d.Year))
	e.u32(d.Month)
	e.u32(d.Day)
	e.u32(d.Hour)
	e.u32(d.Minute)
	e.u32(d.Second)
	e.u32(d.Nanosecond)
}

func (e *encoder) function(f msgs.Function) {
	switch fn := f.(type) {
	case msgs.Increment, msgs.DisableBlink, msgs.EnableRGB, msgs.DisableRGB:
		e.u32(uint32(fn.FunctionTag()))
	case msgs.EnableBlink:
		e.u32(uint32(msgs.TagEnableBlink))
		e.u64(fn.PeriodMs)
	default:
		e.fail(ErrUnsupportedMessage)
	}
}

func (e *encoder) command(c msgs.Command) {
	switch cmd := c.(type) {
	case msgs.Reset, msgs.CounterQuery:
		e.u32(uint32(cmd.CommandTag()))
	case msgs.SetDateTime:
		e.u32(uint32(msgs.TagSetDateTime))
		if cmd.DateTime == nil {
			e.u8(0)
		} else {
			e.u8(1)
			e.dateTime(*cmd.DateTime)
		}
	case msgs.Immediate:
		e.u32(uint32(msgs.TagImmediate))
		e.function(cmd.Function)
	case msgs.Schedule:
		e.u32(uint32(msgs.TagSchedule))
		e.function(cmd.Function)
		e.dateTime(cmd.At)
	default:
		e.fail(ErrUnsupportedMessage)
	}
}

func (e *encoder) payload(p msgs.Payload) {
	if p == nil {
		e.u8(0)
		return
	}
	e.u8(1)
	switch pl := p.(type) {
	case msgs.CounterValue:
		e.u32(uint32(msgs.TagCounterValue))
		e.u64(pl.Value)
	default:
		e.fail(ErrUnsupportedMessage)
	}
}

func (e *encoder) response(r msgs.Response) {
	switch resp := r.(type) {
	case msgs.OK:
		e.u32(uint32(msgs.TagOK))
		e.payload(resp.Payload)
	case msgs.Rejected:
		if !resp.Reason.IsValid() {
			e.fail(ErrUnsupportedMessage)
			return
		}
		e.u32(uint32(msgs.TagRejected))
		e.u32(uint32(resp.Reason))
	case msgs.OKRecovered:
		e.u32(uint32(msgs.TagOKRecovered))
		e.payload(resp.Payload)
		e.command(resp.Command)
	default:
		e.fail(ErrUnsupportedMessage)
	}
}

// decoder reads the fixed-width little-endian layout. The first error sticks.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) next(size int) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+size > len(d.buf) {
		d.err = ErrShortFrame
		return nil
	}
	b := d.buf[d.off : d.off+size]
	d.off += size
	return b
}

func (d *decoder) u8() byte {
	if b := d.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) u64() uint64 {
	if b := d.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// option reads an optional value tag and reports whether a value follows.
func (d *decoder) option() bool {
	switch d.u8() {
	case 0:
		return false
	case 1:
		return true
	}
	d.fail(ErrInvalidOption)
	return false
}

func (d *decoder) dateTime() (dt msgs.DateTime) {
	dt.Year = int32(d.u32())
	dt.Month = d.u32()
	dt.Day = d.u32()
	dt.Hour = d.u32()
	dt.Minute = d.u32()
	dt.Second = d.u32()
	dt.Nanosecond = d.u32()
	return
}

func (d *decoder) function() msgs.Function {
	tag := d.u32()
	if d.err != nil {
		return nil
	}
	switch msgs.FunctionTag(tag) {
	case msgs.TagIncrement:
		return msgs.Increment{}
	case msgs.TagEnableBlink:
		return msgs.EnableBlink{PeriodMs: d.u64()}
	case msgs.TagDisableBlink:
		return msgs.DisableBlink{}
	case msgs.TagEnableRGB:
		return msgs.EnableRGB{}
	case msgs.TagDisableRGB:
		return msgs.DisableRGB{}
	}
	d.fail(&UnknownTagError{Kind: "function", Tag: tag})
	return nil
}

func (d *decoder) command() msgs.Command {
	tag := d.u32()
	if d.err != nil {
		return nil
	}
	switch msgs.CommandTag(tag) {
	case msgs.TagReset:
		return msgs.Reset{}
	case msgs.TagCounterQuery:
		return msgs.CounterQuery{}
	case msgs.TagSetDateTime:
		var cmd msgs.SetDateTime
		if d.option() {
			dt := d.dateTime()
			cmd.DateTime = &dt
		}
		return cmd
	case msgs.TagImmediate:
		return msgs.Immediate{Function: d.function()}
	case msgs.TagSchedule:
		fn := d.function()
		return msgs.Schedule{Function: fn, At: d.dateTime()}
	}
	d.fail(&UnknownTagError{Kind: "command", Tag: tag})
	return nil
}

func (d *decoder) payload() msgs.Payload {
	if !d.option() {
		return nil
	}
	tag := d.u32()
	if d.err != nil {
		return nil
	}
	switch msgs.PayloadTag(tag) {
	case msgs.TagCounterValue:
		return msgs.CounterValue{Value: d.u64()}
	}
	d.fail(&UnknownTagError{Kind: "payload", Tag: tag})
	return nil
}

func (d *decoder) response() msgs.Response {
	tag := d.u32()
	if d.err != nil {
		return nil
	}
	switch msgs.ResponseTag(tag) {
	case msgs.TagOK:
		return msgs.OK{Payload: d.payload()}
	case msgs.TagRejected:
		reason := msgs.RejectReason(d.u32())
		if d.err == nil && !reason.IsValid() {
			d.fail(&UnknownTagError{Kind: "reject reason", Tag: uint32(reason)})
		}
		return msgs.Rejected{Reason: reason}
	case msgs.TagOKRecovered:
		payload := d.payload()
		return msgs.OKRecovered{Payload: payload, Command: d.command()}
	}
	d.fail(&UnknownTagError{Kind: "response", Tag: tag})
	return nil
}
