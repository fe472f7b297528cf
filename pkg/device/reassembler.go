package device

import (
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/serialproto/pkg/msgs"
	"github.com/robotalks/serialproto/pkg/wire"
)

// ReassemblyResult is the outcome of feeding one byte.
// At most one of Command and Reject is set.
type ReassemblyResult struct {
	Command msgs.Command
	// Recovered is set when Command was decoded from a frame carrying
	// extra trailing bytes.
	Recovered bool
	Reject    *msgs.Rejected
}

// Done tells whether the byte completed a frame.
func (r ReassemblyResult) Done() bool {
	return r.Command != nil || r.Reject != nil
}

// Reassembler accumulates link bytes into command frames.
// It never allocates and never blocks.
type Reassembler struct {
	// Recover enables decoding frames carrying extra trailing bytes.
	Recover bool

	buf   [wire.MaxCommandFrameLen]byte
	n     int
	frame [wire.MaxCommandFrameLen]byte
}

var corruptedFrame = &msgs.Rejected{Reason: msgs.CorruptedFrame}

// Len returns the number of bytes accumulated for the current frame.
func (r *Reassembler) Len() int {
	return r.n
}

// Reset discards the accumulated bytes.
func (r *Reassembler) Reset() {
	r.n = 0
}

// Feed consumes one byte.
func (r *Reassembler) Feed(b byte) (res ReassemblyResult) {
	if r.n >= len(r.buf) {
		if b != wire.Terminator {
			glog.V(2).Infof("frame overflow after %d bytes", r.n)
			r.n = 0
			res.Reject = corruptedFrame
			return
		}
	} else {
		r.buf[r.n] = b
		r.n++
		if b != wire.Terminator {
			return
		}
	}
	n := copy(r.frame[:], r.buf[:r.n])
	r.n = 0
	return r.decode(r.frame[:n])
}

func (r *Reassembler) decode(frame []byte) (res ReassemblyResult) {
	var err error
	if r.Recover {
		res.Command, res.Recovered, err = wire.DecodeCommandLenient(frame)
	} else {
		res.Command, err = wire.DecodeCommand(frame)
	}
	if err != nil {
		if glog.V(2) {
			glog.Infof("frame rejected: %v", err)
		}
		if !errors.Is(err, wire.ErrCorrupted) {
			glog.Errorf("unexpected decode error: %v", err)
		}
		return ReassemblyResult{Reject: corruptedFrame}
	}
	return
}
