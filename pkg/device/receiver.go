package device

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// ReadChunkSize is the size of a single link read.
const ReadChunkSize = 64

// Request is a decoded command waiting for the dispatcher.
type Request struct {
	Command   msgs.Command
	Recovered bool
}

// Receiver reads the link and reassembles commands. It never touches the
// device state and never blocks on its consumers: a full queue drops the
// item.
type Receiver struct {
	Link        io.Reader
	Reassembler *Reassembler
	Commands    chan<- Request
	Responses   chan<- msgs.Response
	Stats       *Stats
}

// Run implements Runnable. It returns on the first link read error.
func (r *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, ReadChunkSize)
	for {
		n, err := r.Link.Read(buf)
		if n > 0 && glog.V(3) {
			glog.Infof("RX % x", buf[:n])
		}
		for _, b := range buf[:n] {
			r.handle(r.Reassembler.Feed(b))
		}
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
	}
}

func (r *Receiver) handle(res ReassemblyResult) {
	switch {
	case res.Command != nil:
		r.Stats.CommandsReceived.Add(1)
		select {
		case r.Commands <- Request{Command: res.Command, Recovered: res.Recovered}:
		default:
			r.Stats.CommandsDropped.Add(1)
			glog.Warningf("command queue full, %v dropped", res.Command)
		}
	case res.Reject != nil:
		r.Stats.FramesRejected.Add(1)
		select {
		case r.Responses <- *res.Reject:
		default:
			r.Stats.RejectsDropped.Add(1)
			glog.Warningf("response queue full, %v dropped", *res.Reject)
		}
	}
}
