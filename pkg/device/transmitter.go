package device

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/serialproto/pkg/link"
	"github.com/robotalks/serialproto/pkg/msgs"
	"github.com/robotalks/serialproto/pkg/wire"
)

// Transmitter encodes queued responses and writes them to the link.
// A failed response is reported and never retried.
type Transmitter struct {
	Link      io.Writer
	Responses <-chan msgs.Response
	Stats     *Stats
	// OnError is called when a response could not be sent.
	OnError func(error)
}

// Run implements Runnable.
func (t *Transmitter) Run(ctx context.Context) error {
	var out wire.ResponseFrame
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case resp := <-t.Responses:
			if err := t.send(resp, &out); err != nil {
				t.Stats.TxErrors.Add(1)
				glog.Errorf("send %v: %v", resp, err)
				if t.OnError != nil {
					t.OnError(err)
				}
				continue
			}
			t.Stats.ResponsesSent.Add(1)
		}
	}
}

func (t *Transmitter) send(resp msgs.Response, out *wire.ResponseFrame) error {
	frame, err := wire.EncodeResponse(resp, out)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if glog.V(3) {
		glog.Infof("TX % x", frame)
	}
	return link.WriteFull(t.Link, frame)
}
