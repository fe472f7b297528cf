package device

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// Observer is notified of device activity. Calls are made from the
// dispatcher and the scheduler and must not block.
type Observer interface {
	Exchanged(cmd msgs.Command, resp msgs.Response)
	Fired(fns []msgs.Function)
}

// Dispatcher applies queued commands to the state and queues exactly one
// response per command.
type Dispatcher struct {
	State     *SharedState
	Commands  <-chan Request
	Responses chan<- msgs.Response
	Observer  Observer
	Clock     func() time.Time
	// OnApplied is called after a command is applied.
	OnApplied func(msgs.Command)
}

// Run implements Runnable.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-d.Commands:
			resp := d.Handle(req)
			select {
			case d.Responses <- resp:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Handle applies a single request and returns the response.
func (d *Dispatcher) Handle(req Request) msgs.Response {
	now := time.Now
	if d.Clock != nil {
		now = d.Clock
	}
	resp := d.State.Apply(req.Command, now())
	if req.Recovered && msgs.IsOK(resp) {
		resp = msgs.OKRecovered{Payload: msgs.PayloadOf(resp), Command: req.Command}
	}
	glog.V(1).Infof("%v -> %v", req.Command, resp)
	if d.OnApplied != nil {
		d.OnApplied(req.Command)
	}
	if d.Observer != nil {
		d.Observer.Exchanged(req.Command, resp)
	}
	return resp
}
