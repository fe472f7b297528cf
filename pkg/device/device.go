// Package device implements the device side of the protocol: byte
// reassembly, command dispatch against the shared state, response
// transmission and the periodic blink, scheduler and RGB tasks.
package device

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/serialproto/pkg/framework"
	"github.com/robotalks/serialproto/pkg/msgs"
)

// DefaultQueueLen is the default capacity of the command and response queues.
const DefaultQueueLen = 4

// Device owns the state shared by all link sessions.
type Device struct {
	State    *SharedState
	Actuator Actuator
	Observer Observer
	Stats    Stats

	Recover      bool
	QueueLen     int
	TickInterval time.Duration
	Brightness   uint8
	// Clock is the time source of command handling and of the periodic
	// tasks. It must be set before Run.
	Clock func() time.Time

	loop *fx.Loop
}

// New creates a Device from conf.
func New(conf *Config, actuator Actuator) *Device {
	d := &Device{
		State:        NewSharedState(conf.ScheduleCapacity),
		Actuator:     actuator,
		Recover:      conf.Recover,
		QueueLen:     conf.QueueLen,
		TickInterval: conf.TickInterval,
		Clock:        time.Now,
	}
	if d.TickInterval <= 0 {
		d.TickInterval = DefaultTickInterval
	}
	d.loop = fx.NewLoop(d.TickInterval)
	d.loop.Clock = d.now
	return d
}

// Snapshot returns the current device state.
func (d *Device) Snapshot() State {
	return d.State.Snapshot(d.now())
}

// AddToLoop implements LoopAdder.
func (d *Device) AddToLoop(loop *fx.Loop) {
	loop.Add(
		&Scheduler{State: d.State, OnFired: d.fired},
		&Indicator{State: d.State, Actuator: d.Actuator, Brightness: d.Brightness},
	)
	loop.AddRunnable(fx.NamedRun("blinker", &Blinker{State: d.State, Actuator: d.Actuator}))
}

// Run implements Runnable. It runs the periodic tasks for the device
// lifetime.
func (d *Device) Run(ctx context.Context) error {
	if d.loop == nil {
		d.loop = fx.NewLoop(d.TickInterval)
		d.loop.Clock = d.now
	}
	d.loop.Add(d)
	return d.loop.Run(ctx)
}

// Serve runs a session on link until the link fails or ctx is done.
// If link is an io.Closer it is closed when the session ends.
func (d *Device) Serve(ctx context.Context, link io.ReadWriter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queueLen := d.QueueLen
	if queueLen <= 0 {
		queueLen = DefaultQueueLen
	}
	commands := make(chan Request, queueLen)
	responses := make(chan msgs.Response, queueLen)

	receiver := &Receiver{
		Link:        link,
		Reassembler: &Reassembler{Recover: d.Recover},
		Commands:    commands,
		Responses:   responses,
		Stats:       &d.Stats,
	}
	dispatcher := &Dispatcher{
		State:     d.State,
		Commands:  commands,
		Responses: responses,
		Observer:  d.Observer,
		Clock:     d.now,
		OnApplied: d.applied,
	}
	transmitter := &Transmitter{
		Link:      link,
		Responses: responses,
		Stats:     &d.Stats,
	}

	rx := fx.RunFunc(func(ctx context.Context) error {
		defer cancel()
		if closer, ok := link.(io.Closer); ok {
			return fx.RunWithContextCloser(ctx, closer, func() error { return receiver.Run(ctx) })
		}
		return receiver.Run(ctx)
	})
	err := fx.NewRunnerWith(ctx).Run(
		fx.NamedRun("receiver", rx),
		fx.NamedRun("dispatcher", dispatcher),
		fx.NamedRun("transmitter", transmitter),
	)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (d *Device) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d *Device) applied(cmd msgs.Command) {
	switch cmd.(type) {
	case msgs.SetDateTime, msgs.Schedule, msgs.Immediate, msgs.Reset:
		if d.loop != nil {
			d.loop.TriggerNext()
		}
	}
}

func (d *Device) fired(fns []msgs.Function) {
	if d.Observer != nil {
		d.Observer.Fired(fns)
	}
	glog.V(2).Infof("%d scheduled functions fired", len(fns))
}
