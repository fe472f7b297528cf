package framework

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultLoopInterval is used when Loop.Interval is zero.
const DefaultLoopInterval = 100 * time.Millisecond

// Loop runs controllers periodically in priority order, together with
// a set of background Runnables sharing the loop lifetime.
type Loop struct {
	Interval time.Duration
	// Clock is the time source of iterations, time.Now if nil.
	Clock func() time.Time

	controllers [PriorityLevels][]Controller
	runners     []Runnable
	lock        sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	priorityLevel int
}

// NewLoop creates a Loop.
func NewLoop(interval time.Duration) *Loop {
	return &Loop{Interval: interval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop. Controllers which are
// also Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.lock.Lock()
	l.runners = append(l.runners, runnables...)
	l.lock.Unlock()
	return l
}

// Run implements Runnable. It returns when ctx is done and all runnables
// have stopped; the first runnable failure also stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.lock.Lock()
	runners := l.runners
	l.lock.Unlock()

	runner := NewRunnerWith(ctx)
	for _, r := range runners {
		runner.Go(stopOnError(r, cancel))
	}

	interval := l.Interval
	if interval == 0 {
		interval = DefaultLoopInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cancel()
			return runner.Wait()
		case <-ticker.C:
			l.runIteration(ctx, l.Now())
		case <-l.wakeUpCh:
			l.runIteration(ctx, l.Now())
		}
	}
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Now returns the current time from Clock.
func (l *Loop) Now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

// RunOnce executes a single iteration at the specified time.
func (l *Loop) RunOnce(ctx context.Context, now time.Time) {
	l.runIteration(ctx, now)
}

func (l *Loop) runIteration(ctx context.Context, now time.Time) {
	iter := &loopIteration{Loop: l, ctx: ctx, time: now}
	for i := 0; i < PriorityLevels; i++ {
		l.lock.Lock()
		ctls := l.controllers[i]
		l.lock.Unlock()
		iter.priorityLevel = i
		for _, ctl := range ctls {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

type stopOnErrorRunnable struct {
	Runnable
	cancel func()
}

func (r *stopOnErrorRunnable) Name() string {
	if named, ok := r.Runnable.(Named); ok {
		return named.Name()
	}
	return "loop"
}

func (r *stopOnErrorRunnable) Run(ctx context.Context) error {
	err := r.Runnable.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		r.cancel()
	}
	return err
}

func stopOnError(r Runnable, cancel func()) Runnable {
	return &stopOnErrorRunnable{Runnable: r, cancel: cancel}
}
