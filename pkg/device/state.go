package device

import (
	"sort"
	"sync"
	"time"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// DefaultScheduleCapacity is the default bound of the schedule queue.
const DefaultScheduleCapacity = 32

// ScheduledEntry is a function waiting for the reference time to reach At.
type ScheduledEntry struct {
	At       msgs.DateTime
	Function msgs.Function
}

// State is a copy of the device state.
type State struct {
	Counter         uint64
	BlinkIntervalMs uint64
	RGBEnabled      bool
	// ReferenceTime is the reference time when the copy was taken,
	// nil when unset.
	ReferenceTime *msgs.DateTime
	// Schedule lists pending entries in firing order.
	Schedule []ScheduledEntry
}

// SharedState is the device state shared by the command dispatcher and the
// periodic tasks. Every access is serialized; readers get snapshots.
//
// The reference time free-runs: SetDateTime stores the supplied time along
// with the instant it was applied, and the current reference time is the
// stored time plus the elapsed monotonic time.
type SharedState struct {
	lock     sync.Mutex
	state    State
	capacity int

	refTime *msgs.DateTime
	refAt   time.Time

	blinkCh chan struct{}
}

// NewSharedState creates the state with a bounded schedule queue.
// A non-positive capacity selects DefaultScheduleCapacity.
func NewSharedState(capacity int) *SharedState {
	if capacity <= 0 {
		capacity = DefaultScheduleCapacity
	}
	return &SharedState{capacity: capacity, blinkCh: make(chan struct{}, 1)}
}

// Apply executes a command and returns the response for it.
func (s *SharedState) Apply(cmd msgs.Command, now time.Time) msgs.Response {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch c := cmd.(type) {
	case msgs.Reset:
		s.state.Counter = 0
		s.setBlink(0)
		s.state.RGBEnabled = false
		s.refTime = nil
		return msgs.OK{}
	case msgs.CounterQuery:
		return msgs.OK{Payload: msgs.CounterValue{Value: s.state.Counter}}
	case msgs.SetDateTime:
		if c.DateTime == nil {
			s.refTime = nil
		} else {
			t := *c.DateTime
			s.refTime, s.refAt = &t, now
		}
		return msgs.OK{}
	case msgs.Immediate:
		if !s.actuate(c.Function) {
			return msgs.Rejected{Reason: msgs.NotImplemented}
		}
		return msgs.OK{}
	case msgs.Schedule:
		if !isKnownFunction(c.Function) {
			return msgs.Rejected{Reason: msgs.NotImplemented}
		}
		if s.refTime == nil {
			return msgs.Rejected{Reason: msgs.IllegalCommand}
		}
		if len(s.state.Schedule) >= s.capacity {
			return msgs.Rejected{Reason: msgs.IllegalCommand}
		}
		s.enqueue(ScheduledEntry{At: c.At, Function: c.Function})
		return msgs.OK{}
	}
	return msgs.Rejected{Reason: msgs.NotImplemented}
}

// FireDue retires every scheduled entry whose target time has been reached
// by the reference time and applies its function. The fired functions are
// returned in firing order. Nothing fires while the reference time is unset.
func (s *SharedState) FireDue(now time.Time) []msgs.Function {
	s.lock.Lock()
	defer s.lock.Unlock()
	ref := s.referenceTime(now)
	if ref == nil {
		return nil
	}
	var fired []msgs.Function
	due := 0
	for _, entry := range s.state.Schedule {
		if entry.At.After(*ref) {
			break
		}
		s.actuate(entry.Function)
		fired = append(fired, entry.Function)
		due++
	}
	if due > 0 {
		s.state.Schedule = append(s.state.Schedule[:0], s.state.Schedule[due:]...)
	}
	return fired
}

// Snapshot returns a consistent copy of the state.
func (s *SharedState) Snapshot(now time.Time) State {
	s.lock.Lock()
	defer s.lock.Unlock()
	snapshot := s.state
	snapshot.ReferenceTime = s.referenceTime(now)
	snapshot.Schedule = append([]ScheduledEntry(nil), s.state.Schedule...)
	return snapshot
}

// BlinkIntervalMs returns the current blink period, 0 when disabled.
func (s *SharedState) BlinkIntervalMs() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state.BlinkIntervalMs
}

// BlinkChanged is signaled when the blink interval changes. It has a
// single consumer.
func (s *SharedState) BlinkChanged() <-chan struct{} {
	return s.blinkCh
}

func (s *SharedState) setBlink(ms uint64) {
	if s.state.BlinkIntervalMs == ms {
		return
	}
	s.state.BlinkIntervalMs = ms
	select {
	case s.blinkCh <- struct{}{}:
	default:
	}
}

func (s *SharedState) referenceTime(now time.Time) *msgs.DateTime {
	if s.refTime == nil {
		return nil
	}
	t := s.refTime.Add(now.Sub(s.refAt))
	return &t
}

// enqueue keeps the queue ordered by target time, entries with equal
// targets in arrival order.
func (s *SharedState) enqueue(entry ScheduledEntry) {
	q := s.state.Schedule
	i := sort.Search(len(q), func(i int) bool { return q[i].At.After(entry.At) })
	q = append(q, ScheduledEntry{})
	copy(q[i+1:], q[i:])
	q[i] = entry
	s.state.Schedule = q
}

func (s *SharedState) actuate(fn msgs.Function) bool {
	switch f := fn.(type) {
	case msgs.Increment:
		s.state.Counter++
	case msgs.EnableBlink:
		s.setBlink(f.PeriodMs)
	case msgs.DisableBlink:
		s.setBlink(0)
	case msgs.EnableRGB:
		s.state.RGBEnabled = true
	case msgs.DisableRGB:
		s.state.RGBEnabled = false
	default:
		return false
	}
	return true
}

func isKnownFunction(fn msgs.Function) bool {
	switch fn.(type) {
	case msgs.Increment, msgs.EnableBlink, msgs.DisableBlink, msgs.EnableRGB, msgs.DisableRGB:
		return true
	}
	return false
}
