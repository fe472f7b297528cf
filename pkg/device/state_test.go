package device

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialproto/pkg/msgs"
)

type futureCommand struct{}

func (futureCommand) CommandTag() msgs.CommandTag { return 99 }

type futureFunction struct{}

func (futureFunction) FunctionTag() msgs.FunctionTag { return 99 }

var (
	t0       = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	refStart = msgs.DateTime{Year: 2025, Month: 7, Day: 4, Hour: 10, Minute: 30}
	okNone   = msgs.OK{}
)

func counterOK(v uint64) msgs.Response {
	return msgs.OK{Payload: msgs.CounterValue{Value: v}}
}

func TestDispatchTable(t *testing.T) {
	s := NewSharedState(0)
	dt := refStart
	testCases := []struct {
		cmd  msgs.Command
		resp msgs.Response
	}{
		{msgs.CounterQuery{}, counterOK(0)},
		{msgs.Immediate{Function: msgs.Increment{}}, okNone},
		{msgs.Immediate{Function: msgs.EnableBlink{PeriodMs: 500}}, okNone},
		{msgs.Immediate{Function: msgs.EnableRGB{}}, okNone},
		{msgs.Schedule{Function: msgs.Increment{}, At: refStart}, msgs.Rejected{Reason: msgs.IllegalCommand}},
		{msgs.SetDateTime{DateTime: &dt}, okNone},
		{msgs.Schedule{Function: msgs.Increment{}, At: refStart.Add(time.Hour)}, okNone},
		{msgs.Schedule{Function: futureFunction{}, At: refStart}, msgs.Rejected{Reason: msgs.NotImplemented}},
		{msgs.Immediate{Function: futureFunction{}}, msgs.Rejected{Reason: msgs.NotImplemented}},
		{futureCommand{}, msgs.Rejected{Reason: msgs.NotImplemented}},
		{msgs.CounterQuery{}, counterOK(1)},
		{msgs.Immediate{Function: msgs.DisableBlink{}}, okNone},
		{msgs.Immediate{Function: msgs.DisableRGB{}}, okNone},
		{msgs.SetDateTime{}, okNone},
	}
	for n, tc := range testCases {
		require.Equalf(t, tc.resp, s.Apply(tc.cmd, t0), "step %d: %v", n, tc.cmd)
	}
	state := s.Snapshot(t0)
	require.Equal(t, uint64(1), state.Counter)
	require.Zero(t, state.BlinkIntervalMs)
	require.False(t, state.RGBEnabled)
	require.Nil(t, state.ReferenceTime)
	require.Len(t, state.Schedule, 1)
}

func TestSchedulingGate(t *testing.T) {
	s := NewSharedState(0)
	sched := msgs.Schedule{Function: msgs.EnableBlink{PeriodMs: 500}, At: refStart.Add(time.Minute)}

	before := s.Snapshot(t0)
	require.Equal(t, msgs.Rejected{Reason: msgs.IllegalCommand}, s.Apply(sched, t0))
	require.Equal(t, before, s.Snapshot(t0))

	dt := refStart
	require.Equal(t, okNone, s.Apply(msgs.SetDateTime{DateTime: &dt}, t0))
	require.Equal(t, okNone, s.Apply(sched, t0))
	state := s.Snapshot(t0)
	require.Equal(t, []ScheduledEntry{{At: sched.At, Function: sched.Function}}, state.Schedule)

	require.Equal(t, okNone, s.Apply(msgs.SetDateTime{}, t0))
	require.Equal(t, msgs.Rejected{Reason: msgs.IllegalCommand}, s.Apply(sched, t0))
}

func TestCounterMonotonicity(t *testing.T) {
	s := NewSharedState(0)
	for i := uint64(1); i <= 5; i++ {
		require.Equal(t, okNone, s.Apply(msgs.Immediate{Function: msgs.Increment{}}, t0))
		require.Equal(t, counterOK(i), s.Apply(msgs.CounterQuery{}, t0))
	}
	require.Equal(t, okNone, s.Apply(msgs.Reset{}, t0))
	require.Equal(t, counterOK(0), s.Apply(msgs.CounterQuery{}, t0))
}

func TestDisableIdempotence(t *testing.T) {
	for _, fn := range []msgs.Function{msgs.DisableBlink{}, msgs.DisableRGB{}} {
		t.Run(fmt.Sprint(fn), func(t *testing.T) {
			s := NewSharedState(0)
			s.Apply(msgs.Immediate{Function: msgs.EnableBlink{PeriodMs: 100}}, t0)
			s.Apply(msgs.Immediate{Function: msgs.EnableRGB{}}, t0)

			require.Equal(t, okNone, s.Apply(msgs.Immediate{Function: fn}, t0))
			once := s.Snapshot(t0)
			require.Equal(t, okNone, s.Apply(msgs.Immediate{Function: fn}, t0))
			require.Equal(t, once, s.Snapshot(t0))
		})
	}
}

func TestReferenceTimeFreeRuns(t *testing.T) {
	s := NewSharedState(0)
	require.Nil(t, s.Snapshot(t0).ReferenceTime)
	dt := refStart
	s.Apply(msgs.SetDateTime{DateTime: &dt}, t0)
	dt.Year = 1999 // the state keeps its own copy

	ref := s.Snapshot(t0).ReferenceTime
	require.NotNil(t, ref)
	require.Equal(t, refStart, *ref)

	ref = s.Snapshot(t0.Add(90 * time.Second)).ReferenceTime
	require.Equal(t, refStart.Add(90*time.Second), *ref)

	s.Apply(msgs.Reset{}, t0)
	require.Nil(t, s.Snapshot(t0).ReferenceTime)
}

func TestFireDue(t *testing.T) {
	s := NewSharedState(0)
	dt := refStart
	s.Apply(msgs.SetDateTime{DateTime: &dt}, t0)

	// queued out of order; equal targets keep arrival order
	entries := []msgs.Schedule{
		{Function: msgs.EnableBlink{PeriodMs: 300}, At: refStart.Add(3 * time.Second)},
		{Function: msgs.Increment{}, At: refStart.Add(time.Second)},
		{Function: msgs.EnableBlink{PeriodMs: 200}, At: refStart.Add(2 * time.Second)},
		{Function: msgs.EnableRGB{}, At: refStart.Add(time.Second)},
		{Function: msgs.Increment{}, At: refStart.Add(-time.Hour)},
	}
	for _, e := range entries {
		require.Equal(t, okNone, s.Apply(e, t0))
	}

	require.Equal(t, []msgs.Function{msgs.Increment{}}, s.FireDue(t0))
	require.Equal(t, uint64(1), s.Snapshot(t0).Counter)

	require.Equal(t, []msgs.Function{msgs.Increment{}, msgs.EnableRGB{}, msgs.EnableBlink{PeriodMs: 200}},
		s.FireDue(t0.Add(2*time.Second)))
	state := s.Snapshot(t0.Add(2 * time.Second))
	require.Equal(t, uint64(2), state.Counter)
	require.True(t, state.RGBEnabled)
	require.Equal(t, uint64(200), state.BlinkIntervalMs)
	require.Len(t, state.Schedule, 1)

	// fired entries never fire again
	require.Empty(t, s.FireDue(t0.Add(2*time.Second)))
	require.Equal(t, []msgs.Function{msgs.EnableBlink{PeriodMs: 300}}, s.FireDue(t0.Add(time.Hour)))
	require.Empty(t, s.Snapshot(t0).Schedule)
}

func TestResetKeepsScheduleDormant(t *testing.T) {
	s := NewSharedState(0)
	dt := refStart
	s.Apply(msgs.SetDateTime{DateTime: &dt}, t0)
	s.Apply(msgs.Schedule{Function: msgs.Increment{}, At: refStart.Add(time.Second)}, t0)
	s.Apply(msgs.Reset{}, t0)

	require.Empty(t, s.FireDue(t0.Add(time.Hour)))
	require.Len(t, s.Snapshot(t0).Schedule, 1)

	s.Apply(msgs.SetDateTime{DateTime: &dt}, t0.Add(time.Hour))
	require.Equal(t, []msgs.Function{msgs.Increment{}}, s.FireDue(t0.Add(time.Hour+time.Second)))
	require.Equal(t, uint64(1), s.Snapshot(t0).Counter)
}

func TestScheduleCapacity(t *testing.T) {
	s := NewSharedState(2)
	dt := refStart
	s.Apply(msgs.SetDateTime{DateTime: &dt}, t0)
	sched := msgs.Schedule{Function: msgs.Increment{}, At: refStart.Add(time.Minute)}
	require.Equal(t, okNone, s.Apply(sched, t0))
	require.Equal(t, okNone, s.Apply(sched, t0))
	require.Equal(t, msgs.Rejected{Reason: msgs.IllegalCommand}, s.Apply(sched, t0))
	require.Len(t, s.Snapshot(t0).Schedule, 2)

	s.FireDue(t0.Add(time.Minute))
	require.Equal(t, okNone, s.Apply(sched, t0))
}
