package sh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialproto/pkg/msgs"
)

func TestParseFunction(t *testing.T) {
	testCases := []struct {
		args []string
		fn   msgs.Function
		rest []string
	}{
		{[]string{"inc"}, msgs.Increment{}, []string{}},
		{[]string{"blink", "250", "1s"}, msgs.EnableBlink{PeriodMs: 250}, []string{"1s"}},
		{[]string{"noblink"}, msgs.DisableBlink{}, []string{}},
		{[]string{"RGB", "5s"}, msgs.EnableRGB{}, []string{"5s"}},
		{[]string{"norgb"}, msgs.DisableRGB{}, []string{}},
	}
	for _, tc := range testCases {
		fn, rest, err := ParseFunction(tc.args)
		require.NoError(t, err)
		require.Equal(t, tc.fn, fn)
		require.Equal(t, tc.rest, rest)
	}

	for _, args := range [][]string{nil, {"blink"}, {"blink", "fast"}, {"jump"}} {
		_, _, err := ParseFunction(args)
		require.Errorf(t, err, "%v", args)
	}
}

func TestParseDateTime(t *testing.T) {
	now := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	dt, err := ParseDateTime("now", now)
	require.NoError(t, err)
	require.Equal(t, msgs.DateTimeFrom(now), *dt)

	dt, err = ParseDateTime("clear", now)
	require.NoError(t, err)
	require.Nil(t, dt)

	dt, err = ParseDateTime("2024-01-02T03:04:05+01:00", now)
	require.NoError(t, err)
	require.Equal(t, msgs.DateTime{Year: 2024, Month: 1, Day: 2, Hour: 2, Minute: 4, Second: 5}, *dt)

	_, err = ParseDateTime("yesterday", now)
	require.Error(t, err)
}

func TestParseSchedule(t *testing.T) {
	now := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	sched, err := ParseSchedule([]string{"blink", "100", "90s"}, now)
	require.NoError(t, err)
	require.Equal(t, msgs.Schedule{
		Function: msgs.EnableBlink{PeriodMs: 100},
		At:       msgs.DateTimeFrom(now.Add(90 * time.Second)),
	}, sched)

	sched, err = ParseSchedule([]string{"inc", "2025-06-07T09:00:00Z"}, now)
	require.NoError(t, err)
	require.Equal(t, msgs.DateTime{Year: 2025, Month: 6, Day: 7, Hour: 9}, sched.At)

	_, err = ParseSchedule([]string{"inc"}, now)
	require.Error(t, err)
	_, err = ParseSchedule([]string{"inc", "later"}, now)
	require.Error(t, err)
}

func TestFormatResponse(t *testing.T) {
	require.Equal(t, "OK", FormatResponse(msgs.OK{}))
	require.Equal(t, "Ok(Counter(3))", FormatResponse(msgs.OK{Payload: msgs.CounterValue{Value: 3}}))
	require.Equal(t, "Rejected(IllegalCommand)", FormatResponse(msgs.Rejected{Reason: msgs.IllegalCommand}))
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(msgs.OK{Payload: msgs.CounterValue{Value: 3}})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok","counter":3}`, string(out))

	out, err = FormatJSON(msgs.Rejected{Reason: msgs.CorruptedFrame})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"rejected","reason":"CorruptedFrame"}`, string(out))

	out, err = FormatJSON(msgs.OKRecovered{Command: msgs.Reset{}})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok_recovered","command":"Reset"}`, string(out))
}
