package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialproto/pkg/msgs"
	"github.com/robotalks/serialproto/pkg/wire"
)

func encodeCommand(t *testing.T, cmd msgs.Command) []byte {
	var out wire.CommandFrame
	frame, err := wire.EncodeCommand(cmd, &out)
	require.NoError(t, err)
	return append([]byte(nil), frame...)
}

// feedAll feeds bytes and collects completed results.
func feedAll(r *Reassembler, bs ...byte) (results []ReassemblyResult) {
	for _, b := range bs {
		if res := r.Feed(b); res.Done() {
			results = append(results, res)
		}
	}
	return
}

func TestReassemblerFrames(t *testing.T) {
	var r Reassembler
	cmds := []msgs.Command{
		msgs.CounterQuery{},
		msgs.Immediate{Function: msgs.EnableBlink{PeriodMs: 250}},
		msgs.Schedule{Function: msgs.Increment{}, At: msgs.DateTime{Year: 2030, Month: 1, Day: 1}},
	}
	var stream []byte
	for _, cmd := range cmds {
		stream = append(stream, encodeCommand(t, cmd)...)
	}
	results := feedAll(&r, stream...)
	require.Len(t, results, len(cmds))
	for n, res := range results {
		require.Nil(t, res.Reject)
		require.False(t, res.Recovered)
		require.Equal(t, cmds[n], res.Command)
	}
	require.Zero(t, r.Len())
}

func TestReassemblerPartialFeeds(t *testing.T) {
	var r Reassembler
	frame := encodeCommand(t, msgs.Immediate{Function: msgs.Increment{}})
	require.Empty(t, feedAll(&r, frame[:3]...))
	require.Equal(t, 3, r.Len())
	results := feedAll(&r, frame[3:]...)
	require.Len(t, results, 1)
	require.Equal(t, msgs.Immediate{Function: msgs.Increment{}}, results[0].Command)
}

func TestReassemblerOverflow(t *testing.T) {
	var r Reassembler
	garbage := make([]byte, wire.MaxCommandFrameLen+1)
	for n := range garbage {
		garbage[n] = 0x55
	}
	results := feedAll(&r, garbage...)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Reject)
	require.Equal(t, msgs.CorruptedFrame, results[0].Reject.Reason)
	require.Nil(t, results[0].Command)
	require.Zero(t, r.Len())

	results = feedAll(&r, encodeCommand(t, msgs.Reset{})...)
	require.Len(t, results, 1)
	require.Equal(t, msgs.Reset{}, results[0].Command)
}

func TestReassemblerTerminatorOnFullBuffer(t *testing.T) {
	var r Reassembler
	full := make([]byte, wire.MaxCommandFrameLen)
	for n := range full {
		full[n] = 0x02
	}
	require.Empty(t, feedAll(&r, full...))
	require.Equal(t, wire.MaxCommandFrameLen, r.Len())
	results := feedAll(&r, wire.Terminator)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Reject)
	require.Zero(t, r.Len())
}

func TestReassemblerCorruptedFrames(t *testing.T) {
	frame := encodeCommand(t, msgs.SetDateTime{DateTime: &msgs.DateTime{Year: 2025, Month: 6, Day: 1}})
	testCases := map[string][]byte{
		"lone terminator": {wire.Terminator},
		"truncated":       append(append([]byte(nil), frame[:10]...), wire.Terminator),
		"bad stuffing":    {0x09, 0x01, wire.Terminator},
		"unknown command": {0x05, 0x09, 0x01, 0x01, 0x01, wire.Terminator},
	}
	for name, bs := range testCases {
		t.Run(name, func(t *testing.T) {
			var r Reassembler
			results := feedAll(&r, bs...)
			require.Len(t, results, 1)
			require.Equal(t, &msgs.Rejected{Reason: msgs.CorruptedFrame}, results[0].Reject)
		})
	}
}

// trailingFrame frames a Reset followed by extra bytes.
func trailingFrame(t *testing.T) []byte {
	raw := []byte{0, 0, 0, 0, 0xaa, 0xbb}
	dst := make([]byte, wire.MaxEncodedLen(len(raw)))
	n, err := wire.StuffBytes(dst, raw)
	require.NoError(t, err)
	dst[n] = wire.Terminator
	return dst[:n+1]
}

func TestReassemblerRecover(t *testing.T) {
	frame := trailingFrame(t)

	var strict Reassembler
	results := feedAll(&strict, frame...)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Reject)

	lenient := Reassembler{Recover: true}
	results = feedAll(&lenient, frame...)
	require.Len(t, results, 1)
	require.Nil(t, results[0].Reject)
	require.True(t, results[0].Recovered)
	require.Equal(t, msgs.Reset{}, results[0].Command)

	results = feedAll(&lenient, encodeCommand(t, msgs.CounterQuery{})...)
	require.Len(t, results, 1)
	require.False(t, results[0].Recovered)
}
