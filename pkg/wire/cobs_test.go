package wire

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func stuffTestInput(n int, fill func(i int) byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill(i)
	}
	return b
}

func TestStuffBytes(t *testing.T) {
	testCases := []struct {
		in  []byte
		out []byte
	}{
		{[]byte{}, []byte{0x01}},
		{[]byte{0x00}, []byte{0x01, 0x01}},
		{[]byte{0x00, 0x00}, []byte{0x01, 0x01, 0x01}},
		{[]byte{0x11, 0x22, 0x00, 0x33}, []byte{0x03, 0x11, 0x22, 0x02, 0x33}},
		{[]byte{0x11, 0x22, 0x33, 0x44}, []byte{0x05, 0x11, 0x22, 0x33, 0x44}},
		{[]byte{0x11, 0x00, 0x00, 0x00}, []byte{0x02, 0x11, 0x01, 0x01, 0x01}},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("% x", tc.in), func(t *testing.T) {
			dst := make([]byte, MaxEncodedLen(len(tc.in)))
			n, err := StuffBytes(dst, tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.out, dst[:n])

			n, err = UnstuffInPlace(dst[:n])
			require.NoError(t, err)
			require.Equal(t, tc.in, dst[:n])
		})
	}
}

func TestStuffBytesLongRuns(t *testing.T) {
	inputs := map[string][]byte{
		"254 non-zero":  stuffTestInput(254, func(i int) byte { return byte(i%255 + 1) }),
		"255 non-zero":  stuffTestInput(255, func(i int) byte { return byte(i%255 + 1) }),
		"600 non-zero":  stuffTestInput(600, func(i int) byte { return byte(i%255 + 1) }),
		"600 all zeros": make([]byte, 600),
		"mixed":         stuffTestInput(700, func(i int) byte { return byte(i % 7) }),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			dst := make([]byte, MaxEncodedLen(len(in)))
			n, err := StuffBytes(dst, in)
			require.NoError(t, err)
			require.LessOrEqual(t, n+1, MaxEncodedLen(len(in)))
			require.Equal(t, -1, bytes.IndexByte(dst[:n], Terminator))

			framed := append(append([]byte{}, dst[:n]...), Terminator)
			n, err = UnstuffInPlace(framed)
			require.NoError(t, err)
			require.Equal(t, in, framed[:n])
		})
	}
}

func TestStuffBytesBufferTooSmall(t *testing.T) {
	in := []byte{0x11, 0x22, 0x00, 0x33}
	for size := 0; size < 5; size++ {
		_, err := StuffBytes(make([]byte, size), in)
		require.Equalf(t, ErrBufferTooSmall, err, "size %d", size)
	}
}

func TestUnstuffInvalid(t *testing.T) {
	testCases := map[string][]byte{
		"embedded zero":   {0x03, 0x11, 0x00, 0x00},
		"zero code":       {0x00, 0x11, 0x00},
		"overrun":         {0x05, 0x11, 0x22, 0x00},
		"two terminators": {0x01, 0x00, 0x00},
	}
	for name, in := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := UnstuffInPlace(in)
			require.ErrorIs(t, err, ErrInvalidStuffing)
			require.ErrorIs(t, err, ErrCorrupted)
		})
	}
}

func TestUnstuffEmpty(t *testing.T) {
	n, err := UnstuffInPlace(nil)
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = UnstuffInPlace([]byte{Terminator})
	require.NoError(t, err)
	require.Zero(t, n)
}
