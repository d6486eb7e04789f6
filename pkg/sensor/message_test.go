package sensor

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageWireFormat(t *testing.T) {
	testCases := []struct {
		name   string
		msg    Message
		expect []byte
	}{
		{
			"imu",
			Message{Kind: KindIMU, Timestamp: 0x0102030405060708, Data: [4]float32{1, -2, 0.5, 0}},
			[]byte{
				0, 0, 0, 0,
				8, 7, 6, 5, 4, 3, 2, 1,
				0x00, 0x00, 0x80, 0x3f,
				0x00, 0x00, 0x00, 0xc0,
				0x00, 0x00, 0x00, 0x3f,
				0, 0, 0, 0,
			},
		},
		{
			"ultrasonic",
			Message{Kind: KindUltrasonic, Timestamp: -1, Data: [4]float32{2}},
			[]byte{
				1, 0, 0, 0,
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
				0x00, 0x00, 0x00, 0x40,
				0, 0, 0, 0,
				0, 0, 0, 0,
				0, 0, 0, 0,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.msg.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, tc.expect, b)
			require.Len(t, b, WireSize)

			var buf bytes.Buffer
			n, err := tc.msg.WriteTo(&buf)
			require.NoError(t, err)
			require.EqualValues(t, WireSize, n)
			require.Equal(t, tc.expect, buf.Bytes())

			var decoded Message
			require.NoError(t, decoded.UnmarshalBinary(tc.expect))
			require.Equal(t, tc.msg, decoded)
		})
	}
}

func TestMessageUnknownKindPreserved(t *testing.T) {
	in := Message{Kind: Kind(7), Timestamp: 42}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	var out Message
	require.NoError(t, out.UnmarshalBinary(b))
	require.Equal(t, Kind(7), out.Kind)
	require.False(t, out.Kind.Known())
	require.Equal(t, "KIND(7)", out.Kind.String())
}

func TestMessageShortBuffer(t *testing.T) {
	var m Message
	require.Error(t, m.UnmarshalBinary(make([]byte, WireSize-1)))
}

func TestMessageReadFromStream(t *testing.T) {
	var buf bytes.Buffer
	msgs := []Message{
		{Kind: KindIMU, Timestamp: 1, Data: [4]float32{1, 2, 3}},
		{Kind: KindUltrasonic, Timestamp: 2, Data: [4]float32{12.5}},
	}
	for i := range msgs {
		_, err := msgs[i].WriteTo(&buf)
		require.NoError(t, err)
	}
	for _, expect := range msgs {
		var m Message
		n, err := m.ReadFrom(&buf)
		require.NoError(t, err)
		require.EqualValues(t, WireSize, n)
		require.Equal(t, expect, m)
	}
	var m Message
	_, err := m.ReadFrom(&buf)
	require.Error(t, err)
}

func TestMonotonicClock(t *testing.T) {
	a := MonotonicClock.Micros()
	time.Sleep(time.Millisecond)
	b := MonotonicClock.Micros()
	require.True(t, b > a)
}
