package simulated

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/multisensor/pkg/sensor"
)

func TestSimulatedIMU(t *testing.T) {
	p := IMU(1)
	var msg sensor.Message
	require.ErrorIs(t, p.ReadSample(&msg), sensor.ErrNotInitialized)
	require.NoError(t, p.Init())
	require.NoError(t, p.ReadSample(&msg))
	require.Equal(t, sensor.KindIMU, msg.Kind)
	require.Zero(t, msg.Data[3])
}

func TestSimulatedUltrasonicRange(t *testing.T) {
	p := Ultrasonic(1)
	var ts int64
	p.Clock = sensor.ClockFunc(func() int64 { ts += 250000; return ts })
	require.NoError(t, p.Init())
	for i := 0; i < 100; i++ {
		var msg sensor.Message
		require.NoError(t, p.ReadSample(&msg))
		require.Equal(t, sensor.KindUltrasonic, msg.Kind)
		require.True(t, msg.Data[0] > 15 && msg.Data[0] < 205, "distance %v", msg.Data[0])
	}
}

func TestSimulatedFailures(t *testing.T) {
	p := IMU(1)
	p.FailEvery = 3
	require.NoError(t, p.Init())
	var msg sensor.Message
	require.NoError(t, p.ReadSample(&msg))
	require.NoError(t, p.ReadSample(&msg))
	require.ErrorIs(t, p.ReadSample(&msg), sensor.ErrTimeout)

	p.InitErr = errors.New("no device")
	require.Error(t, p.Init())
	require.ErrorIs(t, p.ReadSample(&msg), sensor.ErrNotInitialized)
}
