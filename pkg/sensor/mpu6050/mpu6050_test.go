package mpu6050

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/multisensor/pkg/sensor"
)

type fakeBus struct {
	regs    map[byte][]byte
	present map[byte]bool
	err     error
	writes  map[byte]byte
}

func (b *fakeBus) ReadByte(addr byte) (byte, error) {
	if b.present[addr] {
		return 0, nil
	}
	return 0, sensor.ErrNack
}

func (b *fakeBus) ReadByteFromReg(addr, reg byte) (byte, error) {
	if b.err != nil {
		return 0, b.err
	}
	return b.regs[reg][0], nil
}

func (b *fakeBus) ReadFromReg(addr, reg byte, value []byte) error {
	if b.err != nil {
		return b.err
	}
	copy(value, b.regs[reg])
	return nil
}

func (b *fakeBus) WriteByteToReg(addr, reg, value byte) error {
	if b.err != nil {
		return b.err
	}
	if b.writes == nil {
		b.writes = make(map[byte]byte)
	}
	b.writes[reg] = value
	return nil
}

func TestInitClearsSleepBit(t *testing.T) {
	bus := &fakeBus{regs: map[byte][]byte{RegPwrMgmt1: {0x41}}}
	dev := New(bus, DefaultAddress)
	require.NoError(t, dev.Init())
	require.Equal(t, byte(0x01), bus.writes[RegPwrMgmt1])
}

func TestReadSample(t *testing.T) {
	bus := &fakeBus{regs: map[byte][]byte{
		RegPwrMgmt1:  {0x40},
		RegGyroXOutH: {0x00, 131, 0xff, 0x7d, 0x01, 0x06},
	}}
	dev := New(bus, DefaultAddress)
	dev.Clock = sensor.ClockFunc(func() int64 { return 1234 })

	var msg sensor.Message
	require.ErrorIs(t, dev.ReadSample(&msg), sensor.ErrNotInitialized)

	require.NoError(t, dev.Init())
	msg.Data[3] = 9
	require.NoError(t, dev.ReadSample(&msg))
	require.Equal(t, sensor.KindIMU, msg.Kind)
	require.EqualValues(t, 1234, msg.Timestamp)
	require.InDelta(t, 1.0, msg.Data[0], 1e-6)
	require.InDelta(t, -1.0, msg.Data[1], 1e-6)
	require.InDelta(t, 2.0, msg.Data[2], 1e-6)
	require.Zero(t, msg.Data[3])
}

func TestInitFailure(t *testing.T) {
	bus := &fakeBus{err: errors.New("bus down")}
	dev := New(bus, DefaultAddress)
	require.Error(t, dev.Init())
	var msg sensor.Message
	require.ErrorIs(t, dev.ReadSample(&msg), sensor.ErrNotInitialized)
}

func TestScan(t *testing.T) {
	bus := &fakeBus{present: map[byte]bool{0x68: true, 0x3c: true, 0x00: true}}
	require.Equal(t, []byte{0x3c, 0x68}, Scan(bus))
}
