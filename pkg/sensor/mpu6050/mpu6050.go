// Package mpu6050 reads angular rate from an MPU-6050 over I2C.
package mpu6050

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/kidoman/embd"

	"github.com/robotalks/multisensor/pkg/sensor"
)

// Registers.
const (
	RegGyroXOutH byte = 0x43
	RegPwrMgmt1  byte = 0x6b
	RegWhoAmI    byte = 0x75

	sleepBit byte = 0x40
)

// DefaultAddress is the address with AD0 low.
const DefaultAddress byte = 0x68

// GyroScale converts raw counts to deg/s at the power-on ±250 deg/s range.
const GyroScale = 131.0

// Bus is the subset of embd.I2CBus used by the driver.
type Bus interface {
	ReadByte(addr byte) (byte, error)
	ReadByteFromReg(addr, reg byte) (byte, error)
	ReadFromReg(addr, reg byte, value []byte) error
	WriteByteToReg(addr, reg, value byte) error
}

var _ Bus = embd.I2CBus(nil)

// Device is an MPU-6050 producer.
type Device struct {
	Bus     Bus
	Address byte
	Clock   sensor.Clock

	ready bool
}

// New creates a Device on bus at addr.
func New(bus Bus, addr byte) *Device {
	return &Device{Bus: bus, Address: addr, Clock: sensor.MonotonicClock}
}

// Kind implements sensor.Producer.
func (d *Device) Kind() sensor.Kind {
	return sensor.KindIMU
}

// Init wakes the device by clearing the sleep bit of PWR_MGMT_1.
func (d *Device) Init() error {
	d.ready = false
	val, err := d.Bus.ReadByteFromReg(d.Address, RegPwrMgmt1)
	if err != nil {
		return fmt.Errorf("mpu6050 read PWR_MGMT_1: %w", err)
	}
	if err = d.Bus.WriteByteToReg(d.Address, RegPwrMgmt1, val&^sleepBit); err != nil {
		return fmt.Errorf("mpu6050 wake: %w", err)
	}
	d.ready = true
	glog.Infof("mpu6050: initialized at 0x%02x", d.Address)
	return nil
}

// ReadSample implements sensor.Producer. The timestamp is taken before the
// burst read.
func (d *Device) ReadSample(msg *sensor.Message) error {
	if !d.ready {
		return sensor.ErrNotInitialized
	}
	msg.Kind = sensor.KindIMU
	msg.Timestamp = d.Clock.Micros()
	var buf [6]byte
	if err := d.Bus.ReadFromReg(d.Address, RegGyroXOutH, buf[:]); err != nil {
		return fmt.Errorf("mpu6050 read gyro: %w", err)
	}
	for i := 0; i < 3; i++ {
		raw := int16(uint16(buf[i*2])<<8 | uint16(buf[i*2+1]))
		msg.Data[i] = float32(raw) / GyroScale
	}
	msg.Data[3] = 0
	return nil
}

// Scan probes every 7-bit address and returns the responders.
func Scan(bus Bus) []byte {
	var found []byte
	for addr := byte(0x01); addr < 0x7f; addr++ {
		if _, err := bus.ReadByte(addr); err == nil {
			glog.Infof("i2c: device found at 0x%02x", addr)
			found = append(found, addr)
		}
	}
	return found
}
