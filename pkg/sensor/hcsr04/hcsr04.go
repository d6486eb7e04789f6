// Package hcsr04 measures distance with an HC-SR04 style ultrasonic ranger.
package hcsr04

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/kidoman/embd"

	"github.com/robotalks/multisensor/pkg/sensor"
)

// Pin is the subset of embd.DigitalPin used by the driver.
type Pin interface {
	Read() (int, error)
	Write(val int) error
}

var _ Pin = embd.DigitalPin(nil)

const (
	// EchoTimeout bounds each wait on the echo line, roughly 5 m.
	EchoTimeout = 30 * time.Millisecond
	// TriggerPulse is the width of the trigger pulse.
	TriggerPulse = 10 * time.Microsecond

	// cm per microsecond of round trip, at 343 m/s.
	soundCmPerUs = 0.0343
)

// Device is an ultrasonic producer.
type Device struct {
	Trig  Pin
	Echo  Pin
	Clock sensor.Clock
	// Delay blocks for the trigger pulse width.
	Delay func(time.Duration)

	ready bool
}

// New creates a Device on the trigger and echo pins.
func New(trig, echo Pin) *Device {
	return &Device{Trig: trig, Echo: echo, Clock: sensor.MonotonicClock, Delay: time.Sleep}
}

// Kind implements sensor.Producer.
func (d *Device) Kind() sensor.Kind {
	return sensor.KindUltrasonic
}

// Init drives the trigger line idle low.
func (d *Device) Init() error {
	d.ready = false
	if err := d.Trig.Write(embd.Low); err != nil {
		return fmt.Errorf("hcsr04 trigger idle: %w", err)
	}
	d.ready = true
	glog.Info("hcsr04: initialized")
	return nil
}

// ReadSample implements sensor.Producer.
func (d *Device) ReadSample(msg *sensor.Message) error {
	if !d.ready {
		return sensor.ErrNotInitialized
	}
	msg.Kind = sensor.KindUltrasonic
	msg.Timestamp = d.Clock.Micros()
	if err := d.Trig.Write(embd.High); err != nil {
		return err
	}
	d.Delay(TriggerPulse)
	if err := d.Trig.Write(embd.Low); err != nil {
		return err
	}

	if _, err := d.waitLevel(embd.High); err != nil {
		return fmt.Errorf("hcsr04 echo start: %w", err)
	}
	width, err := d.waitLevel(embd.Low)
	if err != nil {
		return fmt.Errorf("hcsr04 echo pulse: %w", err)
	}
	msg.Data = [4]float32{float32(width) / 2 * soundCmPerUs}
	return nil
}

// waitLevel polls the echo line until it reads level and returns the
// elapsed microseconds.
func (d *Device) waitLevel(level int) (int64, error) {
	start := d.Clock.Micros()
	limit := EchoTimeout.Microseconds()
	for {
		v, err := d.Echo.Read()
		if err != nil {
			return 0, err
		}
		elapsed := d.Clock.Micros() - start
		if v == level {
			return elapsed, nil
		}
		if elapsed > limit {
			return elapsed, sensor.ErrTimeout
		}
	}
}
