// Package simulated provides host-side producers generating plausible
// samples without hardware.
package simulated

import (
	"math"
	"math/rand"
	"sync"

	"github.com/robotalks/multisensor/pkg/sensor"
)

// Producer generates samples from a waveform.
type Producer struct {
	SensorKind sensor.Kind
	Clock      sensor.Clock
	// Wave computes the data slots for a timestamp in microseconds.
	Wave func(ts int64) [4]float32
	// FailEvery makes every n-th read fail with sensor.ErrTimeout, 0 never.
	FailEvery int
	// InitErr is returned from Init when set.
	InitErr error

	lock  sync.Mutex
	ready bool
	reads int
}

// IMU creates a simulated IMU rotating slowly about all axes.
func IMU(seed int64) *Producer {
	rnd := rand.New(rand.NewSource(seed))
	return &Producer{
		SensorKind: sensor.KindIMU,
		Clock:      sensor.MonotonicClock,
		Wave: func(ts int64) [4]float32 {
			sec := float64(ts) / 1e6
			noise := func() float32 { return float32(rnd.NormFloat64() * 0.05) }
			return [4]float32{
				float32(10*math.Sin(sec)) + noise(),
				float32(5*math.Cos(sec/2)) + noise(),
				noise(),
				0,
			}
		},
	}
}

// Ultrasonic creates a simulated ranger seeing a target moving between
// 20 cm and 200 cm.
func Ultrasonic(seed int64) *Producer {
	rnd := rand.New(rand.NewSource(seed))
	return &Producer{
		SensorKind: sensor.KindUltrasonic,
		Clock:      sensor.MonotonicClock,
		Wave: func(ts int64) [4]float32 {
			sec := float64(ts) / 1e6
			return [4]float32{float32(110+90*math.Sin(sec/5) + rnd.NormFloat64()*0.5)}
		},
	}
}

// Kind implements sensor.Producer.
func (p *Producer) Kind() sensor.Kind {
	return p.SensorKind
}

// Init implements sensor.Producer.
func (p *Producer) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ready = p.InitErr == nil
	return p.InitErr
}

// ReadSample implements sensor.Producer.
func (p *Producer) ReadSample(msg *sensor.Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.ready {
		return sensor.ErrNotInitialized
	}
	p.reads++
	if p.FailEvery > 0 && p.reads%p.FailEvery == 0 {
		return sensor.ErrTimeout
	}
	msg.Kind = p.SensorKind
	msg.Timestamp = p.Clock.Micros()
	msg.Data = p.Wave(msg.Timestamp)
	return nil
}
