package pipeline

import (
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/queue"
	"github.com/robotalks/multisensor/pkg/sensor"
)

// ProducerStats counts the outcome of samples taken by a Sampler.
type ProducerStats struct {
	Produced uint64
	Dropped  uint64
	Failed   uint64
}

// Sampler reads one Producer and pushes into the sensor queue without
// waiting.
type Sampler struct {
	Producer sensor.Producer
	Out      *queue.Bounded[sensor.Message]
	// Enabled gates Control, nil means always enabled.
	Enabled func() bool

	produced atomic.Uint64
	dropped  atomic.Uint64
	failed   atomic.Uint64
}

// NewSampler creates a Sampler.
func NewSampler(p sensor.Producer, out *queue.Bounded[sensor.Message]) *Sampler {
	return &Sampler{Producer: p, Out: out}
}

// Name implements framework.Named.
func (s *Sampler) Name() string {
	return "sampler-" + s.Producer.Kind().String()
}

// Sample takes one reading and enqueues it. It returns true when the
// message was accepted by the queue. Read failures and full queues are
// logged and counted, never retried.
func (s *Sampler) Sample() bool {
	var msg sensor.Message
	if err := s.Producer.ReadSample(&msg); err != nil {
		s.failed.Add(1)
		glog.Warningf("%s: failed to read: %v", s.Name(), err)
		return false
	}
	if !s.Out.TrySend(msg, 0) {
		s.dropped.Add(1)
		glog.Warningf("%s: queue full, dropping %s sample", s.Name(), msg.Kind)
		return false
	}
	s.produced.Add(1)
	return true
}

// Control implements framework.Controller, sampling once per loop
// iteration while enabled.
func (s *Sampler) Control(fx.ControlContext) error {
	if s.Enabled == nil || s.Enabled() {
		s.Sample()
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Sampler) Stats() ProducerStats {
	return ProducerStats{
		Produced: s.produced.Load(),
		Dropped:  s.dropped.Load(),
		Failed:   s.failed.Load(),
	}
}
