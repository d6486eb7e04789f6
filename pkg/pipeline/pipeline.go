// Package pipeline moves samples from producers through the sensor queue,
// the aggregator and the logger queue to the logger and its sinks.
package pipeline

import (
	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/queue"
	"github.com/robotalks/multisensor/pkg/sensor"
)

// Queue capacities.
const (
	SensorQueueLen = 12
	LoggerQueueLen = 50
)

// Pipeline wires the queues, aggregator and logger together.
type Pipeline struct {
	SensorQueue *queue.Bounded[sensor.Message]
	LoggerQueue *queue.Bounded[sensor.Message]
	Aggregator  *Aggregator
	Logger      *Logger
	Samplers    []*Sampler
}

// New creates a Pipeline with the standard queue capacities.
func New(sinks ...Sink) *Pipeline {
	return NewWithCapacity(SensorQueueLen, LoggerQueueLen, sinks...)
}

// NewWithCapacity creates a Pipeline with explicit queue capacities.
func NewWithCapacity(sensorCap, loggerCap int, sinks ...Sink) *Pipeline {
	sq := queue.New[sensor.Message]("sensor", sensorCap)
	lq := queue.New[sensor.Message]("logger", loggerCap)
	return &Pipeline{
		SensorQueue: sq,
		LoggerQueue: lq,
		Aggregator:  &Aggregator{In: sq, Out: lq},
		Logger:      &Logger{In: lq, Sinks: sinks, Drained: fx.NewNotifier()},
	}
}

// AddSampler attaches a producer feeding the sensor queue.
func (p *Pipeline) AddSampler(prod sensor.Producer) *Sampler {
	s := NewSampler(prod, p.SensorQueue)
	p.Samplers = append(p.Samplers, s)
	return s
}

// Drain runs one bounded pass of the aggregator followed by the logger.
func (p *Pipeline) Drain() {
	p.Aggregator.Drain()
	p.Logger.Drain()
}

// AddToLoop implements framework.LoopAdder: samplers run as periodic
// controllers, the aggregator and logger as tasks.
func (p *Pipeline) AddToLoop(loop *fx.Loop) {
	for _, s := range p.Samplers {
		loop.AddController(fx.PrLvSense, s)
	}
	loop.AddRunnable(p.Aggregator, p.Logger)
}
