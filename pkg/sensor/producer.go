// Package sensor defines the sample message exchanged by the pipeline and
// the interface implemented by sensor drivers.
package sensor

import (
	"errors"
	"time"
)

var (
	// ErrTimeout indicates a bus transaction did not complete in time.
	ErrTimeout = errors.New("timeout")
	// ErrNack indicates the device did not acknowledge.
	ErrNack = errors.New("no ack")
	// ErrNotInitialized is returned by ReadSample before a successful Init.
	ErrNotInitialized = errors.New("not initialized")
)

// Producer is a sensor driver emitting Messages.
type Producer interface {
	Kind() Kind
	// Init configures the bus or pins. A failure disables the producer for
	// the current cycle only.
	Init() error
	// ReadSample performs a bounded-time read and fills msg.
	ReadSample(msg *Message) error
}

// Clock supplies message timestamps.
type Clock interface {
	Micros() int64
}

// ClockFunc is the func form of Clock.
type ClockFunc func() int64

// Micros implements Clock.
func (f ClockFunc) Micros() int64 {
	return f()
}

var bootTime = time.Now()

// MonotonicClock counts microseconds since process start, the closest host
// equivalent of time since boot. It never goes backwards.
var MonotonicClock Clock = ClockFunc(func() int64 {
	return time.Since(bootTime).Microseconds()
})

type unavailable struct {
	kind Kind
	err  error
}

// Unavailable returns a Producer whose Init always fails with err. It stands
// in for a sensor whose bus or pins could not be acquired.
func Unavailable(kind Kind, err error) Producer {
	return &unavailable{kind: kind, err: err}
}

func (p *unavailable) Kind() Kind {
	return p.kind
}

func (p *unavailable) Init() error {
	return p.err
}

func (p *unavailable) ReadSample(*Message) error {
	return ErrNotInitialized
}
