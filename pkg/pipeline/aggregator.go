package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/queue"
	"github.com/robotalks/multisensor/pkg/sensor"
)

// Aggregator is the single consumer of the sensor queue. It forwards
// every message unchanged to the logger queue and drops when the logger
// queue is full.
type Aggregator struct {
	In  *queue.Bounded[sensor.Message]
	Out *queue.Bounded[sensor.Message]

	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

// Name implements framework.Named.
func (a *Aggregator) Name() string {
	return "aggregator"
}

// Forward pushes msg downstream without waiting.
func (a *Aggregator) Forward(msg sensor.Message) bool {
	if !a.Out.TrySend(msg, 0) {
		a.dropped.Add(1)
		glog.Warning("aggregator: logger queue full, dropping message")
		return false
	}
	a.forwarded.Add(1)
	return true
}

// Run implements framework.Runnable.
func (a *Aggregator) Run(ctx context.Context) error {
	for {
		msg, err := a.In.ReceiveContext(ctx)
		if err != nil {
			return err
		}
		a.Forward(msg)
	}
}

// Drain makes one bounded pass over the items queued when it starts,
// never blocking. It returns the number of items taken.
func (a *Aggregator) Drain() int {
	n := a.In.Len()
	taken := 0
	for ; taken < n; taken++ {
		msg, ok := a.In.Receive(0)
		if !ok {
			break
		}
		a.Forward(msg)
	}
	return taken
}

// Forwarded returns the count of forwarded messages.
func (a *Aggregator) Forwarded() uint64 {
	return a.forwarded.Load()
}

// Dropped returns the count of messages dropped on a full logger queue.
func (a *Aggregator) Dropped() uint64 {
	return a.dropped.Load()
}
