package nvs

import (
	"sync"

	"github.com/golang/glog"
)

// PowerLoss wraps a Partition and stops applying writes after a number of
// mutations, as if power was cut in the middle of a sequence of writes.
// Reads keep working so the state left behind can be inspected.
type PowerLoss struct {
	Partition

	lock      sync.Mutex
	remaining int
	lost      bool
}

// NewPowerLoss wraps p. Negative budget never cuts power.
func NewPowerLoss(p Partition, budget int) *PowerLoss {
	return &PowerLoss{Partition: p, remaining: budget}
}

// Arm sets the number of mutations still applied before power is cut.
func (p *PowerLoss) Arm(budget int) {
	p.lock.Lock()
	p.remaining, p.lost = budget, false
	p.lock.Unlock()
}

// Restore powers the partition back on with no further cut.
func (p *PowerLoss) Restore() {
	p.Arm(-1)
}

// Lost returns true once power has been cut.
func (p *PowerLoss) Lost() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.lost
}

// Open implements Partition.
func (p *PowerLoss) Open(namespace string) (Handle, error) {
	h, err := p.Partition.Open(namespace)
	if err != nil {
		return nil, err
	}
	return &powerLossHandle{Handle: h, pl: p}, nil
}

func (p *PowerLoss) consume() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.lost {
		return false
	}
	if p.remaining == 0 {
		p.lost = true
		glog.Warning("nvs: simulated power loss")
		return false
	}
	if p.remaining > 0 {
		p.remaining--
	}
	return true
}

type powerLossHandle struct {
	Handle
	pl *PowerLoss
}

func (h *powerLossHandle) mutate(key string, fn func() error) error {
	if !h.pl.consume() {
		return &KeyError{Namespace: h.Namespace(), Key: key, Err: ErrPowerLoss}
	}
	return fn()
}

func (h *powerLossHandle) SetU8(key string, val uint8) error {
	return h.mutate(key, func() error { return h.Handle.SetU8(key, val) })
}

func (h *powerLossHandle) SetU32(key string, val uint32) error {
	return h.mutate(key, func() error { return h.Handle.SetU32(key, val) })
}

func (h *powerLossHandle) EraseKey(key string) error {
	return h.mutate(key, func() error { return h.Handle.EraseKey(key) })
}

func (h *powerLossHandle) Commit() error {
	if h.pl.Lost() {
		return &KeyError{Namespace: h.Namespace(), Key: "*", Err: ErrPowerLoss}
	}
	return h.Handle.Commit()
}
