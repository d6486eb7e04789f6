package framework

import "context"

// Notifier is a single-slot wake-up signal. Notify never blocks and never
// allocates, so it may be called from driver callbacks; pending
// notifications coalesce into one.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify raises the signal if it is not already pending.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C returns the channel receiving the signal.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// Pending reports and clears a raised signal without waiting.
func (n *Notifier) Pending() bool {
	select {
	case <-n.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the signal is raised or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	select {
	case <-n.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
