package framework

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	lock  sync.Mutex
	calls []string
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) ctl(name string) Controller {
	return ControlFunc(func(cc ControlContext) error {
		r.lock.Lock()
		r.calls = append(r.calls, name)
		r.lock.Unlock()
		select {
		case r.ch <- struct{}{}:
		default:
		}
		return nil
	})
}

func (r *recorder) snapshot() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.calls...)
}

func TestLoopPriorityOrder(t *testing.T) {
	rec := newRecorder()
	loop := NewLoop()
	loop.Interval = time.Hour
	loop.AddController(PrLvPostProc, rec.ctl("post"))
	loop.AddController(PrLvSense, rec.ctl("sense"))
	loop.AddController(PrLvControl, rec.ctl("control"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	loop.TriggerNext()
	for i := 0; i < 3; i++ {
		select {
		case <-rec.ch:
		case <-time.After(time.Second):
			t.Fatal("iteration timeout")
		}
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, []string{"sense", "control", "post"}, rec.snapshot()[:3])
}

func TestLoopRunnableGetsLoopControl(t *testing.T) {
	rec := newRecorder()
	loop := NewLoop()
	loop.Interval = time.Hour
	loop.AddController(PrLvSense, rec.ctl("sense"))
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		ctl := LoopCtlFrom(ctx)
		if ctl == nil {
			return nil
		}
		ctl.SetInterval(10 * time.Millisecond)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	for i := 0; i < 2; i++ {
		select {
		case <-rec.ch:
		case <-time.After(time.Second):
			t.Fatal("interval change not applied")
		}
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestLoopPostRunHooks(t *testing.T) {
	rec := newRecorder()
	loop := NewLoop()
	loop.Interval = time.Hour
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.PostRunAt(PrLvPostProc, rec.ctl("hook"))
		return nil
	}))
	loop.AddController(PrLvPostProc, rec.ctl("post"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)
	loop.TriggerNext()
	for i := 0; i < 2; i++ {
		select {
		case <-rec.ch:
		case <-time.After(time.Second):
			t.Fatal("iteration timeout")
		}
	}
	require.Equal(t, []string{"post", "hook"}, rec.snapshot()[:2])
}

func TestNotifierCoalesces(t *testing.T) {
	n := NewNotifier()
	require.False(t, n.Pending())
	n.Notify()
	n.Notify()
	require.True(t, n.Pending())
	require.False(t, n.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, n.Wait(ctx), context.Canceled)
	n.Notify()
	require.NoError(t, n.Wait(context.Background()))
}
