package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/queue"
	"github.com/robotalks/multisensor/pkg/sensor"
)

// Sink receives every message of a known kind consumed by the Logger.
type Sink interface {
	WriteSample(msg *sensor.Message) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(*sensor.Message) error

// WriteSample implements Sink.
func (f SinkFunc) WriteSample(msg *sensor.Message) error {
	return f(msg)
}

// Format renders msg as a log line. It returns false for unknown kinds.
func Format(msg *sensor.Message) (string, bool) {
	switch msg.Kind {
	case sensor.KindIMU:
		return fmt.Sprintf("[IMU] ts=%d | gx=%.2f gy=%.2f gz=%.2f",
			msg.Timestamp, msg.Data[sensor.SlotGyroX], msg.Data[sensor.SlotGyroY], msg.Data[sensor.SlotGyroZ]), true
	case sensor.KindUltrasonic:
		return fmt.Sprintf("[ULTRA] ts=%d | distance=%.2f cm", msg.Timestamp, msg.Data[sensor.SlotDistance]), true
	}
	return "", false
}

// GlogSink writes formatted lines to the info log.
var GlogSink Sink = SinkFunc(func(msg *sensor.Message) error {
	if line, ok := Format(msg); ok {
		glog.Info(line)
	}
	return nil
})

// Logger consumes the logger queue and dispatches on message kind.
type Logger struct {
	In    *queue.Bounded[sensor.Message]
	Sinks []Sink
	// Drained is notified whenever the queue is observed empty after
	// handling a message.
	Drained *fx.Notifier

	handled atomic.Uint64
	unknown atomic.Uint64
}

// Name implements framework.Named.
func (l *Logger) Name() string {
	return "logger"
}

// Handle dispatches one message to the sinks. Unknown kinds are reported
// and skipped.
func (l *Logger) Handle(msg *sensor.Message) {
	if !msg.Kind.Known() {
		l.unknown.Add(1)
		glog.Warningf("logger: unknown sensor type (%d)", uint32(msg.Kind))
		return
	}
	l.handled.Add(1)
	for _, sink := range l.Sinks {
		if err := sink.WriteSample(msg); err != nil {
			glog.Warningf("logger: sink error: %v", err)
		}
	}
}

// Run implements framework.Runnable.
func (l *Logger) Run(ctx context.Context) error {
	for {
		msg, err := l.In.ReceiveContext(ctx)
		if err != nil {
			return err
		}
		l.Handle(&msg)
		if l.Drained != nil && l.In.Len() == 0 {
			l.Drained.Notify()
		}
	}
}

// Drain handles the items queued when it starts, never blocking.
func (l *Logger) Drain() int {
	n := l.In.Len()
	taken := 0
	for ; taken < n; taken++ {
		msg, ok := l.In.Receive(0)
		if !ok {
			break
		}
		l.Handle(&msg)
	}
	if l.Drained != nil {
		l.Drained.Notify()
	}
	return taken
}

// Handled returns the count of messages passed to sinks.
func (l *Logger) Handled() uint64 {
	return l.handled.Load()
}

// Unknown returns the count of messages with unknown kinds.
func (l *Logger) Unknown() uint64 {
	return l.unknown.Load()
}
