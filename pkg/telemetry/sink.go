package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robotalks/multisensor/pkg/sensor"
)

// MQTTSink publishes every sample to its per-kind topic.
type MQTTSink struct {
	Publisher Publisher
	Topics    Topics
	// Timeout waits for the publish to complete when positive.
	Timeout time.Duration

	seq atomic.Uint64
}

// NewMQTTSink creates a MQTTSink.
func NewMQTTSink(pub Publisher, device string) *MQTTSink {
	return &MQTTSink{Publisher: pub, Topics: Topics{Device: device}}
}

// WriteSample implements pipeline.Sink.
func (s *MQTTSink) WriteSample(msg *sensor.Message) error {
	data, err := EncodeSample(SampleFrom(s.Topics.Device, s.seq.Add(1), msg))
	if err != nil {
		return err
	}
	token := s.Publisher.Pub(s.Topics.Sample(msg.Kind), data)
	if s.Timeout <= 0 {
		return nil
	}
	if !token.WaitTimeout(s.Timeout) {
		return fmt.Errorf("publish %s: timeout", s.Topics.Sample(msg.Kind))
	}
	return token.Error()
}

// Published returns the number of samples handed to the publisher.
func (s *MQTTSink) Published() uint64 {
	return s.seq.Load()
}
