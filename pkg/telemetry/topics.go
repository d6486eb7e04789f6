package telemetry

import (
	"strings"

	"github.com/robotalks/multisensor/pkg/sensor"
)

// Topics builds the per-device topic names.
type Topics struct {
	Device string
}

// Sample is the topic samples of kind are published to.
func (t Topics) Sample(kind sensor.Kind) string {
	return t.Device + "/samples/" + strings.ToLower(kind.String())
}

// Samples is the wildcard pattern of all sample topics of the device.
func (t Topics) Samples() string {
	return t.Device + "/samples/+"
}

// AllSamples is the pattern matching sample topics of every device.
func AllSamples() string {
	return "+/samples/+"
}

// ConfigSet is where remote configuration updates are received.
func (t Topics) ConfigSet() string {
	return t.Device + "/config/set"
}

// Status is where the device reports its state.
func (t Topics) Status() string {
	return t.Device + "/status"
}

// DeviceOf extracts the device from a topic built by Topics.
func DeviceOf(topic string) string {
	if i := strings.IndexByte(topic, '/'); i >= 0 {
		return topic[:i]
	}
	return topic
}
