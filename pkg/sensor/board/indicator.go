package board

import (
	"github.com/kidoman/embd"
)

// Indicator is a binary status output.
type Indicator interface {
	Set(on bool) error
}

// IndicatorFunc is the func form of Indicator.
type IndicatorFunc func(bool) error

// Set implements Indicator.
func (f IndicatorFunc) Set(on bool) error {
	return f(on)
}

// NoIndicator ignores all updates.
var NoIndicator Indicator = IndicatorFunc(func(bool) error { return nil })

// OutputPin is the writable part of embd.DigitalPin.
type OutputPin interface {
	Write(val int) error
}

// PinIndicator drives a GPIO, high when on.
type PinIndicator struct {
	Pin OutputPin
}

// Set implements Indicator.
func (i *PinIndicator) Set(on bool) error {
	if on {
		return i.Pin.Write(embd.High)
	}
	return i.Pin.Write(embd.Low)
}
