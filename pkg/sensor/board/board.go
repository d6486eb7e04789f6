// Package board acquires the host I2C bus and GPIO pins through embd and
// builds the hardware producers.
package board

import (
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/kidoman/embd"
	// register all supported hosts.
	_ "github.com/kidoman/embd/host/all"

	"github.com/robotalks/multisensor/pkg/sensor"
	"github.com/robotalks/multisensor/pkg/sensor/hcsr04"
	"github.com/robotalks/multisensor/pkg/sensor/mpu6050"
)

// Config defines the wiring of the sensors.
type Config struct {
	I2CBus     int
	IMUAddress int
	TrigPin    int
	EchoPin    int
	// LEDPin is the status LED, negative to disable.
	LEDPin int
}

var defaultConfig = Config{
	I2CBus:     1,
	IMUAddress: int(mpu6050.DefaultAddress),
	TrigPin:    16,
	EchoPin:    17,
	LEDPin:     4,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.I2CBus, "i2c-bus", defaultConfig.I2CBus, "I2C bus number of the IMU.")
	flag.IntVar(&defaultConfig.IMUAddress, "imu-addr", defaultConfig.IMUAddress, "I2C address of the IMU.")
	flag.IntVar(&defaultConfig.TrigPin, "trig-pin", defaultConfig.TrigPin, "GPIO of ultrasonic trigger.")
	flag.IntVar(&defaultConfig.EchoPin, "echo-pin", defaultConfig.EchoPin, "GPIO of ultrasonic echo.")
	flag.IntVar(&defaultConfig.LEDPin, "led-pin", defaultConfig.LEDPin, "GPIO of status LED, -1 to disable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Board owns the embd resources.
type Board struct {
	Config *Config

	i2c     embd.I2CBus
	gpioErr error
	pins    []embd.DigitalPin
}

// Open initializes embd. Errors of either subsystem are kept and surface
// through the producers depending on it.
func (c *Config) Open() *Board {
	b := &Board{Config: c}
	if err := embd.InitI2C(); err != nil {
		glog.Warningf("board: init I2C: %v", err)
	} else {
		b.i2c = embd.NewI2CBus(byte(c.I2CBus))
	}
	if err := embd.InitGPIO(); err != nil {
		glog.Warningf("board: init GPIO: %v", err)
		b.gpioErr = err
	}
	return b
}

// I2C returns the bus or nil if I2C is unavailable.
func (b *Board) I2C() embd.I2CBus {
	return b.i2c
}

// IMU builds the IMU producer.
func (b *Board) IMU() sensor.Producer {
	if b.i2c == nil {
		return sensor.Unavailable(sensor.KindIMU, fmt.Errorf("I2C bus %d unavailable", b.Config.I2CBus))
	}
	return mpu6050.New(b.i2c, byte(b.Config.IMUAddress))
}

// Ultrasonic builds the ultrasonic producer.
func (b *Board) Ultrasonic() sensor.Producer {
	trig, err := b.pin(b.Config.TrigPin, embd.Out)
	if err != nil {
		return sensor.Unavailable(sensor.KindUltrasonic, err)
	}
	echo, err := b.pin(b.Config.EchoPin, embd.In)
	if err != nil {
		return sensor.Unavailable(sensor.KindUltrasonic, err)
	}
	return hcsr04.New(trig, echo)
}

// Indicator returns the status LED, or a no-op when disabled or missing.
func (b *Board) Indicator() Indicator {
	if b.Config.LEDPin < 0 {
		return NoIndicator
	}
	pin, err := b.pin(b.Config.LEDPin, embd.Out)
	if err != nil {
		glog.Warningf("board: LED: %v", err)
		return NoIndicator
	}
	return &PinIndicator{Pin: pin}
}

// Close releases pins and embd subsystems.
func (b *Board) Close() error {
	for _, pin := range b.pins {
		pin.Close()
	}
	b.pins = nil
	if b.i2c != nil {
		b.i2c.Close()
		embd.CloseI2C()
	}
	if b.gpioErr == nil {
		return embd.CloseGPIO()
	}
	return nil
}

func (b *Board) pin(n int, dir embd.Direction) (embd.DigitalPin, error) {
	if b.gpioErr != nil {
		return nil, b.gpioErr
	}
	pin, err := embd.NewDigitalPin(n)
	if err != nil {
		return nil, fmt.Errorf("GPIO %d: %w", n, err)
	}
	if err = pin.SetDirection(dir); err != nil {
		pin.Close()
		return nil, fmt.Errorf("GPIO %d direction: %w", n, err)
	}
	b.pins = append(b.pins, pin)
	return pin, nil
}
