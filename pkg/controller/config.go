package controller

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/power"
)

// Modes.
const (
	ModeDuty     = "duty"
	ModeAlwaysOn = "always-on"
)

// Config defines the options of the controller. Every field can be
// overridden from the environment.
type Config struct {
	Mode string `env:"MULTISENSOR_MODE"`
	// StoreURL selects the configuration storage, see nvs.OpenURL.
	StoreURL string `env:"MULTISENSOR_STORE"`
	// MQTTBrokerURL enables telemetry, e.g. mqtt://host:1883/prefix/.
	MQTTBrokerURL string `env:"MULTISENSOR_MQTT_URL"`
	// WebsocketAddr enables the live sample stream in always-on mode.
	WebsocketAddr string `env:"MULTISENSOR_WS_ADDR"`
	// RecordLog appends wire records to this file.
	RecordLog string        `env:"MULTISENSOR_RECORD_LOG"`
	Grace     time.Duration `env:"MULTISENSOR_GRACE"`
	Watchdog  time.Duration `env:"MULTISENSOR_WATCHDOG"`
	Halt      string        `env:"MULTISENSOR_HALT"`
	Simulate  bool          `env:"MULTISENSOR_SIMULATE"`
	DeviceID  string        `env:"MULTISENSOR_DEVICE_ID"`
	// StatusInterval is the period of status reports in always-on mode.
	StatusInterval time.Duration `env:"MULTISENSOR_STATUS_INTERVAL"`
}

var defaultConfig = Config{
	Mode:           ModeDuty,
	StoreURL:       "bolt://multisensor-nvs.db",
	Grace:          100 * time.Millisecond,
	Watchdog:       5 * time.Second,
	Halt:           power.StrategyExec,
	StatusInterval: 10 * time.Second,
}

func init() {
	if err := env.Parse(&defaultConfig); err != nil {
		glog.Warningf("ignoring environment: %v", err)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Mode, "mode", defaultConfig.Mode, "Run mode: duty or always-on.")
	flag.StringVar(&defaultConfig.StoreURL, "store", defaultConfig.StoreURL, "Config storage URL: mem://, bolt://path or redis://host:port/db.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address, empty to disable.")
	flag.StringVar(&defaultConfig.RecordLog, "record-log", defaultConfig.RecordLog, "File receiving binary sample records.")
	flag.DurationVar(&defaultConfig.Grace, "grace", defaultConfig.Grace, "Delay before halting.")
	flag.DurationVar(&defaultConfig.Watchdog, "watchdog", defaultConfig.Watchdog, "Longest active window, 0 to disable.")
	flag.StringVar(&defaultConfig.Halt, "halt", defaultConfig.Halt, "Halt strategy: exec, exit or none.")
	flag.BoolVar(&defaultConfig.Simulate, "simulate", defaultConfig.Simulate, "Use simulated sensors.")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID, defaults to one derived from the machine ID.")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Status report period, 0 to disable.")
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

// Validate checks the option values.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeDuty, ModeAlwaysOn:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if _, err := power.NewHalter(c.Halt); err != nil {
		return err
	}
	if c.Grace < 0 || c.Watchdog < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
