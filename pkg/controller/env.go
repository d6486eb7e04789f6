package controller

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/appconfig"
	devenv "github.com/robotalks/multisensor/pkg/env"
	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/nvs"
	"github.com/robotalks/multisensor/pkg/pipeline"
	"github.com/robotalks/multisensor/pkg/power"
	"github.com/robotalks/multisensor/pkg/sensor"
	"github.com/robotalks/multisensor/pkg/sensor/board"
	"github.com/robotalks/multisensor/pkg/sensor/simulated"
	"github.com/robotalks/multisensor/pkg/telemetry"
)

// Env holds everything a controller is assembled from.
type Env struct {
	Config    *Config
	Device    string
	Retained  power.Retained
	Partition nvs.Partition
	Store     *appconfig.Store
	Producers []sensor.Producer
	Indicator board.Indicator
	Pipeline  *pipeline.Pipeline
	Queue     *telemetry.Queue
	Hub       *telemetry.WebsocketHub

	closers []io.Closer
}

// NewEnv creates Env from config. The board configuration is used unless
// the config asks for simulated sensors.
func (c *Config) NewEnv(boardConf *board.Config) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e := &Env{
		Config:    c,
		Device:    c.DeviceID,
		Retained:  power.LoadRetained().Boot(),
		Indicator: board.NoIndicator,
	}
	if e.Device == "" {
		e.Device = devenv.DeviceID()
	}

	part, err := nvs.OpenURL(c.StoreURL)
	if err != nil {
		return nil, err
	}
	e.Partition = part
	e.closers = append(e.closers, part)
	e.Store = appconfig.NewStore(part)

	if c.Simulate {
		seed := time.Now().UnixNano()
		e.Producers = []sensor.Producer{simulated.IMU(seed), simulated.Ultrasonic(seed + 1)}
	} else {
		b := boardConf.Open()
		e.closers = append(e.closers, b)
		e.Producers = []sensor.Producer{b.IMU(), b.Ultrasonic()}
		e.Indicator = b.Indicator()
	}

	sinks := []pipeline.Sink{pipeline.GlogSink}
	if c.RecordLog != "" {
		rl, err := telemetry.CreateRecordLog(c.RecordLog)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("record log: %w", err)
		}
		e.closers = append(e.closers, rl)
		sinks = append(sinks, rl)
	}
	if c.MQTTBrokerURL != "" {
		q, err := telemetry.NewQueueFromURL(c.MQTTBrokerURL, "multisensor-"+e.Device)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("create MQTT queue error: %v", err)
		}
		if err = q.Connect(5 * time.Second); err != nil {
			// telemetry is optional: keep sampling, the client reconnects.
			glog.Warningf("mqtt: %v", err)
		}
		e.Queue = q
		e.closers = append(e.closers, q)
		sink := telemetry.NewMQTTSink(q, e.Device)
		if c.Mode == ModeDuty {
			sink.Timeout = time.Second
		}
		sinks = append(sinks, sink)
	}
	if c.WebsocketAddr != "" && c.Mode == ModeAlwaysOn {
		e.Hub = telemetry.NewWebsocketHub(c.WebsocketAddr, e.Device)
		sinks = append(sinks, e.Hub)
	}
	e.Pipeline = pipeline.New(sinks...)
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(boardConf *board.Config) *Env {
	e, err := c.NewEnv(boardConf)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// Close releases resources in reverse order of creation.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs.Add(e.closers[i].Close())
	}
	e.closers = nil
	return errs.Aggregate()
}

// NewDutyCycle assembles the duty-cycle controller.
func (e *Env) NewDutyCycle() *DutyCycle {
	halter, _ := power.NewHalter(e.Config.Halt)
	return &DutyCycle{
		Store:     e.Store,
		Producers: e.Producers,
		Pipeline:  e.Pipeline,
		Halter:    halter,
		Indicator: e.Indicator,
		Retained:  e.Retained,
		Grace:     e.Config.Grace,
		Watchdog:  e.Config.Watchdog,
		BeforeHalt: func() {
			if err := e.Close(); err != nil {
				glog.Warningf("close: %v", err)
			}
		},
	}
}

// NewAlwaysOn assembles the always-on controller.
func (e *Env) NewAlwaysOn() *AlwaysOn {
	a := &AlwaysOn{
		Store:          e.Store,
		Producers:      e.Producers,
		Pipeline:       e.Pipeline,
		Indicator:      e.Indicator,
		Retained:       e.Retained,
		Topics:         telemetry.Topics{Device: e.Device},
		StatusInterval: e.Config.StatusInterval,
	}
	if e.Queue != nil {
		a.PubSub = e.Queue
	}
	if e.Hub != nil {
		a.Tasks = append(a.Tasks, e.Hub)
	}
	return a
}

// Runnable returns the controller of the configured mode.
func (e *Env) Runnable() fx.Runnable {
	if e.Config.Mode == ModeAlwaysOn {
		return e.NewAlwaysOn()
	}
	return e.NewDutyCycle()
}
