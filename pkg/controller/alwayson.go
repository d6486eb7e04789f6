package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/appconfig"
	fx "github.com/robotalks/multisensor/pkg/framework"
	"github.com/robotalks/multisensor/pkg/pipeline"
	"github.com/robotalks/multisensor/pkg/power"
	"github.com/robotalks/multisensor/pkg/sensor"
	"github.com/robotalks/multisensor/pkg/sensor/board"
	"github.com/robotalks/multisensor/pkg/telemetry"
)

// PubSub is the part of telemetry.Queue used for remote configuration and
// status reports.
type PubSub interface {
	telemetry.Publisher
	Sub(topic string, handler telemetry.Handler) *telemetry.Subscription
}

// AlwaysOn keeps running: samplers are periodic loop controllers, the
// aggregator and logger are tasks, and configuration updates arrive over
// MQTT.
type AlwaysOn struct {
	Store     *appconfig.Store
	Producers []sensor.Producer
	Pipeline  *pipeline.Pipeline
	Indicator board.Indicator
	Retained  power.Retained
	// PubSub is optional.
	PubSub PubSub
	Topics telemetry.Topics
	// StatusInterval is the period of status reports, 0 disables them.
	StatusInterval time.Duration
	// Tasks are extra Runnables run along with the loop.
	Tasks []fx.Runnable

	loop       atomic.Pointer[fx.Loop]
	abort      func(error)
	cfg        appconfig.AppConfig
	lastStatus time.Time
}

// Status is the periodic status report.
type Status struct {
	Device     string                            `json:"device"`
	BootCount  uint32                            `json:"boot_count"`
	Config     appconfig.AppConfig               `json:"config"`
	Producers  map[string]pipeline.ProducerStats `json:"producers"`
	Forwarded  uint64                            `json:"forwarded"`
	AggDropped uint64                            `json:"aggregator_dropped"`
	Logged     uint64                            `json:"logged"`
}

// Name implements framework.Named.
func (a *AlwaysOn) Name() string {
	return "always-on"
}

// Run implements framework.Runnable. A failure to persist a configuration
// update stops every task and is returned.
func (a *AlwaysOn) Run(ctx context.Context) error {
	if err := a.Store.Init(); err != nil {
		return err
	}
	ready := initProducers(a.Producers)
	cfg, err := a.Store.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	glog.Infof("boot %d, config: %v", a.Retained.BootCount, cfg)

	for _, p := range a.Producers {
		if !ready[p] {
			continue
		}
		kind := p.Kind()
		a.Pipeline.AddSampler(p).Enabled = func() bool {
			return enabled(a.cfg, kind)
		}
	}
	loop := fx.NewLoop()
	loop.Interval = cfg.SamplePeriod()
	loop.Add(a.Pipeline)
	if a.PubSub != nil && a.StatusInterval > 0 {
		loop.AddController(fx.PrLvPostProc, fx.ControlFunc(a.reportStatus))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	failCh := make(chan error, 1)
	a.abort = func(err error) {
		select {
		case failCh <- err:
		default:
		}
		cancel()
	}
	a.loop.Store(loop)

	if a.PubSub != nil {
		sub := a.PubSub.Sub(a.Topics.ConfigSet(), a.HandleConfigUpdate)
		defer sub.Close()
	}

	a.indicate(true)
	defer a.indicate(false)
	err = fx.NewRunnerWith(runCtx).Go(loop).Go(a.Tasks...).Wait()
	select {
	case fatal := <-failCh:
		return fatal
	default:
	}
	return err
}

// Config returns the active configuration. It must be called from a loop
// controller once Run started.
func (a *AlwaysOn) Config() appconfig.AppConfig {
	return a.cfg
}

// HandleConfigUpdate implements telemetry.Handler. The update is applied
// by the loop at control priority so that the store and the configuration
// are only touched from the loop goroutine.
func (a *AlwaysOn) HandleConfigUpdate(topic string, payload []byte) {
	update, err := appconfig.ParseUpdate(payload)
	if err != nil {
		glog.Warningf("config: invalid update on %s: %v", topic, err)
		return
	}
	loop := a.loop.Load()
	if loop == nil {
		glog.Warning("config: update before start, ignored")
		return
	}
	loop.PostRunAt(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		return a.applyUpdate(cc, update)
	}))
	loop.TriggerNext()
}

func (a *AlwaysOn) applyUpdate(cc fx.ControlContext, update *appconfig.Update) error {
	cfg := update.Apply(a.cfg)
	if err := cfg.Validate(); err != nil {
		glog.Warningf("config: update rejected: %v", err)
		return nil
	}
	if err := a.Store.Save(cfg); err != nil {
		// the marker may already be erased.
		err = fmt.Errorf("save config: %w", err)
		a.abort(err)
		return err
	}
	glog.Infof("config: updated to %v", cfg)
	if cfg.SamplePeriodMs != a.cfg.SamplePeriodMs {
		cc.SetInterval(cfg.SamplePeriod())
	}
	a.cfg = cfg
	return nil
}

// Status collects the current counters.
func (a *AlwaysOn) Status() *Status {
	st := &Status{
		Device:     a.Topics.Device,
		BootCount:  a.Retained.BootCount,
		Config:     a.cfg,
		Producers:  make(map[string]pipeline.ProducerStats),
		Forwarded:  a.Pipeline.Aggregator.Forwarded(),
		AggDropped: a.Pipeline.Aggregator.Dropped(),
		Logged:     a.Pipeline.Logger.Handled(),
	}
	for _, s := range a.Pipeline.Samplers {
		st.Producers[s.Producer.Kind().String()] = s.Stats()
	}
	return st
}

func (a *AlwaysOn) reportStatus(cc fx.ControlContext) error {
	if now := cc.Time(); now.Sub(a.lastStatus) >= a.StatusInterval {
		a.lastStatus = now
		data, err := json.Marshal(a.Status())
		if err != nil {
			return err
		}
		a.PubSub.Pub(a.Topics.Status(), data)
	}
	return nil
}

func (a *AlwaysOn) indicate(on bool) {
	if a.Indicator == nil {
		return
	}
	if err := a.Indicator.Set(on); err != nil {
		glog.Warningf("indicator: %v", err)
	}
}
