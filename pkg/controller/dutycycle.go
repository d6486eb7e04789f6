package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/appconfig"
	"github.com/robotalks/multisensor/pkg/pipeline"
	"github.com/robotalks/multisensor/pkg/power"
	"github.com/robotalks/multisensor/pkg/sensor"
	"github.com/robotalks/multisensor/pkg/sensor/board"
)

// DutyCycle runs one active round per boot and then halts. Nothing in
// memory survives the halt except power.Retained.
type DutyCycle struct {
	Store     *appconfig.Store
	Producers []sensor.Producer
	Pipeline  *pipeline.Pipeline
	Halter    power.Halter
	Indicator board.Indicator
	Retained  power.Retained
	// Grace lets asynchronous sinks finish before the halt.
	Grace time.Duration
	// Watchdog bounds the active window, 0 disables it.
	Watchdog time.Duration
	// BeforeHalt releases resources, called right before the halt.
	BeforeHalt func()

	FSM FSM
}

// Name implements framework.Named.
func (d *DutyCycle) Name() string {
	return "duty-cycle"
}

type roundResult struct {
	cfg appconfig.AppConfig
	err error
}

// Run implements framework.Runnable. Storage errors are returned before the
// halt and must be treated as fatal. It returns after the halt only with a
// Halter that returns.
func (d *DutyCycle) Run(ctx context.Context) error {
	d.FSM = FSM{State: StateActive}
	glog.Infof("boot %d, wake cause %v", d.Retained.BootCount, d.Retained.WakeCause)
	d.indicate(true)

	roundCtx, cancelRound := context.WithCancel(ctx)
	defer cancelRound()
	resultCh := make(chan roundResult, 1)
	go func() {
		cfg, err := d.Round(roundCtx)
		resultCh <- roundResult{cfg: cfg, err: err}
	}()

	var watchdog <-chan time.Time
	if d.Watchdog > 0 {
		timer := time.NewTimer(d.Watchdog)
		defer timer.Stop()
		watchdog = timer.C
	}

	var (
		ev  Event
		cfg = appconfig.Default()
	)
	select {
	case res := <-resultCh:
		if res.err != nil {
			d.indicate(false)
			return res.err
		}
		ev, cfg = EventRoundDone, res.cfg
	case <-watchdog:
		glog.Warningf("active window exceeded %v, halting anyway", d.Watchdog)
		cancelRound()
		ev = EventWatchdog
	case <-ctx.Done():
		d.indicate(false)
		return ctx.Err()
	}

	action, err := d.FSM.Fire(ev)
	if err != nil {
		return err
	}
	if action == ActionHalt {
		d.indicate(false)
		if d.BeforeHalt != nil {
			d.BeforeHalt()
		}
		d.Halter.Halt(cfg.SamplePeriod(), d.Retained.Next())
	}
	return nil
}

// Round performs the active window: storage init, sensor init, config
// load, one sample per enabled sensor, drain and grace delay. It stops
// between steps once ctx is done, so an abandoned round neither touches the
// store nor reaches the sinks.
func (d *DutyCycle) Round(ctx context.Context) (appconfig.AppConfig, error) {
	if err := d.Store.Init(); err != nil {
		return appconfig.AppConfig{}, err
	}
	ready := initProducers(d.Producers)
	if err := ctx.Err(); err != nil {
		return appconfig.AppConfig{}, err
	}
	cfg, err := d.Store.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	glog.Infof("config: %v", cfg)

	for _, p := range d.Producers {
		if err := ctx.Err(); err != nil {
			return cfg, err
		}
		if !ready[p] || !enabled(cfg, p.Kind()) {
			continue
		}
		d.Pipeline.AddSampler(p).Sample()
	}
	if err := ctx.Err(); err != nil {
		return cfg, err
	}
	d.Pipeline.Drain()

	if d.Grace > 0 {
		timer := time.NewTimer(d.Grace)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return cfg, ctx.Err()
		}
	}
	return cfg, nil
}

func (d *DutyCycle) indicate(on bool) {
	if d.Indicator == nil {
		return
	}
	if err := d.Indicator.Set(on); err != nil {
		glog.Warningf("indicator: %v", err)
	}
}

func initProducers(producers []sensor.Producer) map[sensor.Producer]bool {
	ready := make(map[sensor.Producer]bool, len(producers))
	for _, p := range producers {
		if err := p.Init(); err != nil {
			glog.Errorf("%v: init failed, disabled for this cycle: %v", p.Kind(), err)
			continue
		}
		ready[p] = true
	}
	return ready
}

func enabled(cfg appconfig.AppConfig, kind sensor.Kind) bool {
	switch kind {
	case sensor.KindIMU:
		return cfg.IMUEnabled
	case sensor.KindUltrasonic:
		return cfg.UltrasonicEnabled
	}
	return false
}
