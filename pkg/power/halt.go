// Package power implements the low-power halt which ends every duty cycle.
package power

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/golang/glog"
)

// Halter suspends the system for a duration and restarts it from the entry
// point. Production implementations never return.
type Halter interface {
	Halt(d time.Duration, next Retained)
}

// HaltFunc is the func form of Halter.
type HaltFunc func(time.Duration, Retained)

// Halt implements Halter.
func (f HaltFunc) Halt(d time.Duration, next Retained) {
	f(d, next)
}

// Halt strategies.
const (
	StrategyExec = "exec"
	StrategyExit = "exit"
	StrategyNone = "none"
)

// NewHalter creates a Halter by strategy name.
func NewHalter(strategy string) (Halter, error) {
	switch strategy {
	case StrategyExec, "":
		return HaltFunc(ExecHalt), nil
	case StrategyExit:
		return HaltFunc(ExitHalt), nil
	case StrategyNone:
		return HaltFunc(NoHalt), nil
	}
	return nil, fmt.Errorf("unknown halt strategy %q", strategy)
}

// ExecHalt sleeps for d and replaces the process with a fresh instance of
// the same executable, passing the retained state through the environment.
func ExecHalt(d time.Duration, next Retained) {
	glog.Infof("entering halt for %v", d)
	glog.Flush()
	time.Sleep(d)
	exe, err := os.Executable()
	if err == nil {
		err = syscall.Exec(exe, os.Args, next.Environ(os.Environ()))
	}
	glog.Fatalf("restart failed: %v", err)
}

// ExitHalt sleeps for d and exits, leaving the restart to a supervisor.
// Retained state is lost and the next boot is a cold boot.
func ExitHalt(d time.Duration, next Retained) {
	glog.Infof("entering halt for %v, exit afterwards", d)
	glog.Flush()
	time.Sleep(d)
	os.Exit(0)
}

// NoHalt only logs. The caller returns from its entry point after one
// cycle.
func NoHalt(d time.Duration, next Retained) {
	glog.Infof("halt skipped, next cycle due in %v (boot %d)", d, next.BootCount)
}
