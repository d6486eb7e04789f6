package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background tasks.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Controller is invoked once per loop iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of the current loop iteration.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// PriorityLevel gets the current priority level.
	PriorityLevel() int

	LoopControl
}

// LoopControl exposes access to the running loop.
type LoopControl interface {
	// PostRunAt injects one-shot controllers executed after the regular
	// controllers of the specified priority level.
	PostRunAt(priorityLevel int, controllers ...Controller)
	// TriggerNext schedules an iteration immediately.
	TriggerNext()
	// SetInterval changes the iteration period starting from the next tick.
	SetInterval(time.Duration)
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 16

// Predefined priority levels, lower runs first.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvSense is the priority level for sensor sampling.
	PrLvSense = PrLvHigh
	// PrLvControl is the priority level for control decisions.
	PrLvControl = PrLvNormal
	// PrLvPostProc is the priority level for post-processing (stats etc).
	PrLvPostProc = PrLvIdle - 1
)
