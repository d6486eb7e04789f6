package controller

import "fmt"

// State of the duty cycle.
type State int

// States.
const (
	StateActive State = iota
	StateSleeping
	numStates
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateSleeping:
		return "SLEEPING"
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

// Event drives transitions.
type Event int

// Events.
const (
	// EventRoundDone is raised when sampling, draining and the grace delay
	// completed.
	EventRoundDone Event = iota
	// EventWatchdog is raised when the active window expired first.
	EventWatchdog
	// EventWake is raised when the halt timer expires.
	EventWake
	numEvents
)

// String implements fmt.Stringer.
func (e Event) String() string {
	switch e {
	case EventRoundDone:
		return "ROUND_DONE"
	case EventWatchdog:
		return "WATCHDOG"
	case EventWake:
		return "WAKE"
	}
	return fmt.Sprintf("EVENT(%d)", int(e))
}

// Action is performed on a transition.
type Action int

// Actions.
const (
	ActionNone Action = iota
	// ActionHalt enters the low-power halt.
	ActionHalt
	// ActionRestart restarts from the entry point.
	ActionRestart
)

type transition struct {
	valid  bool
	next   State
	action Action
}

var transitions = [numStates][numEvents]transition{
	StateActive: {
		EventRoundDone: {valid: true, next: StateSleeping, action: ActionHalt},
		EventWatchdog:  {valid: true, next: StateSleeping, action: ActionHalt},
	},
	StateSleeping: {
		EventWake: {valid: true, next: StateActive, action: ActionRestart},
	},
}

// FSM is the duty-cycle state machine. Every boot starts in StateActive.
type FSM struct {
	State State
}

// Fire applies event and returns the action to perform.
func (m *FSM) Fire(ev Event) (Action, error) {
	if m.State < 0 || m.State >= numStates || ev < 0 || ev >= numEvents {
		return ActionNone, fmt.Errorf("invalid state %v or event %v", m.State, ev)
	}
	t := transitions[m.State][ev]
	if !t.valid {
		return ActionNone, fmt.Errorf("event %v not allowed in %v", ev, m.State)
	}
	m.State = t.next
	return t.action, nil
}
