// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import "time"

// Mode is the operating mode of the controller.
type Mode int

// Operating modes. Halted is terminal: it is entered on a fatal fault and
// only an external reset leaves it.
const (
	ModeOff Mode = iota
	ModePaused
	ModeRunning
	ModeUploading
	ModeHalted
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModePaused:
		return "Paused"
	case ModeRunning:
		return "Running"
	case ModeUploading:
		return "Uploading"
	case ModeHalted:
		return "Halted"
	default:
		return "Unknown"
	}
}

// stateFuncs holds the hooks of one FSM state. Any of them may be nil.
type stateFuncs struct {
	enter  func(now time.Time)
	update func(now time.Time)
	exit   func(now time.Time)
}

// fsm is a minimal entry/update/exit state machine. Transitions happen only
// when TransitionTo is called; there are no internal transitions.
type fsm struct {
	mode      Mode
	states    map[Mode]stateFuncs
	enteredAt time.Time
}

func newFSM(initial Mode, states map[Mode]stateFuncs, now time.Time) *fsm {
	f := &fsm{mode: initial, states: states, enteredAt: now}
	if enter := states[initial].enter; enter != nil {
		enter(now)
	}
	return f
}

// TransitionTo runs the current state's exit hook, switches mode, and runs
// the new state's entry hook. Transitioning to the current mode re-runs its
// entry hook, matching the behavior of re-issuing a mode command.
func (f *fsm) TransitionTo(now time.Time, mode Mode) {
	if exit := f.states[f.mode].exit; exit != nil {
		exit(now)
	}
	f.mode = mode
	f.enteredAt = now
	if enter := f.states[mode].enter; enter != nil {
		enter(now)
	}
}

// Update runs the current state's periodic hook.
func (f *fsm) Update(now time.Time) {
	if update := f.states[f.mode].update; update != nil {
		update(now)
	}
}

// TimeInState returns how long the current mode has been active.
func (f *fsm) TimeInState(now time.Time) time.Duration {
	return now.Sub(f.enteredAt)
}
