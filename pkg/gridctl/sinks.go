// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

// Package gridctl implements the jetting-grid control core: the playback
// cursor, the upload session state machine, the operating-mode FSM, and the
// safety interlock that gates the jetting pump on valve state.
//
// The core is single threaded. One control cycle handles command input,
// the mode FSM, and the safety pulses, in that order; all blocking I/O lives
// behind the sink interfaces owned by the caller.
package gridctl

import "github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"

// Mask is the live valve-activation bitmask: one bit per grid column, one
// word per grid row.
type Mask = [jetproto.NumelPCSAxis]uint16

// MaskAny reports whether any valve bit is set.
func MaskAny(m Mask) bool {
	for _, row := range m {
		if row != 0 {
			return true
		}
	}
	return false
}

// ValveSink receives the valve-activation bitmask. The real rig forwards it
// to the port-expander driver that toggles the solenoid outputs.
type ValveSink interface {
	SetMask(m Mask)
}

// PulseSink receives the safety pulse line level. The real rig drives a
// digital output watched by the safety relay controller.
type PulseSink interface {
	SetLevel(high bool)
}

// VisualSink mirrors valve state on a display, the stand-in for the rig's
// LED matrix.
type VisualSink interface {
	ShowMask(m Mask)
	ShowHalt()
	Clear()
}

// NullValveSink discards valve masks.
type NullValveSink struct{}

func (NullValveSink) SetMask(Mask) {}

// NullPulseSink discards pulse levels.
type NullPulseSink struct{}

func (NullPulseSink) SetLevel(bool) {}

// NullVisualSink discards display updates.
type NullVisualSink struct{}

func (NullVisualSink) ShowMask(Mask) {}
func (NullVisualSink) ShowHalt()     {}
func (NullVisualSink) Clear()        {}
