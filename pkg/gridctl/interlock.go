// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import "time"

// SafetyPulseHalfPeriod is the toggle interval of the pump-enable pulse
// train. The safety relay controller expects a level change at least this
// often while the pump is allowed to run.
const SafetyPulseHalfPeriod = 10 * time.Millisecond

// Interlock derives the pump-enable pulses purely from the live valve
// bitmask plus the operator override flag. It runs every control cycle,
// independent of the operating mode: Paused with valves left open keeps the
// pump enabled, Off stops it because Off forces the bitmask to zero.
type Interlock struct {
	override bool
	timer    IntervalTimer
	level    bool
}

// NewInterlock returns an interlock with the override cleared.
func NewInterlock() *Interlock {
	return &Interlock{timer: NewIntervalTimer(SafetyPulseHalfPeriod)}
}

// SetOverride forces pump enable regardless of valve state. Troubleshooting
// only.
func (il *Interlock) SetOverride(on bool) {
	il.override = on
}

// Override reports the override flag.
func (il *Interlock) Override() bool {
	return il.override
}

// Update evaluates the interlock for one control cycle and drives the pulse
// sink: a toggling level at the configured half-period while enabled, a low
// line while disabled.
func (il *Interlock) Update(now time.Time, mask Mask, sink PulseSink) {
	enabled := il.override || MaskAny(mask)

	if !enabled {
		if il.level {
			il.level = false
			sink.SetLevel(false)
		}
		il.timer.Reset()
		return
	}

	if il.timer.Due(now) {
		il.level = !il.level
		sink.SetLevel(il.level)
	}
}

// ForceOff drives the pulse line low and clears the override, used on fatal
// halt.
func (il *Interlock) ForceOff(sink PulseSink) {
	il.override = false
	il.level = false
	sink.SetLevel(false)
}
