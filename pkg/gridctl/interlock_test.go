// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"testing"
	"time"
)

// pulseRecorder records every level written to the pulse line.
type pulseRecorder struct {
	levels []bool
}

func (p *pulseRecorder) SetLevel(high bool) {
	p.levels = append(p.levels, high)
}

func (p *pulseRecorder) toggles() int {
	n := 0
	for i := 1; i < len(p.levels); i++ {
		if p.levels[i] != p.levels[i-1] {
			n++
		}
	}
	return n
}

func maskWithBit() Mask {
	var m Mask
	m[3] = 1 << 5
	return m
}

func TestInterlock_ZeroMaskNoPulses(t *testing.T) {
	il := NewInterlock()
	sink := &pulseRecorder{}
	t0 := time.Now()

	for i := 0; i < 10; i++ {
		il.Update(t0.Add(time.Duration(i)*SafetyPulseHalfPeriod), Mask{}, sink)
	}
	for _, level := range sink.levels {
		if level {
			t.Fatal("pulse line went high with all valves closed")
		}
	}
}

func TestInterlock_ActiveMaskPulses(t *testing.T) {
	il := NewInterlock()
	sink := &pulseRecorder{}
	t0 := time.Now()

	for i := 0; i < 10; i++ {
		il.Update(t0.Add(time.Duration(i)*SafetyPulseHalfPeriod), maskWithBit(), sink)
	}
	if sink.toggles() < 8 {
		t.Errorf("expected a toggling pulse train, got %d toggles over 10 half-periods", sink.toggles())
	}
}

func TestInterlock_PulseRate(t *testing.T) {
	il := NewInterlock()
	sink := &pulseRecorder{}
	t0 := time.Now()

	// Two cycles per half-period: only every second cycle may toggle.
	for i := 0; i < 20; i++ {
		il.Update(t0.Add(time.Duration(i)*SafetyPulseHalfPeriod/2), maskWithBit(), sink)
	}
	if got := len(sink.levels); got < 9 || got > 11 {
		t.Errorf("expected ~10 level writes at the configured rate, got %d", got)
	}
}

func TestInterlock_StopsWithinOneCycle(t *testing.T) {
	il := NewInterlock()
	sink := &pulseRecorder{}
	t0 := time.Now()

	il.Update(t0, maskWithBit(), sink)
	il.Update(t0.Add(SafetyPulseHalfPeriod), maskWithBit(), sink)

	// Valves close: the very next cycle must drive the line low.
	il.Update(t0.Add(2*SafetyPulseHalfPeriod), Mask{}, sink)
	if len(sink.levels) == 0 || sink.levels[len(sink.levels)-1] {
		t.Error("pulse line should be low one cycle after the mask cleared")
	}

	// And stay low.
	il.Update(t0.Add(3*SafetyPulseHalfPeriod), Mask{}, sink)
	before := len(sink.levels)
	il.Update(t0.Add(4*SafetyPulseHalfPeriod), Mask{}, sink)
	if len(sink.levels) != before {
		t.Error("disabled interlock should not keep writing the line")
	}
}

func TestInterlock_OverrideForcesPulses(t *testing.T) {
	il := NewInterlock()
	sink := &pulseRecorder{}
	t0 := time.Now()

	il.SetOverride(true)
	for i := 0; i < 6; i++ {
		il.Update(t0.Add(time.Duration(i)*SafetyPulseHalfPeriod), Mask{}, sink)
	}
	if sink.toggles() < 4 {
		t.Errorf("override should force the pulse train, got %d toggles", sink.toggles())
	}

	il.SetOverride(false)
	il.Update(t0.Add(7*SafetyPulseHalfPeriod), Mask{}, sink)
	if sink.levels[len(sink.levels)-1] {
		t.Error("clearing the override with no valves open should drop the line")
	}
}

func TestInterlock_ForceOff(t *testing.T) {
	il := NewInterlock()
	sink := &pulseRecorder{}

	il.SetOverride(true)
	il.ForceOff(sink)
	if il.Override() {
		t.Error("ForceOff should clear the override")
	}
	if len(sink.levels) == 0 || sink.levels[len(sink.levels)-1] {
		t.Error("ForceOff should drive the line low")
	}
}
