// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import "time"

// IntervalTimer is a software periodic timer compared against the caller's
// monotonic clock each control cycle. It replaces hardware timer sugar with
// explicit control flow: call Due once per cycle and act when it returns
// true. The first call after construction or Reset fires immediately.
type IntervalTimer struct {
	period time.Duration
	last   time.Time
}

// NewIntervalTimer returns a timer with the given period.
func NewIntervalTimer(period time.Duration) IntervalTimer {
	return IntervalTimer{period: period}
}

// Due reports whether a full period has elapsed since the last firing, and
// if so marks the firing at now.
func (t *IntervalTimer) Due(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.period {
		return false
	}
	t.last = now
	return true
}

// Reset rearms the timer so the next Due call fires immediately.
func (t *IntervalTimer) Reset() {
	t.last = time.Time{}
}
