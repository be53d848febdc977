// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"math"
	"time"
)

// Readings carries the latest pressure-sensor values of the four OMEGA
// sensors, as loop currents and converted pressures. The analog front end
// itself is outside the control core; the core only formats these into the
// `?` report.
type Readings struct {
	PresMilliAmp [4]float64
	PresBar      [4]float64
}

// ReadingsSource supplies the latest sensor readings once per report.
type ReadingsSource interface {
	Read(now time.Time) Readings
}

// SyntheticReadings generates smoothly varying fake pressure data for
// running the controller without sensors attached.
type SyntheticReadings struct {
	start time.Time
}

// NewSyntheticReadings returns a source anchored at the given start time.
func NewSyntheticReadings(start time.Time) *SyntheticReadings {
	return &SyntheticReadings{start: start}
}

func (s *SyntheticReadings) Read(now time.Time) Readings {
	var r Readings
	t := now.Sub(s.start).Seconds()
	base := 16.0 + math.Sin(2.0*math.Pi*0.1*t)
	for i := 0; i < 4; i++ {
		mA := base + 0.5*float64(i)
		r.PresMilliAmp[i] = mA
		// 4-20 mA onto a 0-10 bar sensor range
		r.PresBar[i] = (mA - 4.0) / 16.0 * 10.0
	}
	return r
}
