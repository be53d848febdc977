// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

// Frame is the sparse form of one timed jetting line: a duration plus the
// points whose valves are open. Point order carries no meaning; the set does.
type Frame struct {
	DurationMS uint16
	Points     []Point
}

// PackedFrame is the dense form: one 16-bit column mask per grid row, for a
// constant footprint of 2 + 32 bytes per frame regardless of how many points
// are active. Bit col of Rows[row] is set iff PointAt(row, col) is active.
//
// Note: legacy design notes quote 32 bytes per frame; that figure assumed a
// 15-row grid. This implementation uses the full 16-value axis and 34 bytes.
type PackedFrame struct {
	DurationMS uint16
	Rows       [NumelPCSAxis]uint16
}

// Set marks the point active. Duplicate sets are harmless.
func (pf *PackedFrame) Set(p Point) error {
	row, col, err := p.RowCol()
	if err != nil {
		return err
	}
	pf.Rows[row] |= 1 << uint(col)
	return nil
}

// Has reports whether the point is active. Out-of-domain points are inactive.
func (pf *PackedFrame) Has(p Point) bool {
	row, col, err := p.RowCol()
	if err != nil {
		return false
	}
	return pf.Rows[row]&(1<<uint(col)) != 0
}

// Any reports whether any point of the frame is active. This is the one
// signal the safety interlock consumes.
func (pf *PackedFrame) Any() bool {
	for _, mask := range pf.Rows {
		if mask != 0 {
			return true
		}
	}
	return false
}

// CountPoints returns the number of active points.
func (pf *PackedFrame) CountPoints() int {
	n := 0
	for _, mask := range pf.Rows {
		for ; mask != 0; mask &= mask - 1 {
			n++
		}
	}
	return n
}

// ClearRows zeroes every row mask, leaving the duration untouched.
func (pf *PackedFrame) ClearRows() {
	for i := range pf.Rows {
		pf.Rows[i] = 0
	}
}
