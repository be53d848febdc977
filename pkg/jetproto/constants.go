// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

// Package jetproto implements the jetting-grid protocol: the protocol
// coordinate system (PCS), the packed frame representation of a jetting
// program, and the binary wire format used to upload programs from a host
// into the grid controller.
//
// A jetting program is an ordered list of timed frames. Each frame names the
// set of grid points whose solenoid valves are open for its duration. Frames
// travel over the wire as sparse point lists and are stored on the controller
// as dense row bitmasks with a constant per-frame footprint.
package jetproto

// Protocol coordinate system (PCS). Coordinates are signed 4-bit values, so
// each axis spans -8..7 and the grid is 16x16.
const (
	PCSXMin = -8
	PCSXMax = 7
	PCSYMin = -8
	PCSYMax = 7

	NumelPCSAxis = 16 // Values per axis
)

// PointNullVal marks an uninitialized or absent point. Any point with this
// value on either coordinate acts as the end-of-list sentinel.
const PointNullVal = -128

// Program storage limits
const (
	MaxProgramLines  = 5000                        // Frames per program
	MaxPointsPerLine = NumelPCSAxis * NumelPCSAxis // Points per frame
)

// Wire format limits
const (
	// A record is a 2-byte duration plus at most one byte per grid point.
	// The EOL sentinel is framing, not payload, and is not counted here.
	MaxRecordSize = 2 + MaxPointsPerLine

	EOLSize = 3
)

// EOLSentinel terminates every binary record. Two sentinels back to back
// (a zero-length record) signal end-of-program.
var EOLSentinel = [EOLSize]byte{0xFF, 0xFF, 0xFF}
