// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import "fmt"

// Store is a fixed-capacity jetting program: an ordered sequence of packed
// frames plus a name. All storage is statically sized; Clear is O(1) and
// capacity overruns are explicit errors, never silent truncation.
//
// The store is built append-only during an upload and is read-only during
// playback. It is not safe for concurrent use; the controller owns it from a
// single thread of control.
type Store struct {
	name   string
	frames [MaxProgramLines]PackedFrame
	n      int

	// Reusable scratch region for Unpack, sized for a full grid plus the
	// end sentinel.
	scratch [MaxPointsPerLine + 1]Point
}

// NewStore returns an empty program store.
func NewStore() *Store {
	return &Store{name: "<no name>"}
}

// Clear resets the program to zero frames. Unused capacity is not zeroed.
func (s *Store) Clear() {
	s.n = 0
	s.name = "<no name>"
}

// SetName records the program name.
func (s *Store) SetName(name string) {
	s.name = name
}

// Name returns the program name.
func (s *Store) Name() string {
	return s.name
}

// Len returns the number of frames currently in the program.
func (s *Store) Len() int {
	return s.n
}

// Pack converts a sparse frame into its dense row-bitmask form. The point
// list may be sentinel-terminated; points after the first sentinel are
// ignored. Duplicate points OR together harmlessly.
func (s *Store) Pack(f Frame) (PackedFrame, error) {
	pf := PackedFrame{DurationMS: f.DurationMS}
	for _, p := range f.Points {
		if p.IsNull() {
			break
		}
		if err := pf.Set(p); err != nil {
			return PackedFrame{}, err
		}
	}
	return pf, nil
}

// Append adds a packed frame to the end of the program.
func (s *Store) Append(pf PackedFrame) error {
	if s.n >= MaxProgramLines {
		return fmt.Errorf("append at %d frames (max %d): %w",
			s.n, MaxProgramLines, ErrCapacityExceeded)
	}
	s.frames[s.n] = pf
	s.n++
	return nil
}

// FrameAt returns the packed frame at index i.
func (s *Store) FrameAt(i int) (*PackedFrame, error) {
	if i < 0 || i >= s.n {
		return nil, fmt.Errorf("frame index %d of %d: %w", i, s.n, ErrIndexFault)
	}
	return &s.frames[i], nil
}

// Unpack expands a packed frame back into a sentinel-terminated point list,
// scanning rows then columns in a fixed order.
//
// The returned slice aliases a single scratch region inside the store and is
// valid only until the next call to Unpack. This is a deliberate
// memory-budget trade-off: one writer, one reader, no allocation per call.
// Callers that need to keep the points must copy them out.
func (s *Store) Unpack(pf *PackedFrame) []Point {
	idx := 0
	for row := 0; row < NumelPCSAxis; row++ {
		mask := pf.Rows[row]
		if mask == 0 {
			continue
		}
		for col := 0; col < NumelPCSAxis; col++ {
			if mask&(1<<uint(col)) != 0 {
				s.scratch[idx] = PointAt(row, col)
				idx++
			}
		}
	}
	s.scratch[idx].SetNull()
	return s.scratch[:idx+1]
}
