// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import "fmt"

// NumPresets is the number of built-in protocol presets.
const NumPresets = 3

// AllPointsFrame returns a frame with every grid point active for the given
// duration. Preset 0 and the failed-upload fallback program are built from
// this frame.
func AllPointsFrame(durationMS uint16) Frame {
	f := Frame{DurationMS: durationMS, Points: make([]Point, 0, MaxPointsPerLine)}
	for y := int8(PCSYMin); ; y++ {
		for x := int8(PCSXMin); ; x++ {
			f.Points = append(f.Points, Point{X: x, Y: y})
			if x == PCSXMax {
				break
			}
		}
		if y == PCSYMax {
			break
		}
	}
	return f
}

// LoadFallback replaces the program with the guaranteed-safe fallback: one
// frame, 1000 ms, every valve open. Installed whenever an upload does not
// fully succeed so the rig never holds a partial or empty program.
func LoadFallback(s *Store) {
	s.Clear()
	s.SetName("All valves open")
	pf, _ := s.Pack(AllPointsFrame(1000))
	// A single frame always fits after Clear.
	_ = s.Append(pf)
}

// LoadPreset replaces the program with built-in preset idx:
//
//	0: all valves open, one 1000 ms frame
//	1: checkerboard, two alternating 500 ms frames
//	2: row sweep, one 250 ms frame per grid row
func LoadPreset(s *Store, idx int) error {
	switch idx {
	case 0:
		LoadFallback(s)
		s.SetName("Preset: all valves open")
		return nil

	case 1:
		s.Clear()
		s.SetName("Preset: checkerboard")
		for phase := 0; phase < 2; phase++ {
			f := Frame{DurationMS: 500}
			for y := int8(PCSYMin); ; y++ {
				for x := int8(PCSXMin); ; x++ {
					if (int(x)+int(y)+phase)%2 == 0 {
						f.Points = append(f.Points, Point{X: x, Y: y})
					}
					if x == PCSXMax {
						break
					}
				}
				if y == PCSYMax {
					break
				}
			}
			pf, err := s.Pack(f)
			if err != nil {
				return err
			}
			if err := s.Append(pf); err != nil {
				return err
			}
		}
		return nil

	case 2:
		s.Clear()
		s.SetName("Preset: row sweep")
		for y := int8(PCSYMin); ; y++ {
			f := Frame{DurationMS: 250}
			for x := int8(PCSXMin); ; x++ {
				f.Points = append(f.Points, Point{X: x, Y: y})
				if x == PCSXMax {
					break
				}
			}
			pf, err := s.Pack(f)
			if err != nil {
				return err
			}
			if err := s.Append(pf); err != nil {
				return err
			}
			if y == PCSYMax {
				break
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown preset %d (have 0..%d)", idx, NumPresets-1)
	}
}
