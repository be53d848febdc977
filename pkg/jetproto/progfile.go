// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ProgramFile is the on-disk form of a jetting program, used by the host
// tools to store programs before uploading them to a rig. The encoding is
// CBOR with integer keys to keep files compact.
type ProgramFile struct {
	Name   string      `cbor:"1,keyasint"`
	Frames []FileFrame `cbor:"2,keyasint"`
}

// FileFrame is one frame of a program file: a duration plus [x,y] pairs.
type FileFrame struct {
	DurationMS uint16    `cbor:"1,keyasint"`
	Points     [][2]int8 `cbor:"2,keyasint"`
}

// MarshalProgramFile encodes a program file to CBOR bytes.
func MarshalProgramFile(pf *ProgramFile) ([]byte, error) {
	data, err := cbor.Marshal(pf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode program file: %w", err)
	}
	return data, nil
}

// UnmarshalProgramFile decodes a CBOR program file and validates it against
// the protocol limits: frame count within program capacity, point count
// within grid size, every coordinate inside the PCS domain.
func UnmarshalProgramFile(data []byte) (*ProgramFile, error) {
	var pf ProgramFile
	if err := cbor.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to decode program file: %w", err)
	}
	if len(pf.Frames) == 0 {
		return nil, fmt.Errorf("program file holds no frames")
	}
	if len(pf.Frames) > MaxProgramLines {
		return nil, fmt.Errorf("program file holds %d frames (max %d): %w",
			len(pf.Frames), MaxProgramLines, ErrCapacityExceeded)
	}
	for i, ff := range pf.Frames {
		if len(ff.Points) > MaxPointsPerLine {
			return nil, fmt.Errorf("frame %d holds %d points (max %d): %w",
				i, len(ff.Points), MaxPointsPerLine, ErrCapacityExceeded)
		}
		for _, xy := range ff.Points {
			p := Point{X: xy[0], Y: xy[1]}
			if !p.InDomain() {
				return nil, fmt.Errorf("frame %d point %s: %w", i, p, ErrPointDomain)
			}
		}
	}
	return &pf, nil
}

// ToFrames converts the file form into protocol frames.
func (pf *ProgramFile) ToFrames() []Frame {
	frames := make([]Frame, 0, len(pf.Frames))
	for _, ff := range pf.Frames {
		f := Frame{DurationMS: ff.DurationMS, Points: make([]Point, 0, len(ff.Points))}
		for _, xy := range ff.Points {
			f.Points = append(f.Points, Point{X: xy[0], Y: xy[1]})
		}
		frames = append(frames, f)
	}
	return frames
}

// FileFromFrames builds the file form from protocol frames, dropping any
// sentinel terminators.
func FileFromFrames(name string, frames []Frame) *ProgramFile {
	pf := &ProgramFile{Name: name, Frames: make([]FileFrame, 0, len(frames))}
	for _, f := range frames {
		ff := FileFrame{DurationMS: f.DurationMS}
		for _, p := range f.Points {
			if p.IsNull() {
				break
			}
			ff.Points = append(ff.Points, [2]int8{p.X, p.Y})
		}
		pf.Frames = append(pf.Frames, ff)
	}
	return pf
}
