// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import (
	"bytes"
	"fmt"
)

// EncodeRecord builds the wire bytes for one frame: big-endian duration,
// nibble-packed point bytes, EOL sentinel.
//
// The point byte 0xFF is the valid point (-1,-1), so a payload ending in
// 0xFF would merge with the trailing sentinel and make the receiver frame
// the record early. Point order carries no meaning, so the encoder emits the
// 0xFF point byte first; what remains unrepresentable is rejected: a record
// whose wire form does not put the first sentinel occurrence exactly at the
// payload end (0xFFFF durations and bare 0xFF tails).
func EncodeRecord(f Frame) ([]byte, error) {
	out := make([]byte, 0, 2+len(f.Points)+EOLSize)
	out = append(out, byte(f.DurationMS>>8), byte(f.DurationMS))
	for _, p := range f.Points {
		if p.IsNull() {
			break
		}
		pb, err := p.PackByte()
		if err != nil {
			return nil, err
		}
		if pb == 0xFF {
			out = append(out[:2], append([]byte{pb}, out[2:]...)...)
			continue
		}
		out = append(out, pb)
	}
	if len(out) > MaxRecordSize {
		return nil, fmt.Errorf("record of %d bytes exceeds maximum %d: %w",
			len(out), MaxRecordSize, ErrCapacityExceeded)
	}
	wire := append(out, EOLSentinel[:]...)
	if bytes.Index(wire, EOLSentinel[:]) != len(out) {
		return nil, fmt.Errorf("record payload would merge with the EOL sentinel")
	}
	return wire, nil
}

// EncodeEndOfProgram returns the end-of-program marker: a bare EOL sentinel.
func EncodeEndOfProgram() []byte {
	out := make([]byte, EOLSize)
	copy(out, EOLSentinel[:])
	return out
}

// EncodeProgram encodes every frame of a program file plus the trailing
// end-of-program marker, ready to follow the name and count lines of the
// upload exchange.
func EncodeProgram(frames []Frame) ([]byte, error) {
	var out []byte
	for i, f := range frames {
		rec, err := EncodeRecord(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out = append(out, rec...)
	}
	out = append(out, EncodeEndOfProgram()...)
	return out, nil
}
