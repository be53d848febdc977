// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import (
	"fmt"
	"strings"
)

// FormatPoints renders a sentinel-terminated point list on one line, the
// form used by the `b?` debug dump.
func FormatPoints(points []Point) string {
	var sb strings.Builder
	for i, p := range points {
		if p.IsNull() {
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.String())
	}
	if sb.Len() == 0 {
		return "(empty)"
	}
	return sb.String()
}

// FormatPackedFrame renders one packed frame as a 16x16 character grid with
// duration header. Active points print as 'x', inactive as '.'. Rows print
// top-down from PCSYMax so the output matches the physical grid orientation.
func FormatPackedFrame(pf *PackedFrame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "duration %5d ms, %d points\n", pf.DurationMS, pf.CountPoints())
	for row := NumelPCSAxis - 1; row >= 0; row-- {
		for col := 0; col < NumelPCSAxis; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			if pf.Rows[row]&(1<<uint(col)) != 0 {
				sb.WriteByte('x')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatProgram renders the program header plus every frame, the form used
// by the `proto?` debug dump.
func FormatProgram(s *Store) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\t%d\n", s.Name(), s.Len())
	for i := 0; i < s.Len(); i++ {
		pf, err := s.FrameAt(i)
		if err != nil {
			break
		}
		fmt.Fprintf(&sb, "#%04d: %s", i+1, FormatPackedFrame(pf))
	}
	return sb.String()
}
