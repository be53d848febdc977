// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import "fmt"

// Point is a single coordinate in the protocol coordinate system.
type Point struct {
	X int8
	Y int8
}

// PointNull is the reserved absent/terminator point.
var PointNull = Point{X: PointNullVal, Y: PointNullVal}

// IsNull reports whether the point is the absent/terminator sentinel.
func (p Point) IsNull() bool {
	return p.X == PointNullVal || p.Y == PointNullVal
}

// SetNull marks the point as the absent/terminator sentinel.
func (p *Point) SetNull() {
	p.X = PointNullVal
	p.Y = PointNullVal
}

// InDomain reports whether both coordinates fit the signed 4-bit PCS domain.
func (p Point) InDomain() bool {
	return p.X >= PCSXMin && p.X <= PCSXMax && p.Y >= PCSYMin && p.Y <= PCSYMax
}

// PackByte packs the point into a single byte: upper nibble = X, lower
// nibble = Y, both as signed 4-bit two's complement values.
func (p Point) PackByte() (byte, error) {
	if !p.InDomain() {
		return 0, fmt.Errorf("point (%d,%d): %w", p.X, p.Y, ErrPointDomain)
	}
	return byte(p.X)<<4 | byte(p.Y)&0x0F, nil
}

// UnpackPointByte decodes a nibble-packed point byte, sign-extending both
// coordinates. Every byte value decodes to a point inside the PCS domain.
func UnpackPointByte(b byte) Point {
	return Point{
		X: int8(b) >> 4,
		Y: int8(b<<4) >> 4,
	}
}

// RowCol maps the point onto zero-based storage indices: row for Y, column
// for X. Returns ErrIndexFault for points outside the domain; the sentinel
// is never addressable.
func (p Point) RowCol() (row, col int, err error) {
	if !p.InDomain() {
		return 0, 0, fmt.Errorf("point (%d,%d): %w", p.X, p.Y, ErrIndexFault)
	}
	return int(p.Y) - PCSYMin, int(p.X) - PCSXMin, nil
}

// PointAt is the inverse of RowCol.
func PointAt(row, col int) Point {
	return Point{X: int8(col + PCSXMin), Y: int8(row + PCSYMin)}
}

func (p Point) String() string {
	if p.IsNull() {
		return "(null)"
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
