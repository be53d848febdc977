// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import "fmt"

// Record is one decoded wire record: either a single jetting frame or the
// end-of-program marker.
type Record struct {
	DurationMS uint16
	Points     []Point
	EOP        bool
}

// RecordDecoder is the byte-at-a-time framer/decoder for the binary upload
// channel. Each record is a 2-byte big-endian duration followed by one
// nibble-packed byte per active point, terminated by the 3-byte EOL
// sentinel. A sentinel with no preceding payload is the end-of-program
// marker, not a frame.
type RecordDecoder struct {
	buffer [MaxRecordSize + EOLSize]byte
	n      int
}

// NewRecordDecoder creates a new record decoder.
func NewRecordDecoder() *RecordDecoder {
	return &RecordDecoder{}
}

// Reset discards any partially received record.
func (d *RecordDecoder) Reset() {
	d.n = 0
}

// Pending returns the number of buffered bytes of the record in progress,
// including any partial EOL sentinel.
func (d *RecordDecoder) Pending() int {
	return d.n
}

// DecodeByte processes a single byte. It returns a completed record once the
// EOL sentinel has been seen, or nil while the record is still incomplete.
// A record exceeding the maximum size is structural corruption; the decoder
// resets and returns an error, which the caller must treat as fatal.
func (d *RecordDecoder) DecodeByte(b byte) (*Record, error) {
	if d.n >= len(d.buffer) {
		d.Reset()
		return nil, fmt.Errorf("record overrun: exceeds %d bytes before EOL: %w",
			MaxRecordSize, ErrIndexFault)
	}
	d.buffer[d.n] = b
	d.n++

	if d.n < EOLSize || !d.tailIsEOL() {
		return nil, nil
	}

	payload := d.buffer[:d.n-EOLSize]
	d.n = 0

	if len(payload) == 0 {
		return &Record{EOP: true}, nil
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("record of %d bytes: too short for a duration: %w",
			len(payload), ErrIndexFault)
	}

	rec := &Record{
		DurationMS: uint16(payload[0])<<8 | uint16(payload[1]),
		Points:     make([]Point, 0, len(payload)-2),
	}
	for _, pb := range payload[2:] {
		rec.Points = append(rec.Points, UnpackPointByte(pb))
	}
	return rec, nil
}

func (d *RecordDecoder) tailIsEOL() bool {
	for i := 0; i < EOLSize; i++ {
		if d.buffer[d.n-EOLSize+i] != EOLSentinel[i] {
			return false
		}
	}
	return true
}
