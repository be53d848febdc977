// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package jetproto

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomFrame builds an encodable frame: a random duration and point set,
// steering clear of the sentinel-merge cases EncodeRecord rejects
func randomFrame(rng *rand.Rand) Frame {
	f := Frame{DurationMS: uint16(rng.Intn(0xFFFF))} // Never 0xFFFF
	seen := make(map[Point]bool)
	numPoints := rng.Intn(32)
	for len(f.Points) < numPoints {
		p := Point{
			X: int8(rng.Intn(NumelPCSAxis) + PCSXMin),
			Y: int8(rng.Intn(NumelPCSAxis) + PCSYMin),
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		f.Points = append(f.Points, p)
	}
	// An empty payload tail of 0xFF merges with the sentinel, as does a
	// lone (-1,-1) point byte.
	if len(f.Points) == 0 && f.DurationMS&0xFF == 0xFF {
		f.DurationMS--
	}
	if len(f.Points) == 1 && f.Points[0] == (Point{-1, -1}) {
		f.Points = append(f.Points, Point{0, 0})
	}
	return f
}

// ============================================================
// Record Decoder Fuzz Tests
// ============================================================

// TestFuzzRecordDecoder_RandomBytes feeds random bytes to the decoder
// and verifies it doesn't crash or panic
func TestFuzzRecordDecoder_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		d := NewRecordDecoder()

		length := rng.Intn(1024) + 1
		data := make([]byte, length)
		rng.Read(data)

		// Feed all bytes to decoder - should not panic
		for _, b := range data {
			d.DecodeByte(b)
		}
	}
}

// TestFuzzRecordDecoder_RandomFrames encodes random frames and verifies the
// decoder reproduces the point set and duration
func TestFuzzRecordDecoder_RandomFrames(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		f := randomFrame(rng)
		data, err := EncodeRecord(f)
		if err != nil {
			t.Fatalf("Round %d: encode error: %v", i, err)
		}

		d := NewRecordDecoder()
		var rec *Record
		for _, b := range data {
			r, decodeErr := d.DecodeByte(b)
			if decodeErr != nil {
				t.Fatalf("Round %d: decode error: %v", i, decodeErr)
			}
			if r != nil {
				rec = r
			}
		}
		if rec == nil {
			t.Fatalf("Round %d: no record decoded", i)
		}
		if rec.DurationMS != f.DurationMS {
			t.Errorf("Round %d: duration mismatch: expected %d, got %d", i, f.DurationMS, rec.DurationMS)
		}
		if !samePointSet(f.Points, rec.Points) {
			t.Errorf("Round %d: point set mismatch", i)
		}
	}
}

// TestFuzzRecordDecoder_TruncatedRecords verifies truncated records never
// panic and never yield a phantom record
func TestFuzzRecordDecoder_TruncatedRecords(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		f := randomFrame(rng)
		data, err := EncodeRecord(f)
		if err != nil {
			t.Fatalf("Round %d: encode error: %v", i, err)
		}

		cut := rng.Intn(len(data)) // Drop at least the last byte
		d := NewRecordDecoder()
		for _, b := range data[:cut] {
			rec, _ := d.DecodeByte(b)
			if rec != nil {
				t.Errorf("Round %d: record completed from truncated input", i)
			}
		}
	}
}

// ============================================================
// Pack/Unpack Fuzz Tests
// ============================================================

// TestFuzzStore_PackUnpackRoundTrip verifies the round-trip law over random
// frames: same point set, same duration
func TestFuzzStore_PackUnpackRoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	s := NewStore()
	for i := 0; i < rounds; i++ {
		f := randomFrame(rng)
		pf, err := s.Pack(f)
		if err != nil {
			t.Fatalf("Round %d: pack error: %v", i, err)
		}
		if pf.DurationMS != f.DurationMS {
			t.Errorf("Round %d: duration mismatch: expected %d, got %d", i, f.DurationMS, pf.DurationMS)
		}
		got := s.Unpack(&pf)
		if !samePointSet(f.Points, got) {
			t.Errorf("Round %d: point set mismatch after round trip", i)
		}
	}
}

// TestFuzzPointCodec_AllBytes verifies every byte decodes to an in-domain
// point that packs back to the same byte
func TestFuzzPointCodec_AllBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		p := UnpackPointByte(byte(b))
		if !p.InDomain() {
			t.Fatalf("byte 0x%02X decoded out of domain: %s", b, p)
		}
		back, err := p.PackByte()
		if err != nil {
			t.Fatalf("byte 0x%02X: repack error: %v", b, err)
		}
		if back != byte(b) {
			t.Errorf("byte 0x%02X repacked to 0x%02X", b, back)
		}
	}
}
