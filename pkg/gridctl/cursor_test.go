// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"testing"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
)

func makeProgram(t *testing.T, durations ...uint16) *jetproto.Store {
	t.Helper()
	s := jetproto.NewStore()
	s.SetName("test")
	for i, d := range durations {
		pf, err := s.Pack(jetproto.Frame{
			DurationMS: d,
			Points:     []jetproto.Point{{X: int8(i % 8), Y: 0}},
		})
		if err != nil {
			t.Fatalf("pack frame %d: %v", i, err)
		}
		if err := s.Append(pf); err != nil {
			t.Fatalf("append frame %d: %v", i, err)
		}
	}
	return s
}

func TestCursor_PrimedEmitsFrameZero(t *testing.T) {
	s := makeProgram(t, 100, 200)
	c := NewCursor(s)
	t0 := time.Now()

	pf, err := c.AdvanceIfDue(t0)
	if err != nil {
		t.Fatalf("advance error: %v", err)
	}
	if pf == nil {
		t.Fatal("primed cursor should emit frame 0 on the first tick")
	}
	if c.Position() != 0 {
		t.Errorf("position = %d, expected 0", c.Position())
	}
}

func TestCursor_AdvanceTiming(t *testing.T) {
	s := makeProgram(t, 100, 200, 300)
	c := NewCursor(s)
	t0 := time.Now()

	c.AdvanceIfDue(t0) // Activates frame 0

	if pf, _ := c.AdvanceIfDue(t0.Add(99 * time.Millisecond)); pf != nil {
		t.Error("advanced before the frame duration elapsed")
	}

	pf, err := c.AdvanceIfDue(t0.Add(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("advance error: %v", err)
	}
	if pf == nil || c.Position() != 1 {
		t.Fatalf("expected frame 1 after 100 ms, position = %d", c.Position())
	}
	if pf.DurationMS != 200 {
		t.Errorf("active frame duration = %d, expected 200", pf.DurationMS)
	}
}

func TestCursor_WrapsAtLastFrame(t *testing.T) {
	s := makeProgram(t, 10, 10)
	c := NewCursor(s)
	t0 := time.Now()

	c.AdvanceIfDue(t0)
	c.AdvanceIfDue(t0.Add(10 * time.Millisecond)) // frame 1
	pf, err := c.AdvanceIfDue(t0.Add(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("advance error: %v", err)
	}
	if pf == nil || c.Position() != 0 {
		t.Errorf("expected wrap to frame 0, position = %d", c.Position())
	}
}

func TestCursor_EmptyProgram(t *testing.T) {
	c := NewCursor(jetproto.NewStore())
	pf, err := c.AdvanceIfDue(time.Now())
	if pf != nil || err != nil {
		t.Errorf("empty program should no-op, got frame %v err %v", pf, err)
	}
	pf, err = c.GotoIndex(time.Now(), 3)
	if pf != nil || err != nil {
		t.Errorf("seek on empty program should no-op, got frame %v err %v", pf, err)
	}
}

func TestCursor_GotoIndexClamps(t *testing.T) {
	s := makeProgram(t, 10, 10, 10)
	c := NewCursor(s)
	now := time.Now()

	tests := []struct {
		name     string
		index    int
		expected int
	}{
		{"below range", -5, 0},
		{"in range", 1, 1},
		{"above range", 99, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf, err := c.GotoIndex(now, tt.index)
			if err != nil {
				t.Fatalf("seek error: %v", err)
			}
			if pf == nil {
				t.Fatal("seek should return the reached frame")
			}
			if c.Position() != tt.expected {
				t.Errorf("position = %d, expected %d", c.Position(), tt.expected)
			}
		})
	}
}

func TestCursor_StepClampsAtBounds(t *testing.T) {
	s := makeProgram(t, 10, 10)
	c := NewCursor(s)
	now := time.Now()

	// No wraparound on manual stepping.
	if _, err := c.StepPrev(now); err != nil {
		t.Fatalf("step error: %v", err)
	}
	if c.Position() != 0 {
		t.Errorf("StepPrev at frame 0 moved to %d", c.Position())
	}

	c.StepNext(now)
	c.StepNext(now)
	c.StepNext(now)
	if c.Position() != 1 {
		t.Errorf("StepNext should clamp at the last frame, position = %d", c.Position())
	}
}

func TestCursor_SeekResetsTimer(t *testing.T) {
	s := makeProgram(t, 100, 100)
	c := NewCursor(s)
	t0 := time.Now()

	c.AdvanceIfDue(t0)
	c.GotoIndex(t0.Add(90*time.Millisecond), 1)

	// The frame timer restarted at the seek; 90 ms later nothing is due yet.
	if pf, _ := c.AdvanceIfDue(t0.Add(180 * time.Millisecond)); pf != nil {
		t.Error("advance fired before the sought frame's duration elapsed")
	}
	if pf, _ := c.AdvanceIfDue(t0.Add(190 * time.Millisecond)); pf == nil {
		t.Error("advance should fire once the sought frame's duration elapsed")
	}
}

func TestCursor_ResetToStartDoesNotEmit(t *testing.T) {
	s := makeProgram(t, 10)
	c := NewCursor(s)
	now := time.Now()

	c.GotoIndex(now, 0)
	c.ResetToStart()
	if c.Position() != 0 {
		t.Errorf("position = %d after reset", c.Position())
	}
	// The reset itself emits nothing; the next tick activates frame 0.
	pf, _ := c.AdvanceIfDue(now.Add(time.Millisecond))
	if pf == nil {
		t.Error("first tick after reset should activate frame 0")
	}
}
