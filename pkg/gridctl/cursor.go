// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
)

// Cursor tracks the playback position inside the program store: the current
// frame index plus the instant that frame became active. It advances
// automatically during Running and on manual seek commands in any mode.
type Cursor struct {
	store      *jetproto.Store
	pos        int
	frameStart time.Time
	primed     bool // Set after ResetToStart; the next tick activates frame 0
}

// NewCursor returns a cursor over the given store, primed at frame 0.
func NewCursor(store *jetproto.Store) *Cursor {
	return &Cursor{store: store, primed: true}
}

// Position returns the current zero-based frame index.
func (c *Cursor) Position() int {
	return c.pos
}

// ResetToStart rewinds to frame 0 without actuating anything. The first
// emission happens on the next AdvanceIfDue call; this is how a freshly
// uploaded program becomes active without the upload path driving valves.
func (c *Cursor) ResetToStart() {
	c.pos = 0
	c.primed = true
}

// AdvanceIfDue moves to the next frame once the current frame's duration has
// elapsed, wrapping from the last frame back to 0, and returns the newly
// active frame. It returns nil while the current frame is still running or
// when the program is empty.
func (c *Cursor) AdvanceIfDue(now time.Time) (*jetproto.PackedFrame, error) {
	n := c.store.Len()
	if n == 0 {
		return nil, nil
	}
	if c.pos >= n {
		// The program shrank underneath us; treat as a fresh start.
		c.ResetToStart()
	}

	if c.primed {
		c.primed = false
		c.frameStart = now
		return c.store.FrameAt(c.pos)
	}

	cur, err := c.store.FrameAt(c.pos)
	if err != nil {
		return nil, err
	}
	if now.Sub(c.frameStart) < time.Duration(cur.DurationMS)*time.Millisecond {
		return nil, nil
	}

	c.pos = (c.pos + 1) % n
	c.frameStart = now
	return c.store.FrameAt(c.pos)
}

// GotoIndex seeks to frame i, clamping into [0, len-1], and returns the
// frame at the final position for immediate activation. Returns nil on an
// empty program.
func (c *Cursor) GotoIndex(now time.Time, i int) (*jetproto.PackedFrame, error) {
	n := c.store.Len()
	if n == 0 {
		return nil, nil
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	c.pos = i
	c.frameStart = now
	c.primed = false
	return c.store.FrameAt(c.pos)
}

// StepNext seeks one frame forward, clamping at the last frame.
func (c *Cursor) StepNext(now time.Time) (*jetproto.PackedFrame, error) {
	return c.GotoIndex(now, c.pos+1)
}

// StepPrev seeks one frame back, clamping at frame 0.
func (c *Cursor) StepPrev(now time.Time) (*jetproto.PackedFrame, error) {
	return c.GotoIndex(now, c.pos-1)
}
