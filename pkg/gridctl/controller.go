// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
)

// Identity is the reply to the `id?` command.
const Identity = "Jetting Grid"

// Config wires the controller to its collaborators. Nil sinks default to
// discarding implementations; a nil Output discards replies.
type Config struct {
	Valves   ValveSink
	Pulse    PulseSink
	Visual   VisualSink
	Readings ReadingsSource
	Output   io.Writer
}

// Controller is the single-threaded control core of the jetting grid. All
// state lives here, threaded explicitly rather than in package globals.
//
// The caller owns the I/O loop and drives the controller with three calls:
// HandleLine for each text command, FeedBytes for binary upload data, and
// Tick once per control cycle.
type Controller struct {
	store     *jetproto.Store
	cursor    *Cursor
	session   *Session
	machine   *fsm
	interlock *Interlock

	valves   ValveSink
	pulse    PulseSink
	visual   VisualSink
	readings ReadingsSource
	out      io.Writer

	mask       Mask
	haltReason string
}

// NewController builds a controller with a fallback program installed, in
// mode Off, at the given start time.
func NewController(cfg Config, now time.Time) *Controller {
	if cfg.Valves == nil {
		cfg.Valves = NullValveSink{}
	}
	if cfg.Pulse == nil {
		cfg.Pulse = NullPulseSink{}
	}
	if cfg.Visual == nil {
		cfg.Visual = NullVisualSink{}
	}
	if cfg.Readings == nil {
		cfg.Readings = NewSyntheticReadings(now)
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	store := jetproto.NewStore()
	jetproto.LoadFallback(store)

	c := &Controller{
		store:     store,
		cursor:    NewCursor(store),
		interlock: NewInterlock(),
		valves:    cfg.Valves,
		pulse:     cfg.Pulse,
		visual:    cfg.Visual,
		readings:  cfg.Readings,
		out:       cfg.Output,
	}
	c.session = NewSession(store)

	c.machine = newFSM(ModeOff, map[Mode]stateFuncs{
		ModeOff: {
			enter: c.enterOff,
		},
		ModePaused: {},
		ModeRunning: {
			update: c.updateRunning,
		},
		ModeUploading: {
			enter: c.enterUploading,
			exit:  c.exitUploading,
		},
		ModeHalted: {
			enter: c.enterHalted,
		},
	}, now)

	return c
}

// Mode returns the current operating mode.
func (c *Controller) Mode() Mode {
	return c.machine.mode
}

// Halted reports whether the controller hit a fatal fault.
func (c *Controller) Halted() bool {
	return c.machine.mode == ModeHalted
}

// Mask returns the live valve bitmask.
func (c *Controller) Mask() Mask {
	return c.mask
}

// Program returns the program store. Read-only for callers; the store is
// written only by the upload session and the preset loader.
func (c *Controller) Program() *jetproto.Store {
	return c.store
}

// UploadWantsText reports whether an active upload session is still in its
// text stages. I/O loops use this to route incoming bytes between the line
// reader and FeedBytes.
func (c *Controller) UploadWantsText() bool {
	return c.session.WantsText()
}

// position returns the 1-based frame index used on the text surface.
func (c *Controller) position() int {
	return c.cursor.Position() + 1
}

// Tick runs one control cycle: periodic FSM work, the upload timeout check,
// and the safety interlock. Call it at the loop rate of the rig.
func (c *Controller) Tick(now time.Time) {
	if c.Halted() {
		return
	}

	c.machine.Update(now)

	if c.machine.mode == ModeUploading && c.session.TimedOut(now) {
		fmt.Fprintln(c.out, "ERROR: Loading in protocol program timed out.")
		c.session.Abort()
		c.machine.TransitionTo(now, ModeOff)
	}

	c.interlock.Update(now, c.mask, c.pulse)
}

// FeedBytes feeds binary upload data to the controller. Outside the binary
// stage of an upload the bytes are discarded.
func (c *Controller) FeedBytes(now time.Time, data []byte) {
	if c.machine.mode != ModeUploading || c.session.WantsText() {
		return
	}
	for _, b := range data {
		reply, done, fatal := c.session.FeedByte(now, b)
		if reply != "" {
			fmt.Fprintln(c.out, reply)
		}
		if fatal != nil {
			c.halt(now, fatal.Error())
			return
		}
		if done {
			c.machine.TransitionTo(now, ModeOff)
			return
		}
	}
}

// HandleLine processes one line from the text channel: a command, or one of
// the text stages of an upload. The command dispatcher is suspended while a
// binary upload is in progress and permanently after a halt.
func (c *Controller) HandleLine(now time.Time, line string) {
	if c.Halted() {
		return
	}

	if c.machine.mode == ModeUploading {
		if !c.session.WantsText() {
			return
		}
		reply, done := c.session.HandleLine(now, line)
		if reply != "" {
			fmt.Fprintln(c.out, reply)
		}
		if done {
			c.machine.TransitionTo(now, ModeOff)
		}
		return
	}

	c.dispatch(now, strings.TrimSpace(line))
}

func (c *Controller) dispatch(now time.Time, cmd string) {
	switch {
	case cmd == "id?":
		fmt.Fprintln(c.out, Identity)

	case cmd == "pos?":
		fmt.Fprintln(c.out, c.position())

	case cmd == "p?":
		fmt.Fprintf(c.out, "%s\t%d\n", c.store.Name(), c.store.Len())

	case cmd == "?":
		r := c.readings.Read(now)
		fmt.Fprintf(c.out,
			"%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			c.position(),
			r.PresMilliAmp[0], r.PresMilliAmp[1], r.PresMilliAmp[2], r.PresMilliAmp[3],
			r.PresBar[0], r.PresBar[1], r.PresBar[2], r.PresBar[3])

	case cmd == "upload":
		c.machine.TransitionTo(now, ModeUploading)

	case cmd == "play":
		c.machine.TransitionTo(now, ModeRunning)

	case cmd == "stop":
		c.machine.TransitionTo(now, ModeOff)
		fmt.Fprintln(c.out, c.position())

	case cmd == "pause":
		c.machine.TransitionTo(now, ModePaused)
		fmt.Fprintln(c.out, c.position())

	case cmd == ",":
		c.seek(now, c.cursor.Position()-1)

	case cmd == ".":
		c.seek(now, c.cursor.Position()+1)

	case strings.HasPrefix(cmd, "goto"):
		n := parseTrailingInt(cmd, "goto")
		if n < 1 {
			n = 1
		}
		c.seek(now, n-1)

	case strings.HasPrefix(cmd, "preset"):
		idx := parseTrailingInt(cmd, "preset")
		if idx < 0 {
			idx = 0
		}
		if err := jetproto.LoadPreset(c.store, idx); err != nil {
			fmt.Fprintf(c.out, "ERROR: %v\n", err)
			return
		}
		c.cursor.ResetToStart()

	case cmd == "b?":
		pf, err := c.store.FrameAt(c.cursor.Position())
		if err != nil {
			c.halt(now, err.Error())
			return
		}
		fmt.Fprintln(c.out, jetproto.FormatPoints(c.store.Unpack(pf)))

	case cmd == "proto?":
		fmt.Fprint(c.out, jetproto.FormatProgram(c.store))

	case cmd == "fsm?":
		fmt.Fprintln(c.out, c.machine.mode)

	case cmd == "halt":
		c.halt(now, "Halted by user command.")

	case cmd == "override_safety":
		c.interlock.SetOverride(true)

	case cmd == "restore_safety":
		c.interlock.SetOverride(false)
	}
}

// seek moves the cursor with clamping and actuates the reached frame
// immediately, without waiting for the next playback tick.
func (c *Controller) seek(now time.Time, idx int) {
	pf, err := c.cursor.GotoIndex(now, idx)
	if err != nil {
		c.halt(now, err.Error())
		return
	}
	if pf != nil {
		c.apply(pf)
	}
	fmt.Fprintln(c.out, c.position())
}

// apply pushes a frame's bitmask to the actuator and visualization sinks.
func (c *Controller) apply(pf *jetproto.PackedFrame) {
	c.mask = pf.Rows
	c.valves.SetMask(c.mask)
	c.visual.ShowMask(c.mask)
}

func (c *Controller) halt(now time.Time, reason string) {
	c.haltReason = reason
	fmt.Fprintf(c.out, "HALT: %s\n", reason)
	c.machine.TransitionTo(now, ModeHalted)
}

// HaltReason returns the fatal fault message, empty when not halted.
func (c *Controller) HaltReason() string {
	return c.haltReason
}

// FSM hooks

func (c *Controller) enterOff(now time.Time) {
	c.mask = Mask{}
	c.valves.SetMask(c.mask)
	c.visual.Clear()
}

func (c *Controller) updateRunning(now time.Time) {
	pf, err := c.cursor.AdvanceIfDue(now)
	if err != nil {
		c.halt(now, err.Error())
		return
	}
	if pf != nil {
		c.apply(pf)
	}
}

func (c *Controller) enterUploading(now time.Time) {
	c.session.Reset(now)
}

func (c *Controller) exitUploading(now time.Time) {
	c.session.Finalize()
	c.cursor.ResetToStart()
}

func (c *Controller) enterHalted(now time.Time) {
	c.mask = Mask{}
	c.valves.SetMask(c.mask)
	c.visual.ShowHalt()
	c.interlock.ForceOff(c.pulse)
}

// parseTrailingInt extracts the integer following a command prefix, e.g. 7
// from "goto7". Returns -1 when no valid integer follows.
func parseTrailingInt(cmd, prefix string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(cmd, prefix)))
	if err != nil {
		return -1
	}
	return n
}
