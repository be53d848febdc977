// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
)

// UploadTimeout is the inactivity window of an upload session. The deadline
// starts at entry into the Uploading mode and rearms on every unit of
// forward progress (stage advance or appended record).
const UploadTimeout = 4000 * time.Millisecond

// Upload session stages
const (
	stageAwaitName = iota
	stageAwaitCount
	stageAwaitRecords
	stageDone
)

// Session is the upload state machine. It fills the program store from two
// input channels: the text channel carries the program name and the promised
// frame count, the binary channel carries the frame records and the
// end-of-program marker.
//
// A session ends in one of three ways: success, a recoverable abort
// (capacity, count mismatch, timeout), or a fatal decoder fault. After any
// non-success the finalizer replaces the program with the safe fallback.
type Session struct {
	store   *jetproto.Store
	decoder *jetproto.RecordDecoder

	stage        int
	promised     int
	successful   bool
	lastProgress time.Time
}

// NewSession returns a session writing into the given store.
func NewSession(store *jetproto.Store) *Session {
	return &Session{
		store:   store,
		decoder: jetproto.NewRecordDecoder(),
		stage:   stageDone,
	}
}

// Reset starts a fresh session: the store is cleared and the session waits
// for the program name on the text channel.
func (s *Session) Reset(now time.Time) {
	s.store.Clear()
	s.decoder.Reset()
	s.stage = stageAwaitName
	s.promised = 0
	s.successful = false
	s.lastProgress = now
}

// Done reports whether the session has finished, successfully or not.
func (s *Session) Done() bool {
	return s.stage == stageDone
}

// Successful reports whether the session completed with a verified program.
func (s *Session) Successful() bool {
	return s.successful
}

// WantsText reports whether the session currently consumes the text channel
// (name and count stages) rather than the binary channel.
func (s *Session) WantsText() bool {
	return s.stage == stageAwaitName || s.stage == stageAwaitCount
}

// HandleLine feeds one text token to the session. The returned reply is
// echoed to the host; done reports that the session ended (only on abort
// paths here).
func (s *Session) HandleLine(now time.Time, line string) (reply string, done bool) {
	switch s.stage {
	case stageAwaitName:
		s.store.SetName(strings.TrimSpace(line))
		s.stage = stageAwaitCount
		s.lastProgress = now
		return s.store.Name(), false

	case stageAwaitCount:
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 0 {
			s.stage = stageDone
			return fmt.Sprintf("ERROR: Malformed frame count %q.", strings.TrimSpace(line)), true
		}
		if n > jetproto.MaxProgramLines {
			s.stage = stageDone
			return fmt.Sprintf(
				"ERROR: Protocol program exceeds maximum number of lines. "+
					"Requested were %d lines, but the maximum is %d.",
				n, jetproto.MaxProgramLines), true
		}
		s.promised = n
		s.stage = stageAwaitRecords
		s.lastProgress = now
		return strconv.Itoa(n), false

	default:
		return "", false
	}
}

// FeedByte feeds one binary byte to the session. A non-nil fatal error means
// structural corruption of the stream; the caller must halt. The reply, when
// non-empty, is sent to the host; done reports the end of the session.
func (s *Session) FeedByte(now time.Time, b byte) (reply string, done bool, fatal error) {
	if s.stage != stageAwaitRecords {
		return "", false, nil
	}

	rec, err := s.decoder.DecodeByte(b)
	if err != nil {
		s.stage = stageDone
		return "", true, fmt.Errorf("upload stream corrupted: %w", err)
	}
	if rec == nil {
		return "", false, nil
	}

	if rec.EOP {
		s.stage = stageDone
		if s.store.Len() != s.promised {
			return fmt.Sprintf(
				"ERROR: Protocol program received incorrect number of "+
					"lines. Promised were %d lines, but %d were received.",
				s.promised, s.store.Len()), true, nil
		}
		s.successful = true
		return "Success!", true, nil
	}

	// One record decodes atomically into one appended frame.
	pf, err := s.store.Pack(jetproto.Frame{DurationMS: rec.DurationMS, Points: rec.Points})
	if err != nil {
		s.stage = stageDone
		return "", true, fmt.Errorf("upload record unpackable: %w", err)
	}
	if err := s.store.Append(pf); err != nil {
		s.stage = stageDone
		return fmt.Sprintf(
			"ERROR: Protocol program exceeds maximum number of lines. "+
				"Received over %d lines, but the maximum is %d.",
			s.store.Len(), jetproto.MaxProgramLines), true, nil
	}
	s.lastProgress = now
	return "", false, nil
}

// TimedOut reports whether the inactivity window has elapsed.
func (s *Session) TimedOut(now time.Time) bool {
	return s.stage != stageDone && now.Sub(s.lastProgress) > UploadTimeout
}

// Abort marks the session as finished without success.
func (s *Session) Abort() {
	s.stage = stageDone
}

// Finalize enforces the safety guarantee on session exit: unless the upload
// fully succeeded, the store is reseeded with the fallback program so the
// rig never holds a partial or empty program. The caller resets the cursor;
// nothing is actuated here.
func (s *Session) Finalize() {
	if !s.successful {
		jetproto.LoadFallback(s.store)
	}
}
