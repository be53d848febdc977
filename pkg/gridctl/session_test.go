// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Duco van Buuren

package gridctl

import (
	"strings"
	"testing"
	"time"

	"github.com/DucoVanBuuren/project-TWT-jetting-grid/pkg/jetproto"
)

func encodeFrames(t *testing.T, frames ...jetproto.Frame) []byte {
	t.Helper()
	data, err := jetproto.EncodeProgram(frames)
	if err != nil {
		t.Fatalf("encode program: %v", err)
	}
	return data
}

func feedSession(t *testing.T, s *Session, now time.Time, data []byte) (lastReply string, done bool) {
	t.Helper()
	for _, b := range data {
		reply, d, fatal := s.FeedByte(now, b)
		if fatal != nil {
			t.Fatalf("unexpected fatal error: %v", fatal)
		}
		if reply != "" {
			lastReply = reply
		}
		if d {
			return lastReply, true
		}
	}
	return lastReply, false
}

func TestSession_SuccessfulUpload(t *testing.T) {
	store := jetproto.NewStore()
	s := NewSession(store)
	t0 := time.Now()

	s.Reset(t0)
	if !s.WantsText() {
		t.Fatal("fresh session should want text input")
	}

	reply, done := s.HandleLine(t0, "my program")
	if done || reply != "my program" {
		t.Fatalf("name stage: reply %q done %v", reply, done)
	}
	reply, done = s.HandleLine(t0, "2")
	if done || reply != "2" {
		t.Fatalf("count stage: reply %q done %v", reply, done)
	}
	if s.WantsText() {
		t.Fatal("session should switch to the binary channel after the count")
	}

	data := encodeFrames(t,
		jetproto.Frame{DurationMS: 100, Points: []jetproto.Point{{X: 1, Y: 1}}},
		jetproto.Frame{DurationMS: 200, Points: []jetproto.Point{{X: 2, Y: 2}}},
	)
	reply, done = feedSession(t, s, t0, data)
	if !done || reply != "Success!" {
		t.Fatalf("expected success, reply %q done %v", reply, done)
	}
	if !s.Successful() {
		t.Error("session should report success")
	}

	s.Finalize()
	if store.Len() != 2 || store.Name() != "my program" {
		t.Errorf("store after success: len %d name %q", store.Len(), store.Name())
	}
}

func TestSession_CountMismatchInstallsFallback(t *testing.T) {
	store := jetproto.NewStore()
	s := NewSession(store)
	t0 := time.Now()

	s.Reset(t0)
	s.HandleLine(t0, "short program")
	s.HandleLine(t0, "3")

	data := encodeFrames(t,
		jetproto.Frame{DurationMS: 100, Points: []jetproto.Point{{X: 1, Y: 1}}},
		jetproto.Frame{DurationMS: 200, Points: []jetproto.Point{{X: 2, Y: 2}}},
	)
	reply, done := feedSession(t, s, t0, data)
	if !done {
		t.Fatal("EOP should end the session")
	}
	if !strings.Contains(reply, "Promised were 3 lines, but 2 were received") {
		t.Errorf("mismatch message = %q", reply)
	}
	if s.Successful() {
		t.Error("mismatched upload must not count as success")
	}

	s.Finalize()
	if store.Len() != 1 {
		t.Fatalf("fallback should hold one frame, got %d", store.Len())
	}
	pf, _ := store.FrameAt(0)
	if pf.DurationMS != 1000 || pf.CountPoints() != jetproto.MaxPointsPerLine {
		t.Errorf("fallback frame: duration %d, points %d", pf.DurationMS, pf.CountPoints())
	}
}

func TestSession_RejectsExcessiveCount(t *testing.T) {
	store := jetproto.NewStore()
	s := NewSession(store)
	t0 := time.Now()

	s.Reset(t0)
	s.HandleLine(t0, "too big")
	reply, done := s.HandleLine(t0, "5001")
	if !done {
		t.Fatal("count over capacity should abort the session")
	}
	if !strings.Contains(reply, "Requested were 5001 lines, but the maximum is 5000") {
		t.Errorf("capacity message = %q", reply)
	}
}

func TestSession_RejectsMalformedCount(t *testing.T) {
	store := jetproto.NewStore()
	s := NewSession(store)
	t0 := time.Now()

	s.Reset(t0)
	s.HandleLine(t0, "prog")
	reply, done := s.HandleLine(t0, "banana")
	if !done || !strings.Contains(reply, "ERROR") {
		t.Errorf("malformed count: reply %q done %v", reply, done)
	}
}

func TestSession_FatalOnCorruptStream(t *testing.T) {
	store := jetproto.NewStore()
	s := NewSession(store)
	t0 := time.Now()

	s.Reset(t0)
	s.HandleLine(t0, "prog")
	s.HandleLine(t0, "1")

	// Flood the binary channel without ever sending an EOL sentinel.
	var fatal error
	for i := 0; i < jetproto.MaxRecordSize+8 && fatal == nil; i++ {
		_, _, fatal = s.FeedByte(t0, 0x00)
	}
	if fatal == nil {
		t.Fatal("record overrun should be fatal")
	}
	if !s.Done() {
		t.Error("session should be finished after a fatal error")
	}
}

func TestSession_Timeout(t *testing.T) {
	store := jetproto.NewStore()
	s := NewSession(store)
	t0 := time.Now()

	s.Reset(t0)
	if s.TimedOut(t0.Add(UploadTimeout - time.Millisecond)) {
		t.Error("session timed out before the window elapsed")
	}
	if !s.TimedOut(t0.Add(UploadTimeout + time.Millisecond)) {
		t.Error("session should time out after the inactivity window")
	}

	// Forward progress rearms the window.
	s.HandleLine(t0.Add(2*time.Second), "prog")
	if s.TimedOut(t0.Add(5 * time.Second)) {
		t.Error("progress at t+2s should push the deadline to t+6s")
	}
}
