package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newBuf(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func lines(buf *bytes.Buffer) []string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestHitMissSilentByDefault(t *testing.T) {
	h, buf := newBuf(Options{})
	h.Hit("k")
	h.Miss("k")
	if buf.Len() != 0 {
		t.Fatalf("hit/miss logged without LogHitMiss: %s", buf.String())
	}
}

func TestHitMissSampled(t *testing.T) {
	h, buf := newBuf(Options{LogHitMiss: true, HitMissEvery: 3})
	for i := 0; i < 9; i++ {
		h.Miss("k")
	}
	if got := len(lines(buf)); got != 3 {
		t.Fatalf("logged %d lines, want 3", got)
	}
}

func TestSelfHealSampled(t *testing.T) {
	h, buf := newBuf(Options{SelfHealEvery: 2})
	for i := 0; i < 4; i++ {
		h.SelfHeal("entry:console:k", "expired")
	}
	ls := lines(buf)
	if len(ls) != 2 {
		t.Fatalf("logged %d lines, want 2", len(ls))
	}
	if !strings.Contains(ls[0], "reason=expired") {
		t.Fatalf("line = %s", ls[0])
	}
}

func TestKeysRedacted(t *testing.T) {
	h, buf := newBuf(Options{})
	h.ProviderSetRejected("entry:console:instances:cloudA")
	if strings.Contains(buf.String(), "cloudA") {
		t.Fatalf("key leaked: %s", buf.String())
	}

	h2, buf2 := newBuf(Options{Redact: func(s string) string { return "<" + s + ">" }})
	h2.SlowCompute("instances:cloudA", 2*time.Second)
	if !strings.Contains(buf2.String(), "<instances:cloudA>") || !strings.Contains(buf2.String(), "took=2s") {
		t.Fatalf("line = %s", buf2.String())
	}
}

func TestErrorEvents(t *testing.T) {
	h, buf := newBuf(Options{})
	boom := errors.New("boom")
	h.ComputeError("k", boom)
	h.ProviderError("get", "k", boom)
	h.GenSnapshotError(4, boom)
	h.GenBumpError("scope:console:instances", boom)
	h.InvalidateOutage("k", boom, boom)
	h.StaleStoreSkipped("k")

	ls := lines(buf)
	if len(ls) != 6 {
		t.Fatalf("logged %d lines, want 6:\n%s", len(ls), buf.String())
	}
	if !strings.Contains(ls[4], "level=ERROR") || !strings.Contains(ls[4], "timedcache.invalidate_outage") {
		t.Fatalf("outage line = %s", ls[4])
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{LogHitMiss: true})
	h.Hit("k")
	h.InvalidateOutage("k", nil, nil)
}
