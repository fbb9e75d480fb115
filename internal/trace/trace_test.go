package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeCommand, false},
		{LevelError, ScopeCommand, false},
		{LevelCommand, ScopeCommand, true},
		{LevelCommand, ScopeFold, false},
		{LevelFold, ScopeFold, true},
		{LevelFold, ScopeGuard, false},
		{LevelDebug, ScopeStep, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %t, want %t", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel("FOLD"); err != nil || l != LevelFold {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("phase"); err == nil {
		t.Fatal("unknown level accepted")
	}
	if m, err := ParseMode("log"); err != nil || m != ModeLog {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}

func TestRingSpans(t *testing.T) {
	ring := NewRingTracer(8, LevelFold)
	outer := Begin(ring, ScopeCommand, "fold", 0)
	inner := Begin(ring, ScopeFold, "REAL(8) 1/3", outer.ID())
	inner.WithExtra("flags", "inexact").End("ok")
	Begin(ring, ScopeGuard, "guard", inner.ID()).End("")
	Point(ring, ScopeGuard, "raise", "", inner.ID(), nil)
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4 (guard scope filtered)", len(events))
	}
	if events[1].ParentID != outer.ID() || events[2].Extra["flags"] != "inexact" {
		t.Fatalf("unexpected events: %+v", events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatal("sequence numbers must increase")
		}
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeStep, name, "", 0, nil)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("snapshot = %+v", events)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatText)
	Point(st, ScopeGuard, "restore", "overflow", 7, map[string]string{"z": "1", "a": "2"})
	line := buf.String()
	if !strings.Contains(line, "[guard]   • restore (overflow) {a=2, z=1}\n") {
		t.Fatalf("line = %q", line)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelCommand, Mode: ModeStream, Output: &buf, Format: FormatNDJSON})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeCommand, "check", 0).End("done")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "end" || ev["detail"] != "done" || ev["scope"] != "command" {
		t.Fatalf("event = %v", ev)
	}
}

func TestZapTracer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewZapTracer(zap.New(core), LevelDebug)
	Begin(tr, ScopeCommand, "table", 0).End("")
	Point(tr, ScopeGuard, "restore", "inexact", 0, map[string]string{"depth": "1"})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d log entries", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[2].Level != zapcore.DebugLevel {
		t.Fatalf("levels %v %v", entries[0].Level, entries[2].Level)
	}
	fields := entries[2].ContextMap()
	if fields["detail"] != "inexact" || fields["depth"] != "1" || fields["scope"] != "guard" {
		t.Fatalf("fields = %v", fields)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if Begin(tr, ScopeCommand, "x", 0).ID() != 0 {
		t.Fatal("span on a disabled tracer must be inert")
	}
}

func TestContext(t *testing.T) {
	ring := NewRingTracer(4, LevelFold)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer should be Nop")
	}
	span := Begin(ring, ScopeCommand, "cmd", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx).SpanID != span.ID() {
		t.Fatal("span not propagated")
	}
}

func TestMultiCopiesEvents(t *testing.T) {
	a, b := NewRingTracer(4, LevelDebug), NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, a, b)
	Point(m, ScopeStep, "add", "", 0, nil)
	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Fatal("fan-out failed")
	}
}

func TestMultiRing(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatText), ring)
	if got, ok := m.Ring(); !ok || got != ring {
		t.Fatalf("Ring() = %p, %v", got, ok)
	}
	if _, ok := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatText)).Ring(); ok {
		t.Fatal("stream-only multi reported a ring")
	}
}

func TestStartNestsUnderContextSpan(t *testing.T) {
	ring := NewRingTracer(8, LevelFold)
	ctx := WithTracer(context.Background(), ring)
	ctx, outer := Start(ctx, ScopeCommand, "check")
	_, inner := Start(ctx, ScopeFold, "fold")
	inner.End("")
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("%d events, want 4", len(events))
	}
	if events[1].ParentID != outer.ID() || events[0].ParentID != 0 {
		t.Errorf("parents = %d, %d; want 0, %d", events[0].ParentID, events[1].ParentID, outer.ID())
	}
	if CurrentSpan(ctx).SpanID != outer.ID() {
		t.Error("context does not carry the outer span")
	}
}
