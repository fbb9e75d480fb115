package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestProgressAppliesEvents(t *testing.T) {
	events := make(chan Event)
	m := NewProgressModel("checking profiles", []string{"go", "x86_64-linux-gnu"}, events).(*progressModel)

	m.Update(eventMsg(Event{Item: "go", Status: StatusWorking}))
	if got := m.fraction(); got != 0.25 {
		t.Errorf("fraction after one working item = %v, want 0.25", got)
	}
	m.Update(eventMsg(Event{Item: "go", Status: StatusDone, Note: "15 kinds"}))
	m.Update(eventMsg(Event{Item: "x86_64-linux-gnu", Status: StatusFailed}))
	m.Update(eventMsg(Event{Item: "unknown", Status: StatusDone}))
	if got := m.fraction(); got != 1 {
		t.Errorf("fraction = %v, want 1", got)
	}

	view := m.View()
	for _, want := range []string{"checking profiles", "15 kinds", "ok", "failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if cmd == nil || !m.done {
		t.Fatal("done message did not quit")
	}
	if !strings.Contains(m.View(), "done: checking profiles") {
		t.Errorf("final view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("世界", 10)
	got := truncate(long, 9)
	if w := runewidth.StringWidth(got); w > 9 {
		t.Errorf("truncate width = %d, want <= 9", w)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncate(%q) = %q, want ellipsis", long, got)
	}
	if got := truncate("go", 9); got != "go" {
		t.Errorf("short value changed: %q", got)
	}
}
