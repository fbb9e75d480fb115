// Package observ times the phases of a CLI command.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one timed step, such as deciding a registry or folding.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	Err   bool
}

// Timer records phases. It is safe for concurrent use, so parallel profile
// checks can record into one timer.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens a phase and returns the handle End takes.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase idx. Unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	t.finish(idx, note, false)
}

func (t *Timer) finish(idx int, note string, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur, p.Note, p.Err = time.Since(p.Start), note, failed
}

// Measure runs fn as the phase name. fn returns the phase note; a failed
// phase without a note is noted "failed".
func (t *Timer) Measure(name string, fn func() (string, error)) error {
	idx := t.Begin(name)
	note, err := fn()
	if err != nil && note == "" {
		note = "failed"
	}
	t.finish(idx, note, err != nil)
	return err
}

// Summary renders every phase and their total, one per line.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-24s %9.3f ms", p.Name, p.DurationMS)
		if p.Failed {
			line += " !"
		}
		if p.Note != "" {
			line += "  // " + p.Note
		}
		sb.WriteString(line + "\n")
	}
	fmt.Fprintf(&sb, "  %-24s %9.3f ms\n", "total", r.TotalMS)
	return sb.String()
}

// PhaseReport is the JSON form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Failed     bool    `json:"failed,omitempty"`
}

// Report is the JSON form of a timer. Concurrent phases overlap, so
// TotalMS sums durations rather than measuring wall time.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note, Failed: p.Err})
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
