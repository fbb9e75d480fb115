package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hostfold/internal/observ"
	"hostfold/internal/trace"
)

// session is the per-invocation state shared by every subcommand.
type session struct {
	ctx     context.Context
	timer   *observ.Timer
	span    *trace.Span
	cleanup []func()
	timings bool
}

// openSession applies the persistent flags: colour, tracing, profiling and
// timings. The caller must close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	root := cmd.Root()
	colorFlag, err := root.PersistentFlags().GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorFlag) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	timings, err := root.PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	s := &session{timer: observ.NewTimer(), timings: timings}

	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanup = append(s.cleanup, stopTrace)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		s.close(cmd)
		return nil, err
	}
	s.cleanup = append(s.cleanup, stopProf)

	s.ctx, s.span = trace.Start(cmd.Context(), trace.ScopeCommand, cmd.Name())
	return s, nil
}

// phase times fn under name.
func (s *session) phase(name string, fn func() (string, error)) error {
	return s.timer.Measure(name, fn)
}

func (s *session) close(cmd *cobra.Command) {
	if s.span != nil {
		s.span.End("")
		s.span = nil
	}
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	s.cleanup = nil
	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
	}
}
