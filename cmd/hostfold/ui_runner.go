package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"hostfold/internal/hostprofile"
	"hostfold/internal/profcheck"
	"hostfold/internal/ui"
)

type checkOutcome struct {
	results []profcheck.Result
	err     error
}

// runCheckWithUI checks profiles while a progress view renders to out.
func runCheckWithUI(ctx context.Context, out io.Writer, profiles []hostprofile.Profile, opts profcheck.Options) ([]profcheck.Result, error) {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	// Three events per profile; the buffer keeps workers from blocking on
	// a slow renderer.
	events := make(chan ui.Event, 3*len(profiles))
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		o := opts
		o.Progress = ui.ChannelSink{Ch: events}
		res, err := profcheck.CheckAll(ctx, profiles, o)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking host profiles", names, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
