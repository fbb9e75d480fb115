package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hostfold/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.Faint)
	subjectColor = color.New(color.Bold)
)

// newBag returns a bag sized by --max-diagnostics.
func newBag(cmd *cobra.Command) (*diag.Bag, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("--max-diagnostics must be positive, got %d", n)
	}
	return diag.NewBag(n), nil
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// printDiagnostics writes one block per diagnostic:
//
//	warning[FLD4001]: REAL(8) 1e308 * 10: floating-point overflow ...
//	  note: result +Inf
func printDiagnostics(out io.Writer, bag *diag.Bag) {
	bag.Dedup()
	bag.Sort()
	for _, d := range bag.Items() {
		fmt.Fprintf(out, "%s%s: %s: %s\n",
			severityColor(d.Severity).Sprint(d.Severity.Label()),
			codeColor.Sprintf("[%s]", d.Code.ID()),
			subjectColor.Sprint(d.Subject),
			d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(out, "  note: %s\n", n)
		}
	}
	if bag.Len() >= bag.Cap() {
		fmt.Fprintf(out, "(showing at most %d diagnostics, see --max-diagnostics)\n", bag.Cap())
	}
}
