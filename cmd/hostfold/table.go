package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"hostfold/internal/registry"
)

var tableFormat string

func init() {
	tableCmd.Flags().StringVar(&tableFormat, "format", "pretty", "output format (pretty|json|msgpack)")
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show the correspondence between source kinds and host types",
	Args:  cobra.NoArgs,
	RunE:  runTable,
}

func runTable(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(tableFormat)
	switch format {
	case "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or msgpack)", tableFormat)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	var reg *registry.Registry
	err = s.phase("decide", func() (string, error) {
		p, err := resolveProfile(cmd)
		if err != nil {
			return "", err
		}
		cache, err := openCache(cmd)
		if err != nil {
			return "", err
		}
		var hit bool
		if reg, hit, err = decide(p, cache); err != nil {
			return "", err
		}
		if hit {
			return p.Name + " (cached)", nil
		}
		return p.Name, nil
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return renderTableJSON(out, reg)
	case "msgpack":
		return reg.Encode(out)
	}
	renderTablePretty(out, reg)
	return nil
}

type tableRow struct {
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Host      string `json:"host,omitempty"`
	Size      int    `json:"size,omitempty"`
	Digits    int    `json:"digits,omitempty"`
	Via       string `json:"via,omitempty"`
	Supported bool   `json:"supported"`
}

func tableRows(reg *registry.Registry) []tableRow {
	entries := reg.Entries()
	rows := make([]tableRow, 0, len(entries))
	for _, e := range entries {
		row := tableRow{Kind: e.Kind.String(), Supported: e.Supported, Status: entryStatus(e)}
		if !e.Via.IsZero() {
			row.Host, row.Size, row.Digits = e.Rep.Name, e.Rep.Size, e.Rep.Digits
		}
		if e.Promoted() {
			row.Via = e.Via.String()
		}
		rows = append(rows, row)
	}
	return rows
}

func entryStatus(e registry.Entry) string {
	switch {
	case e.Supported:
		return "native"
	case e.Promoted():
		return "promoted"
	default:
		return "unsupported"
	}
}

var (
	nativeColor      = color.New(color.FgGreen)
	promotedColor    = color.New(color.FgYellow)
	unsupportedColor = color.New(color.FgRed)
	headerColor      = color.New(color.Bold, color.Underline)
)

func statusColor(status string) *color.Color {
	switch status {
	case "native":
		return nativeColor
	case "promoted":
		return promotedColor
	default:
		return unsupportedColor
	}
}

func renderTablePretty(out io.Writer, reg *registry.Registry) {
	rows := tableRows(reg)
	header := []string{"KIND", "STATUS", "HOST TYPE", "VIA"}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range []string{r.Kind, r.Status, r.Host, r.Via} {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	fmt.Fprintf(out, "profile %s\n", reg.Profile().Name)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(out, "  ")
		}
		pad := widths[i] - runewidth.StringWidth(h)
		fmt.Fprint(out, headerColor.Sprint(h)+strings.Repeat(" ", pad))
	}
	fmt.Fprintln(out)
	for _, r := range rows {
		// Pad before colouring; escape codes have no display width.
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			runewidth.FillRight(r.Kind, widths[0]),
			statusColor(r.Status).Sprint(runewidth.FillRight(r.Status, widths[1])),
			runewidth.FillRight(r.Host, widths[2]),
			r.Via)
	}
}

func renderTableJSON(out io.Writer, reg *registry.Registry) error {
	payload := struct {
		Profile string     `json:"profile"`
		Kinds   []tableRow `json:"kinds"`
	}{Profile: reg.Profile().Name, Kinds: tableRows(reg)}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
