package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"hostfold/internal/hostprofile"
)

var profilesFormat string

func init() {
	profilesCmd.Flags().StringVar(&profilesFormat, "format", "pretty", "output format (pretty|json)")
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the builtin host profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format := strings.ToLower(profilesFormat)
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", profilesFormat)
		}
		profiles := hostprofile.Builtins()
		out := cmd.OutOrStdout()

		if format == "json" {
			type payload struct {
				Name   string                  `json:"name"`
				Digest string                  `json:"digest"`
				Int128 bool                    `json:"int128"`
				Floats []hostprofile.FloatType `json:"floats"`
			}
			items := make([]payload, len(profiles))
			for i, p := range profiles {
				d := p.Digest()
				items[i] = payload{Name: p.Name, Digest: hex.EncodeToString(d[:]), Int128: p.Int128, Floats: p.Floats}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		width := 0
		for _, p := range profiles {
			width = max(width, runewidth.StringWidth(p.Name))
		}
		for _, p := range profiles {
			d := p.Digest()
			floats := make([]string, len(p.Floats))
			for i, f := range p.Floats {
				floats[i] = fmt.Sprintf("%s/%d", f.Name, f.Digits)
			}
			fmt.Fprintf(out, "%s  %s  %s\n", runewidth.FillRight(p.Name, width), hex.EncodeToString(d[:6]), strings.Join(floats, ", "))
		}
		return nil
	},
}
