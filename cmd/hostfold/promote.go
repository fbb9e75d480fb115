package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hostfold/internal/kind"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <kind>...",
	Short: "Show the host type each kind folds in and the chain walked to find it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPromote,
}

func runPromote(cmd *cobra.Command, args []string) error {
	kinds := make([]kind.SourceKind, 0, len(args))
	for _, a := range args {
		k, err := kind.Parse(a)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	p, err := resolveProfile(cmd)
	if err != nil {
		return err
	}
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	reg, _, err := decide(p, cache)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	unusable := 0
	for _, k := range kinds {
		chain := kind.Chain(k)
		names := make([]string, len(chain))
		for i, c := range chain {
			names[i] = c.String()
		}
		rep, via, ok := reg.WidestUsable(k)
		switch {
		case !ok:
			unusable++
			fmt.Fprintf(out, "%s: %s on %s (tried %s)\n", k, unsupportedColor.Sprint("unsupported"), p.Name, strings.Join(names, " -> "))
		case via == k:
			fmt.Fprintf(out, "%s: %s as %s\n", k, nativeColor.Sprint("native"), rep)
		default:
			fmt.Fprintf(out, "%s: %s to %s as %s (chain %s)\n", k, promotedColor.Sprint("promoted"), via, rep, strings.Join(names, " -> "))
		}
	}
	if unusable > 0 {
		return fmt.Errorf("%d of %d kinds cannot be folded on %s", unusable, len(kinds), p.Name)
	}
	return nil
}
