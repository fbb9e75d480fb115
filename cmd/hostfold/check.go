package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"hostfold/internal/diag"
	"hostfold/internal/hostprofile"
	"hostfold/internal/profcheck"
)

var (
	checkJobs int
	checkUI   string
)

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", runtime.GOMAXPROCS(0), "profiles checked concurrently")
	checkCmd.Flags().StringVar(&checkUI, "ui", "auto", "progress view (auto|on|off)")
}

var checkCmd = &cobra.Command{
	Use:   "check [profile|file.toml]...",
	Short: "Verify host profiles and the tables decided from them",
	Long: `check validates each profile, decides its correspondence table, checks the
table's invariants and, with --cache, compares it with the cached snapshot.
The native "go" profile also runs a self-test of host arithmetic against
Go's own. Without arguments every builtin profile is checked.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	mode, err := readUIMode(checkUI)
	if err != nil {
		return err
	}
	if checkJobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", checkJobs)
	}
	profiles, err := profilesFromArgs(args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	bag, err := newBag(cmd)
	if err != nil {
		return err
	}
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	opts := profcheck.Options{Cache: cache, Jobs: checkJobs, Reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag})}

	var results []profcheck.Result
	err = s.phase("check", func() (string, error) {
		var err error
		if shouldUseTUI(mode, len(profiles)) {
			results, err = runCheckWithUI(s.ctx, cmd.OutOrStdout(), profiles, opts)
		} else {
			results, err = profcheck.CheckAll(s.ctx, profiles, opts)
		}
		return fmt.Sprintf("%d profiles", len(profiles)), err
	})
	if err != nil {
		return err
	}

	failed := printCheckResults(cmd.OutOrStdout(), results)
	printDiagnostics(cmd.ErrOrStderr(), bag)
	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", failed, len(results))
	}
	return nil
}

// profilesFromArgs resolves names and TOML paths; no arguments means every
// builtin, the native profile included.
func profilesFromArgs(args []string) ([]hostprofile.Profile, error) {
	if len(args) == 0 {
		return hostprofile.Builtins(), nil
	}
	out := make([]hostprofile.Profile, 0, len(args))
	for _, a := range args {
		var p hostprofile.Profile
		var err error
		if strings.HasSuffix(a, ".toml") {
			if _, statErr := os.Stat(a); statErr != nil {
				return nil, statErr
			}
			p, err = hostprofile.Load(a)
		} else {
			p, err = profileByName(a)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func printCheckResults(out io.Writer, results []profcheck.Result) (failed int) {
	for _, r := range results {
		status := nativeColor.Sprint("ok")
		if !r.OK() {
			status = unsupportedColor.Sprint("FAILED")
			failed++
		}
		var notes []string
		if r.Cached {
			notes = append(notes, "cached")
		}
		if r.SelfTest {
			notes = append(notes, "self-test")
		}
		if n := len(r.Problems); n > 0 {
			notes = append(notes, fmt.Sprintf("%d problems", n))
		}
		line := fmt.Sprintf("%-24s %s  %d native, %d promoted  %x", r.Profile, status, r.Supported, r.Promoted, r.Digest[:6])
		if len(notes) > 0 {
			line += "  (" + strings.Join(notes, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return failed
}

