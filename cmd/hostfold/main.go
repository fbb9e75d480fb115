package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hostfold/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "hostfold",
	Short: "Host type correspondence and constant folding bridge",
	Long: `hostfold shows which source kinds a host can represent natively, how
unsupported kinds are promoted, and folds constant expressions with host
arithmetic under a controlled floating-point environment`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(foldCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	registerPersistentFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerPersistentFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	flags.String("profile", "go", "host profile to use (go or a builtin name, see 'profiles')")
	flags.String("profile-file", "", "load the host profile from a TOML file")
	flags.Bool("cache", false, "keep decided tables in the user cache directory")

	flags.String("trace", "", "write trace events to this file ('-' for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|command|fold|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both|log)")
	flags.String("trace-format", "auto", "trace output format (auto|text|json)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")

	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
