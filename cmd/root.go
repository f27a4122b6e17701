package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/taradepan/reaper/internal/reaperr"
	"github.com/taradepan/reaper/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "reaper",
	Short:   "Reaper finds unreachable and unused Python code",
	Long:    "Reaper parses a Python project with Tree-sitter, resolves lexical scopes and\nname bindings, and reports imports, functions, classes, branches, and local\nbindings that a runtime interpreter would never reach or use.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *reaperr.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
