package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taradepan/reaper/internal/analyze"
	"github.com/taradepan/reaper/internal/config"
	"github.com/taradepan/reaper/internal/discovery"
	"github.com/taradepan/reaper/internal/reaperr"
	"github.com/taradepan/reaper/internal/report"
)

var (
	configPath  string
	jsonOutput  bool
	includeTests bool
	sequential  bool
)

var checkCmd = &cobra.Command{
	Use:   "check <path...>",
	Short: "Check one or more Python projects for dead code",
	Long: `Check walks each given directory, parses every discovered .py file, and
reports unused imports, unreachable code, dead branches, and other
statically-provable dead code.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var all []analyze.Source

		for _, arg := range args {
			dir, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("cannot resolve path %s: %w", arg, err)
			}

			sources, err := collectSources(dir)
			if err != nil {
				return err
			}
			all = append(all, sources...)
		}

		projectCfg, err := config.LoadProjectConfig(".", configPath)
		if err != nil {
			return fmt.Errorf("load project config: %w", err)
		}
		rulesCfg := projectCfg.ToRulesConfig()

		ctx := context.Background()
		var result analyze.Result
		if sequential {
			result, err = analyze.RunSequential(ctx, all, rulesCfg)
		} else {
			result, err = analyze.RunParallel(ctx, all, rulesCfg)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := report.JSON(cmd.OutOrStdout(), result.Diagnostics); err != nil {
				return fmt.Errorf("write json output: %w", err)
			}
		} else {
			report.NewTerminal(cmd.OutOrStdout()).Render(result.Diagnostics)
		}

		if len(result.Diagnostics) > 0 {
			return &reaperr.ExitError{Code: 1, Message: fmt.Sprintf("%d issue(s) found", len(result.Diagnostics))}
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&configPath, "config", "", "path to .reaperrc.yml project config file")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "output diagnostics as JSON")
	checkCmd.Flags().BoolVar(&includeTests, "include-tests", false, "analyze test_*.py / *_test.py files too")
	checkCmd.Flags().BoolVar(&sequential, "sequential", false, "disable parallel per-module analysis (deterministic ordering aid for debugging)")
	rootCmd.AddCommand(checkCmd)
}

// collectSources walks dir and reads every file Discover classifies as
// analyzable source (or test, when includeTests is set) into an
// analyze.Source ready for the core.
func collectSources(dir string) ([]analyze.Source, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	w := discovery.NewWalker()
	scan, err := w.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}

	files := scan.SourceFiles(includeTests)
	sources := make([]analyze.Source, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		sources = append(sources, analyze.Source{
			Path:    f.Path,
			RelPath: f.RelPath,
			Content: content,
		})
	}
	return sources, nil
}
