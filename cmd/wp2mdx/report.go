package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	flag "github.com/spf13/pflag"

	wp2mdx "github.com/alnah/go-wp2mdx"
)

// runReport prints the summary of a transform report. Without argument the
// report of the configured output directory is read.
func runReport(args []string, env *Environment) error {
	flags, positional, err := parseReportFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.limit < 0 {
		return fmt.Errorf("%w: --limit must be >= 0", ErrUsage)
	}

	var path string
	switch len(positional) {
	case 0:
		cfg, err := loadSettings(&flags.common, env)
		if err != nil {
			return err
		}
		path = filepath.Join(cfg.Output.Dir, reportFile)
	case 1:
		path = positional[0]
	default:
		return fmt.Errorf("%w: report takes at most one file", ErrUsage)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	var report wp2mdx.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrReadInput, path, err)
	}

	printReport(env, &report, flags.limit)
	return nil
}

// printReport writes a human-readable report summary. limit bounds the
// number of issues listed; zero lists all.
func printReport(env *Environment, report *wp2mdx.Report, limit int) {
	w := env.Stdout

	fmt.Fprintf(w, "Run %s (%s)\n", report.RunID, report.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Converted: %d  Skipped: %d  Failed: %d\n",
		report.Stats.Converted, report.Stats.Skipped, report.Stats.Failed)

	names := report.UnknownShortcodes()
	fmt.Fprintf(w, "\nUnknown shortcodes (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}

	issues := report.Issues()
	fmt.Fprintf(w, "\nConversion issues (%d):\n", len(issues))
	shown := issues
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, issue := range shown {
		fmt.Fprintf(w, "  %s\n", issue)
	}
	if hidden := len(issues) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "  ... %d more\n", hidden)
	}
}
