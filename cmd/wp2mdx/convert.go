package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	wp2mdx "github.com/alnah/go-wp2mdx"
	"github.com/alnah/go-wp2mdx/internal/config"
	"github.com/alnah/go-wp2mdx/internal/export"
	"github.com/alnah/go-wp2mdx/internal/hints"
)

// Sentinel errors for the convert command.
var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrPartialBatch       = errors.New("some documents failed")
)

// Artifact file names written next to the documents.
const (
	manifestFile  = "media-manifest.json"
	reportFile    = "transform-report.json"
	redirectsFile = "redirects.json"
)

// runConvert orchestrates the migration of one export directory.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one input directory, got %d", ErrUsage, len(positional))
	}

	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadSettings(&flags.common, env)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)
	if len(positional) == 1 {
		cfg.Input.Dir = positional[0]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, &flags.common)
	if err != nil {
		return err
	}

	exp, err := export.Load(cfg.Input.Dir)
	if err != nil {
		return loadError(err, cfg.Input.Dir)
	}
	logger.Debug("export loaded", "dir", cfg.Input.Dir,
		"posts", len(exp.Posts), "pages", len(exp.Pages), "custom", len(exp.Custom), "media", len(exp.Media))

	baseURL := resolveBaseURL(cfg, exp.Site)
	if baseURL == "" && !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: no site URL known, absolute links stay absolute%s\n", hints.ForBaseURL())
	}

	manifest := wp2mdx.NewMediaManifest(exp.Media)
	conv := wp2mdx.NewConverter(converterOptions(cfg, baseURL, manifest, env, logger)...)

	report := wp2mdx.NewReport(env.Now())
	records := exp.Records(report)

	var out *wp2mdx.DirWriter
	var w wp2mdx.DocumentWriter
	if !flags.dryRun {
		out = wp2mdx.NewDirWriter(cfg.Output.Dir)
		w = out
	}

	batch := wp2mdx.NewBatch(conv,
		wp2mdx.WithWorkers(cfg.Convert.Workers),
		wp2mdx.WithBatchLogger(logger),
		wp2mdx.WithValidation(cfg.Convert.Validate),
	)
	result, runErr := batch.Run(ctx, records, w)
	report.Merge(result.Report)

	redirects := wp2mdx.BuildRedirects(exp.Site, exp.Posts, report)

	reportPath := ""
	if out != nil {
		if err := writeArtifacts(out, manifest, report, redirects); err != nil {
			return fmt.Errorf("writing artifacts: %w%s", err, hints.ForOutputDirectory())
		}
		reportPath = filepath.Join(out.Root, reportFile)
	}

	summary := printResults(result.Items, flags.dryRun, &flags.common, env)
	if !flags.common.quiet {
		printRunSummary(env, report, len(redirects), reportPath)
	}

	if runErr != nil {
		return fmt.Errorf("conversion interrupted: %w", runErr)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d%s", ErrPartialBatch, summary.Failed, len(result.Items), hints.ForFailures(reportPath))
	}
	return nil
}

// validateWorkers checks the --workers flag value.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

// mergeFlags merges convert flags into cfg. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.workers > 0 {
		cfg.Convert.Workers = flags.workers
	}

	// Site flags
	if flags.site.baseURL != "" {
		cfg.Site.BaseURL = flags.site.baseURL
	}
	if flags.site.mediaPrefix != "" {
		cfg.Site.MediaPrefix = flags.site.mediaPrefix
	}

	// Conversion flags
	if flags.convert.nestPages {
		cfg.Convert.NestPages = true
	}
	if flags.convert.validate {
		cfg.Convert.Validate = true
	}
	if len(flags.convert.excludedTypes) > 0 {
		cfg.Convert.ExcludedTypes = flags.convert.excludedTypes
	}
	if len(flags.convert.knownShortcodes) > 0 {
		cfg.Convert.KnownShortcodes = append(cfg.Convert.KnownShortcodes, flags.convert.knownShortcodes...)
	}
}

// resolveBaseURL returns the configured site URL, else the one of the export.
func resolveBaseURL(cfg *config.Config, site wp2mdx.SiteSettings) string {
	if cfg.Site.BaseURL != "" {
		return cfg.Site.BaseURL
	}
	return site.BaseURL
}

// converterOptions maps the effective configuration to converter options.
func converterOptions(cfg *config.Config, baseURL string, manifest *wp2mdx.MediaManifest, env *Environment, logger wp2mdx.Logger) []wp2mdx.Option {
	opts := []wp2mdx.Option{
		wp2mdx.WithBaseURL(baseURL),
		wp2mdx.WithMediaPrefix(cfg.Site.MediaPrefix),
		wp2mdx.WithNestPages(cfg.Convert.NestPages),
		wp2mdx.WithKnownShortcodes(cfg.Convert.KnownShortcodes...),
		wp2mdx.WithNow(env.Now),
		wp2mdx.WithLogger(logger),
	}
	if cfg.Convert.ExcludedTypes != nil {
		opts = append(opts, wp2mdx.WithExcludedTypes(cfg.Convert.ExcludedTypes...))
	}
	if manifest.Len() > 0 {
		opts = append(opts, wp2mdx.WithMediaManifest(manifest))
	}
	return opts
}

// loadError adds a hint to an export loading error.
func loadError(err error, dir string) error {
	switch {
	case errors.Is(err, export.ErrMissingInput):
		return fmt.Errorf("loading export: %w%s", err, hints.ForMissingInput(dir))
	case errors.Is(err, export.ErrSchemaInput), errors.Is(err, export.ErrDecodeInput):
		return fmt.Errorf("loading export: %w%s", err, hints.ForInvalidInput())
	default:
		return fmt.Errorf("loading export: %w", err)
	}
}

// writeArtifacts writes the media manifest, the report and, when there
// are any, the redirects under the output root.
func writeArtifacts(out *wp2mdx.DirWriter, manifest *wp2mdx.MediaManifest, report *wp2mdx.Report, redirects []wp2mdx.Redirect) error {
	if err := out.WriteJSON(manifestFile, manifest); err != nil {
		return err
	}
	if err := out.WriteJSON(reportFile, report); err != nil {
		return err
	}
	if len(redirects) == 0 {
		return nil
	}
	return out.WriteJSON(redirectsFile, redirects)
}

// ResultSummary holds the count of item outcomes.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// countResults tallies item outcomes.
func countResults(items []wp2mdx.ItemResult) ResultSummary {
	var summary ResultSummary
	for _, r := range items {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Err != nil:
			summary.Failed++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs per-item results and returns their tally.
func printResults(items []wp2mdx.ItemResult, dryRun bool, flags *commonFlags, env *Environment) ResultSummary {
	summary := countResults(items)

	verb := "Created"
	if dryRun {
		verb = "Would create"
	}

	for _, r := range items {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s %d (%s): %v\n", r.Type, r.ID, r.Path, r.Err)
			continue
		}

		if flags.quiet {
			continue
		}

		switch {
		case r.Skipped && flags.verbose:
			fmt.Fprintf(env.Stdout, "Skipped %s %d\n", r.Type, r.ID)
		case r.Skipped:
		case flags.verbose:
			fmt.Fprintf(env.Stdout, "%s %d -> %s (%v)\n", r.Type, r.ID, r.Path, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(env.Stdout, "%s %s\n", verb, r.Path)
		}
	}

	if !flags.quiet {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed, %d skipped\n", summary.Succeeded, summary.Failed, summary.Skipped)
	}

	return summary
}

// printRunSummary outputs the report counters of a run.
func printRunSummary(env *Environment, report *wp2mdx.Report, redirects int, reportPath string) {
	fmt.Fprintf(env.Stdout, "%d unknown shortcodes, %d issues, %d redirects\n",
		len(report.UnknownShortcodes()), len(report.Issues()), redirects)
	if reportPath != "" {
		fmt.Fprintf(env.Stdout, "Report written to %s\n", reportPath)
	}
}
