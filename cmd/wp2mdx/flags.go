package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-wp2mdx/internal/pipeline"
)

// ErrUsage indicates invalid command-line flags or arguments.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
}

// siteFlags holds flags describing the migrated site.
type siteFlags struct {
	baseURL     string
	mediaPrefix string
}

// conversionFlags holds flags tuning the conversion.
type conversionFlags struct {
	nestPages       bool
	validate        bool
	excludedTypes   []string
	knownShortcodes []string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	site    siteFlags
	convert conversionFlags
	output  string
	workers int
	dryRun  bool
}

// previewFlags holds the flags of the preview command.
type previewFlags struct {
	common  commonFlags
	output  string
	style   string
	noStyle bool
}

// reportFlags holds the flags of the report command.
type reportFlags struct {
	common commonFlags
	limit  int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-document timing and debug logs")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json, pretty")
}

// addSiteFlags adds site flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.baseURL, "base-url", "", "site URL made relative in links (default: site.json baseUrl)")
	fs.StringVar(&f.mediaPrefix, "media-prefix", "", "path replacing /wp-content/uploads/ in links")
}

// addConversionFlags adds conversion flags to a FlagSet.
func addConversionFlags(fs *flag.FlagSet, f *conversionFlags) {
	fs.BoolVar(&f.nestPages, "nest-pages", false, "write pages under their parent path")
	fs.BoolVar(&f.validate, "validate", false, "re-read every document and report findings")
	fs.StringSliceVar(&f.excludedTypes, "exclude-type", nil, "custom type to skip (repeatable, replaces the default list)")
	fs.StringSliceVar(&f.knownShortcodes, "known-shortcode", nil, "shortcode stripped without report (repeatable)")
}

// newFlagSet creates a FlagSet reporting to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseArgs parses args into fs, wrapping failures with ErrUsage.
// A help request returns flag.ErrHelp unwrapped.
func parseArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := newFlagSet("convert", w, printConvertUsage)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "convert without writing anything")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	addConversionFlags(fs, &f.convert)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	fs := newFlagSet("preview", w, printPreviewUsage)
	f := &previewFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "HTML output file (default: stdout)")
	fs.StringVar(&f.style, "style", pipeline.DefaultHighlightStyle, "code highlighting style (chroma name)")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable code highlighting CSS")
	addCommonFlags(fs, &f.common)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseReportFlags parses report command flags and returns positional args.
func parseReportFlags(args []string, w io.Writer) (*reportFlags, []string, error) {
	fs := newFlagSet("report", w, printReportUsage)
	f := &reportFlags{}

	fs.IntVarP(&f.limit, "limit", "n", 0, "max issues to list (0 = all)")
	addCommonFlags(fs, &f.common)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, w io.Writer) (*commonFlags, error) {
	fs := newFlagSet("config", w, printConfigUsage)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	if err := parseArgs(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}
	return f, nil
}
