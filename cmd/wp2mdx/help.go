package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wp2mdx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a WordPress export to MDX")
	fmt.Fprintln(w, "  preview    Render one MDX document to HTML")
	fmt.Fprintln(w, "  report     Summarize a transform report")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check an export and the output directory")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'wp2mdx help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-document timing and debug logs")
	fmt.Fprintln(w, "      --log-level <s>       trace, debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      console, json, pretty")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wp2mdx convert [input-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert posts, pages and custom types of an export to MDX documents.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input-dir    Export directory (default: input.dir, content/_raw)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: output.dir, content)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --dry-run             Convert without writing anything")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "      --base-url <url>      Site URL made relative in links")
	fmt.Fprintln(w, "      --media-prefix <p>    Path replacing /wp-content/uploads/")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --nest-pages          Write pages under their parent path")
	fmt.Fprintln(w, "      --validate            Re-read every document and report findings")
	fmt.Fprintln(w, "      --exclude-type <t>    Custom type to skip (repeatable)")
	fmt.Fprintln(w, "      --known-shortcode <s> Shortcode stripped without report (repeatable)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  WP2MDX_CONFIG, WP2MDX_INPUT_DIR, WP2MDX_OUTPUT_DIR, WP2MDX_BASE_URL,")
	fmt.Fprintln(w, "  WP2MDX_MEDIA_PREFIX, WP2MDX_WORKERS, WP2MDX_LOG_LEVEL, WP2MDX_LOG_FORMAT")
	fmt.Fprintln(w, "  A .env file in the working directory is read first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 error, 2 usage or config, 3 I/O, 4 some documents failed")
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wp2mdx preview <file.mdx> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a converted document to a standalone HTML page.")
	fmt.Fprintln(w, "Raw HTML left in the body is reported on stderr.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       HTML output file (default: stdout)")
	fmt.Fprintln(w, "      --style <name>        Code highlighting style (default: github)")
	fmt.Fprintln(w, "      --no-style            Disable code highlighting CSS")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printReportUsage prints usage for the report command.
func printReportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wp2mdx report [report.json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summarize a transform report (default: <output.dir>/transform-report.json).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -n, --limit <n>           Max issues to list (0 = all)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wp2mdx config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after merging the config file and WP2MDX_* variables.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wp2mdx doctor [input-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the export files, the output directory and the environment.")
	fmt.Fprintln(w, "Exits 1 when an export file is missing or invalid, or the output is not writable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print the result as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "report":
		printReportUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: wp2mdx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: wp2mdx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
