// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-wp2mdx/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForMissingInput returns hints for a missing required export file.
func ForMissingInput(dir string) string {
	hints := []string{"run the WordPress export first or pass the export directory as argument"}
	if !fileutil.DirExists(dir) {
		hints = append(hints, "directory "+dir+" does not exist")
	} else {
		hints = append(hints, "expected "+filepath.Join(dir, "site.json")+" and "+filepath.Join(dir, "posts.json"))
	}
	return formatHints(hints)
}

// ForInvalidInput returns hints for export files failing their schema or
// decoding.
func ForInvalidInput() string {
	return format("re-run the export; the file may be truncated or written by an older exporter")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-wp2mdx/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	hints := []string{"check parent directory exists and is writable"}
	if IsInContainer() {
		hints = append(hints, "mount the output directory as a volume")
	}
	return formatHints(hints)
}

// ForBaseURL returns a hint when no site URL is known, so absolute internal
// links stay absolute.
func ForBaseURL() string {
	return format("set --base-url or site.baseUrl to make internal links relative")
}

// ForFailures returns a hint pointing at the report of a partial run.
func ForFailures(reportPath string) string {
	if reportPath == "" {
		return format("re-run with --verbose to log each failure")
	}
	return format("conversion issues are listed in " + reportPath)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
