package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-json"
	flag "github.com/spf13/pflag"

	wp2mdx "github.com/alnah/go-wp2mdx"
	"github.com/alnah/go-wp2mdx/internal/dateutil"
	"github.com/alnah/go-wp2mdx/internal/export"
	"github.com/alnah/go-wp2mdx/internal/fileutil"
	"github.com/alnah/go-wp2mdx/internal/hints"
	"github.com/alnah/go-wp2mdx/internal/pipeline"
)

// ErrNotReady is returned by doctor when a check fails.
var ErrNotReady = errors.New("not ready to convert")

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Export   exportInfo `json:"export"`
	Output   outputInfo `json:"output"`
	Convert  convInfo   `json:"convert"`
	Env      envInfo    `json:"environment"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// exportInfo holds export directory checks.
type exportInfo struct {
	Dir       string          `json:"dir"`
	Files     map[string]bool `json:"files"`
	Valid     bool            `json:"valid"`
	Posts     int             `json:"posts"`
	Pages     int             `json:"pages"`
	Custom    map[string]int  `json:"custom,omitempty"`
	Media     int             `json:"media"`
	BaseURL   string          `json:"baseUrl,omitempty"`
	Redirects bool            `json:"redirects"`
}

// outputInfo holds output directory checks.
type outputInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
}

// convInfo holds the conversion settings a run would use.
type convInfo struct {
	KnownShortcodes int      `json:"knownShortcodes"`
	ExcludedTypes   []string `json:"excludedTypes"`
	Workers         int      `json:"workers"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	CPUs          int    `json:"cpus"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"containerHint,omitempty"`
	CI            bool   `json:"ci"`
}

// doctorFlags holds the flags of the doctor command.
type doctorFlags struct {
	common     commonFlags
	jsonOutput bool
}

// runDoctor checks that an export can be converted and reports what a
// convert run would find. Warnings do not fail the command.
func runDoctor(args []string, env *Environment) error {
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	flags := &doctorFlags{}
	fs.BoolVar(&flags.jsonOutput, "json", false, "print the result as JSON")
	addCommonFlags(fs, &flags.common)
	if err := parseArgs(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadSettings(&flags.common, env)
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		cfg.Input.Dir = fs.Arg(0)
	}

	result := &doctorResult{
		Export: exportInfo{Dir: cfg.Input.Dir, BaseURL: cfg.Site.BaseURL},
		Output: outputInfo{Dir: cfg.Output.Dir},
		Convert: convInfo{
			KnownShortcodes: len(pipeline.NewMacroExpander(cfg.Convert.KnownShortcodes...).Known()),
			ExcludedTypes:   excludedTypes(cfg.Convert.ExcludedTypes),
			Workers:         wp2mdx.ResolvePoolSize(cfg.Convert.Workers),
		},
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
			CPUs: runtime.GOMAXPROCS(0),
		},
	}

	checkExport(result)
	checkOutput(result)
	checkEnvironment(result, env.Getenv)
	result.Status = doctorStatus(result)

	if flags.jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(env.Stdout, string(data))
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ErrNotReady
	}
	return nil
}

// excludedTypes returns the configured exclusion list, or the built-in one.
func excludedTypes(configured []string) []string {
	if configured != nil {
		return configured
	}
	return wp2mdx.DefaultExcludedTypes
}

// checkExport verifies the export files and loads them.
func checkExport(result *doctorResult) {
	info := &result.Export
	info.Files = make(map[string]bool)
	for _, name := range []string{export.SiteFile, export.PostsFile, export.PagesFile, export.CustomFile, export.MediaFile} {
		info.Files[name] = fileutil.FileExists(filepath.Join(info.Dir, name))
	}

	exp, err := export.Load(info.Dir)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	info.Valid = true

	summary := export.Summarize(exp)
	info.Posts = summary.Posts
	info.Pages = summary.Pages
	info.Custom = summary.Custom
	info.Media = summary.Media

	if info.BaseURL == "" {
		info.BaseURL = exp.Site.BaseURL
	}
	if info.BaseURL == "" {
		result.Warnings = append(result.Warnings, "no site URL: absolute internal links stay absolute")
	}
	info.Redirects = dateutil.HasDateTags(exp.Site.PermalinkStructure)
	if summary.Media == 0 {
		result.Warnings = append(result.Warnings, "no media.json: upload references are not audited")
	}
}

// checkOutput verifies the output directory, or its closest existing
// parent, accepts new files.
func checkOutput(result *doctorResult) {
	dir := result.Output.Dir
	for !fileutil.DirExists(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	f, err := os.CreateTemp(dir, ".wp2mdx-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("output directory not writable: %s%s", result.Output.Dir, hints.ForOutputDirectory()))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.Output.Writable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// doctorStatus derives the overall status from the findings.
func doctorStatus(r *doctorResult) string {
	switch {
	case len(r.Errors) > 0:
		return statusErrors
	case len(r.Warnings) > 0:
		return statusWarnings
	default:
		return statusReady
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "wp2mdx doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Export (%s)\n", r.Export.Dir)
	for _, name := range []string{export.SiteFile, export.PostsFile, export.PagesFile, export.CustomFile, export.MediaFile} {
		if r.Export.Files[name] {
			fmt.Fprintf(w, "  [OK] %s\n", name)
		} else {
			fmt.Fprintf(w, "  [--] %s missing\n", name)
		}
	}
	if r.Export.Valid {
		fmt.Fprintf(w, "  [OK] %d posts, %d pages, %d custom types, %d media\n",
			r.Export.Posts, r.Export.Pages, len(r.Export.Custom), r.Export.Media)
		if types := (export.Summary{Custom: r.Export.Custom}).CustomTypes(); len(types) > 0 {
			fmt.Fprintf(w, "  [OK] Custom types: %s\n", strings.Join(types, ", "))
		}
		if r.Export.Redirects {
			fmt.Fprintln(w, "  [OK] Date permalinks: redirects will be written")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Conversion")
	fmt.Fprintf(w, "  [OK] %d known shortcodes, %d excluded types, %d workers\n",
		r.Convert.KnownShortcodes, len(r.Convert.ExcludedTypes), r.Convert.Workers)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Output (%s)\n", r.Output.Dir)
	if r.Output.Writable {
		fmt.Fprintln(w, "  [OK] Writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Not writable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s, %d CPUs\n", r.Env.OS, r.Env.Arch, r.Env.CPUs)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
