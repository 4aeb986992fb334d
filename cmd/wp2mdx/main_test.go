package main

// Notes:
// - runMain: we test dispatch and exit codes through the injected
//   Environment; the process environment is replaced by a map so host
//   WP2MDX_* variables cannot leak into the assertions.
// - convert runs end to end on a small export written to t.TempDir().
// - Diagnostics logs go to the process stdout and are not asserted.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	wp2mdx "github.com/alnah/go-wp2mdx"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

const (
	testSite  = `{"name": "Shop", "baseUrl": "http://example.com", "permalinkStructure": "/%year%/%monthnum%/%day%/%postname%/"}`
	testPosts = `[{"id": 1, "title": "Hello", "slug": "hello", "date": "2021-05-03T10:00:00", "status": "publish", "content": "<p>Hi <a href=\"http://example.com/about/\">about</a></p>"}]`
	testPages = `[{"id": 2, "title": "About", "slug": "about", "date": "2020-01-01T00:00:00", "status": "publish", "content": "<p>About us</p>"}]`
)

// newTestEnv returns an Environment over buffers and the given variables.
func newTestEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	env := &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getenv:  func(k string) string { return vars[k] },
		Environ: func() []string { return environ },
	}
	return env, &stdout, &stderr
}

// writeTestExport writes a post and a page export under a temp directory
// and returns the export directory.
func writeTestExport(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "_raw")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"site.json":  testSite,
		"posts.json": testPosts,
		"pages.json": testPages,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"wp2mdx"}, ExitUsage, "", "Usage: wp2mdx"},
		{"unknown command", []string{"wp2mdx", "publish"}, ExitUsage, "", "unknown command: publish"},
		{"version", []string{"wp2mdx", "version"}, ExitSuccess, "wp2mdx dev", ""},
		{"help", []string{"wp2mdx", "help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"wp2mdx", "help", "convert"}, ExitSuccess, "Usage: wp2mdx convert", ""},
		{"help doctor", []string{"wp2mdx", "help", "doctor"}, ExitSuccess, "Usage: wp2mdx doctor", ""},
		{"help unknown", []string{"wp2mdx", "help", "publish"}, ExitSuccess, "", "Unknown command: publish"},
		{"convert help flag", []string{"wp2mdx", "convert", "-h"}, ExitSuccess, "", "Usage: wp2mdx convert"},
		{"convert bad flag", []string{"wp2mdx", "convert", "--html"}, ExitUsage, "", "invalid usage"},
		{"convert bad workers", []string{"wp2mdx", "convert", "-w", "-1"}, ExitUsage, "", "invalid worker count"},
		{"convert two inputs", []string{"wp2mdx", "convert", "a", "b"}, ExitUsage, "", "at most one input"},
		{"preview no file", []string{"wp2mdx", "preview"}, ExitIO, "", "no input specified"},
		{"config extra arg", []string{"wp2mdx", "config", "extra"}, ExitUsage, "", "takes no arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(nil)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunMain_WarnsUnknownEnvVars(t *testing.T) {
	t.Parallel()

	env, _, stderr := newTestEnv(map[string]string{"WP2MDX_OUTPUT": "x"})
	runMain([]string{"wp2mdx", "version"}, env)

	if !strings.Contains(stderr.String(), "unknown environment variable WP2MDX_OUTPUT") {
		t.Errorf("stderr = %q, want unknown variable warning", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Convert - End-to-end migration
// ---------------------------------------------------------------------------

func TestRunMain_Convert(t *testing.T) {
	t.Parallel()

	in := writeTestExport(t)
	out := filepath.Join(t.TempDir(), "content")
	env, stdout, stderr := newTestEnv(nil)

	code := runMain([]string{"wp2mdx", "convert", in, "-o", out}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d (stderr: %s)", code, ExitSuccess, stderr.String())
	}

	for _, rel := range []string{"posts/hello.mdx", "pages/about.mdx", manifestFile, reportFile, redirectsFile} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s to be written: %v", rel, err)
		}
	}

	post, err := os.ReadFile(filepath.Join(out, "posts", "hello.mdx"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(post), "---\n") || !strings.Contains(string(post), "[about](/about/)") {
		t.Errorf("posts/hello.mdx = %q, want header and relative link", post)
	}

	data, err := os.ReadFile(filepath.Join(out, redirectsFile))
	if err != nil {
		t.Fatal(err)
	}
	var redirects []wp2mdx.Redirect
	if err := json.Unmarshal(data, &redirects); err != nil {
		t.Fatalf("decoding redirects: %v", err)
	}
	if len(redirects) != 1 || redirects[0].From != "/2021/05/03/hello/" || redirects[0].To != "/blog/hello/" {
		t.Errorf("redirects = %+v", redirects)
	}

	data, err = os.ReadFile(filepath.Join(out, reportFile))
	if err != nil {
		t.Fatal(err)
	}
	var report wp2mdx.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Stats.Converted != 2 || report.Stats.Failed != 0 {
		t.Errorf("report stats = %+v, want 2 converted", report.Stats)
	}
	if !report.Timestamp.Equal(fixedNow) {
		t.Errorf("report timestamp = %v, want %v", report.Timestamp, fixedNow)
	}

	output := stdout.String()
	for _, want := range []string{"Created posts/hello.mdx", "Created pages/about.mdx", "2 succeeded, 0 failed, 0 skipped", "1 redirects"} {
		if !strings.Contains(output, want) {
			t.Errorf("stdout missing %q:\n%s", want, output)
		}
	}
}

func TestRunMain_ConvertDryRun(t *testing.T) {
	t.Parallel()

	in := writeTestExport(t)
	out := filepath.Join(t.TempDir(), "content")
	env, stdout, stderr := newTestEnv(map[string]string{"WP2MDX_OUTPUT_DIR": out})

	code := runMain([]string{"wp2mdx", "convert", in, "--dry-run"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d (stderr: %s)", code, ExitSuccess, stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("dry run created %s", out)
	}
	if !strings.Contains(stdout.String(), "Would create posts/hello.mdx") {
		t.Errorf("stdout = %q, want dry-run listing", stdout.String())
	}
}

func TestRunMain_ConvertQuiet(t *testing.T) {
	t.Parallel()

	in := writeTestExport(t)
	out := filepath.Join(t.TempDir(), "content")
	env, stdout, _ := newTestEnv(nil)

	code := runMain([]string{"wp2mdx", "convert", in, "-o", out, "-q"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", code, ExitSuccess)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet stdout = %q, want empty", stdout.String())
	}
}

func TestRunMain_ConvertPartialFailure(t *testing.T) {
	t.Parallel()

	in := writeTestExport(t)
	out := filepath.Join(t.TempDir(), "content")
	if err := os.MkdirAll(out, 0o750); err != nil {
		t.Fatal(err)
	}
	// A file where the posts directory should be.
	if err := os.WriteFile(filepath.Join(out, "posts"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	env, stdout, stderr := newTestEnv(nil)

	code := runMain([]string{"wp2mdx", "convert", in, "-o", out}, env)
	if code != ExitPartial {
		t.Fatalf("runMain() = %d, want %d (stderr: %s)", code, ExitPartial, stderr.String())
	}
	if !strings.Contains(stderr.String(), "FAILED post 1") {
		t.Errorf("stderr = %q, want failed post", stderr.String())
	}
	if !strings.Contains(stderr.String(), reportFile) {
		t.Errorf("stderr = %q, want report hint", stderr.String())
	}
	if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("stdout = %q, want tally", stdout.String())
	}
}

func TestRunMain_ConvertMissingInput(t *testing.T) {
	t.Parallel()

	env, _, stderr := newTestEnv(nil)
	missing := filepath.Join(t.TempDir(), "nothing")

	code := runMain([]string{"wp2mdx", "convert", missing}, env)
	if code != ExitIO {
		t.Errorf("runMain() = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want a hint", stderr.String())
	}
}

func TestRunMain_ConvertInvalidEnvConfig(t *testing.T) {
	t.Parallel()

	in := writeTestExport(t)
	env, _, stderr := newTestEnv(map[string]string{"WP2MDX_BASE_URL": "example.com"})

	code := runMain([]string{"wp2mdx", "convert", in, "--dry-run"}, env)
	if code != ExitUsage {
		t.Errorf("runMain() = %d, want %d (stderr: %s)", code, ExitUsage, stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Preview - HTML rendering of one document
// ---------------------------------------------------------------------------

func TestRunMain_Preview(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "hello.mdx")
	doc := "---\ntitle: \"Hello\"\npermalink: \"hello\"\n---\n\n# Heading\n\nSome text.\n"
	if err := os.WriteFile(src, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv(nil)
		if code := runMain([]string{"wp2mdx", "preview", src}, env); code != ExitSuccess {
			t.Fatalf("runMain() = %d (stderr: %s)", code, stderr.String())
		}
		html := stdout.String()
		if !strings.Contains(html, "<title>Hello</title>") || !strings.Contains(html, "Heading</h1>") {
			t.Errorf("preview = %q", html)
		}
		if strings.Contains(html, "permalink") {
			t.Errorf("preview rendered the header: %q", html)
		}
		if !strings.Contains(html, "<style>") {
			t.Errorf("preview lacks highlighting CSS: %q", html)
		}
	})

	t.Run("no style", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv(nil)
		if code := runMain([]string{"wp2mdx", "preview", src, "--no-style"}, env); code != ExitSuccess {
			t.Fatalf("runMain() = %d (stderr: %s)", code, stderr.String())
		}
		if strings.Contains(stdout.String(), "<style>") {
			t.Errorf("--no-style output has a <style> block")
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		dest := filepath.Join(dir, "hello.html")
		env, stdout, stderr := newTestEnv(nil)
		if code := runMain([]string{"wp2mdx", "preview", src, "-o", dest}, env); code != ExitSuccess {
			t.Fatalf("runMain() = %d (stderr: %s)", code, stderr.String())
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("expected %s: %v", dest, err)
		}
		if !strings.Contains(stdout.String(), "Created "+dest) {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv(nil)
		if code := runMain([]string{"wp2mdx", "preview", filepath.Join(dir, "none.mdx")}, env); code != ExitIO {
			t.Errorf("runMain() = %d, want %d", code, ExitIO)
		}
	})
}

func TestSplitDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantTitle string
		wantBody  string
	}{
		{"header title", "---\ntitle: \"Hi\"\n---\nBody\n", "Hi", "Body"},
		{"no header", "Body only\n", "post", "Body only"},
		{"empty title", "---\ntitle: \"\"\n---\nBody\n", "post", "Body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			title, body := splitDocument([]byte(tt.data), "posts/post.mdx")
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if strings.TrimSpace(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Report - Report summary
// ---------------------------------------------------------------------------

func TestRunMain_Report(t *testing.T) {
	t.Parallel()

	report := wp2mdx.NewReport(fixedNow)
	report.RecordUnknownTag("foo_bar")
	report.Issuef("post %d: first", 1)
	report.Issuef("post %d: second", 2)
	report.Stats.Converted = 2

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), reportFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	env, stdout, stderr := newTestEnv(nil)
	if code := runMain([]string{"wp2mdx", "report", path, "--limit", "1"}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d (stderr: %s)", code, stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{
		"Run " + report.RunID,
		"Converted: 2  Skipped: 0  Failed: 0",
		"Unknown shortcodes (1):\n  foo_bar",
		"Conversion issues (2):\n  post 1: first\n  ... 1 more",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("stdout missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "post 2: second") {
		t.Errorf("limit not applied:\n%s", output)
	}
}

func TestRunMain_ReportErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing file", []string{"wp2mdx", "report", filepath.Join(dir, "none.json")}, ExitIO},
		{"invalid json", []string{"wp2mdx", "report", bad}, ExitIO},
		{"negative limit", []string{"wp2mdx", "report", bad, "-n", "-1"}, ExitUsage},
		{"two files", []string{"wp2mdx", "report", bad, bad}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := newTestEnv(nil)
			if code := runMain(tt.args, env); code != tt.want {
				t.Errorf("runMain() = %d, want %d", code, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Config - Effective configuration dump
// ---------------------------------------------------------------------------

func TestRunMain_Config(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := newTestEnv(map[string]string{
		"WP2MDX_BASE_URL": "https://example.com",
		"WP2MDX_WORKERS":  "3",
	})
	if code := runMain([]string{"wp2mdx", "config"}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d (stderr: %s)", code, stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{"example.com", "content/_raw", "workers: 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("config output missing %q:\n%s", want, output)
		}
	}
}

func TestRunMain_ConfigInvalid(t *testing.T) {
	t.Parallel()

	env, _, _ := newTestEnv(map[string]string{"WP2MDX_LOG_LEVEL": "loud"})
	if code := runMain([]string{"wp2mdx", "config"}, env); code != ExitUsage {
		t.Errorf("runMain() = %d, want %d", code, ExitUsage)
	}

	env, _, _ = newTestEnv(nil)
	missing := filepath.Join(t.TempDir(), "none.yaml")
	if code := runMain([]string{"wp2mdx", "config", "-c", missing}, env); code != ExitUsage {
		t.Errorf("missing config: runMain() = %d, want %d", code, ExitUsage)
	}
}
