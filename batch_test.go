package wp2mdx

// Notes:
// - memWriter stands in for the filesystem; DirWriter is exercised once end
//   to end.
// - Worker counts above one are used on purpose so the merge of partial
//   reports runs concurrently; assertions never depend on scheduling.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
)

// memWriter records documents in memory.
type memWriter struct {
	mu    sync.Mutex
	docs  map[string]*Document
	fails map[string]bool
}

func newMemWriter(fails ...string) *memWriter {
	w := &memWriter{docs: make(map[string]*Document), fails: make(map[string]bool)}
	for _, p := range fails {
		w.fails[p] = true
	}
	return w
}

func (w *memWriter) WriteDocument(_ context.Context, doc *Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fails[doc.Path] {
		return fmt.Errorf("%w: disk full", ErrWriteDocument)
	}
	w.docs[doc.Path] = doc
	return nil
}

func (w *memWriter) paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.docs))
	for p := range w.docs {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// logSpy records log messages by level.
type logSpy struct {
	mu   sync.Mutex
	msgs []string
}

func (l *logSpy) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, level+" "+msg)
}

func (l *logSpy) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *logSpy) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *logSpy) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *logSpy) Error(msg string, _ ...any) { l.add("error", msg) }

// ---------------------------------------------------------------------------
// TestBatch_Run - Concurrent conversion
// ---------------------------------------------------------------------------

func TestBatch_Run(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Type: TypePost, Slug: "one", Content: "<p>[foo_bar]a[/foo_bar]</p>"},
		{ID: 2, Type: TypePost, Slug: "two", Content: "<p>[foo_bar]b[/foo_bar]</p>"},
		{ID: 3, Type: TypePage, Slug: "three", Content: "<p>[foo_bar/]c</p>"},
		{ID: 4, Type: "wpcf7_contact_form", Slug: "form"},
		{ID: 5, Type: "stm_service", Slug: "five", Content: "<p>[baz]</p>"},
	}

	w := newMemWriter()
	result, err := NewBatch(NewConverter(WithNow(fixedNow)), WithWorkers(3)).Run(context.Background(), records, w)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if got := result.Report.UnknownShortcodes(); !slices.Equal(got, []string{"baz", "foo_bar"}) {
		t.Errorf("UnknownShortcodes() = %v, want [baz foo_bar]", got)
	}
	if want := (Stats{Converted: 4, Skipped: 1}); result.Report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Report.Stats, want)
	}

	wantPaths := []string{"pages/three.mdx", "posts/one.mdx", "posts/two.mdx", "service/five.mdx"}
	if got := w.paths(); !slices.Equal(got, wantPaths) {
		t.Errorf("written = %v, want %v", got, wantPaths)
	}

	for i, item := range result.Items {
		if item.Index != i || item.ID != records[i].ID {
			t.Errorf("Items[%d] = %+v, out of input order", i, item)
		}
	}
	if !result.Items[3].Skipped || result.Items[3].Err != nil {
		t.Errorf("Items[3] = %+v, want skipped", result.Items[3])
	}
}

func TestBatch_Run_PathCollisions(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 10, Type: TypePost, Slug: "hello"},
		{ID: 11, Type: TypePost, Slug: "Hello"},
		{ID: 12, Type: TypePost, Title: "Hello"},
		{ID: 13, Type: TypePost, Slug: "hello-11"},
	}

	w := newMemWriter()
	result, err := NewBatch(NewConverter(), WithWorkers(2)).Run(context.Background(), records, w)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	var got []string
	for _, item := range result.Items {
		got = append(got, item.Path)
	}
	want := []string{"posts/hello.mdx", "posts/Hello-11.mdx", "posts/hello-12.mdx", "posts/hello-11-13.mdx"}
	if !slices.Equal(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}

	if len(w.paths()) != len(records) {
		t.Errorf("written %d documents, want %d", len(w.paths()), len(records))
	}
	for _, p := range want {
		w.mu.Lock()
		doc := w.docs[p]
		w.mu.Unlock()
		if doc == nil || doc.Path != p {
			t.Errorf("document for %s written with path %v", p, doc)
		}
	}

	issues := result.Report.Issues()
	if len(issues) != 3 {
		t.Fatalf("Issues() = %v, want 3 collision issues", issues)
	}
	if !strings.HasPrefix(issues[0], "post 11: output path posts/Hello.mdx already used") {
		t.Errorf("issues[0] = %q", issues[0])
	}
}

func TestBatch_Run_WriteFailures(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Slug: "ok"},
		{ID: 2, Slug: "broken"},
	}

	result, err := NewBatch(NewConverter()).Run(context.Background(), records, newMemWriter("posts/broken.mdx"))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if result.Items[0].Err != nil {
		t.Errorf("Items[0].Err = %v, want nil", result.Items[0].Err)
	}
	if !errors.Is(result.Items[1].Err, ErrWriteDocument) {
		t.Errorf("Items[1].Err = %v, want ErrWriteDocument", result.Items[1].Err)
	}
	if want := (Stats{Converted: 1, Failed: 1}); result.Report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Report.Stats, want)
	}
}

func TestBatch_Run_Logging(t *testing.T) {
	t.Parallel()

	spy := &logSpy{}
	records := []Record{
		{ID: 1, Slug: "ok"},
		{ID: 2, Slug: "broken"},
	}

	_, err := NewBatch(NewConverter(), WithWorkers(2), WithBatchLogger(spy)).
		Run(context.Background(), records, newMemWriter("posts/broken.mdx"))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	for _, want := range []string{"info batch started", "debug document written", "warn write failed", "info batch finished"} {
		if !slices.Contains(spy.msgs, want) {
			t.Errorf("log missing %q, got %v", want, spy.msgs)
		}
	}
	if spy.msgs[len(spy.msgs)-1] != "info batch finished" {
		t.Errorf("last message = %q, want batch finished", spy.msgs[len(spy.msgs)-1])
	}
}

func TestBatch_Run_DryRun(t *testing.T) {
	t.Parallel()

	records := []Record{{ID: 1, Slug: "a", Content: "<p>[x_unknown]</p>"}}

	result, err := NewBatch(NewConverter(), WithValidation(true)).Run(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if result.Report.Stats.Converted != 1 {
		t.Errorf("Converted = %d, want 1", result.Report.Stats.Converted)
	}
	if got := result.Report.UnknownShortcodes(); !slices.Equal(got, []string{"x_unknown"}) {
		t.Errorf("UnknownShortcodes() = %v", got)
	}
}

func TestBatch_Run_Empty(t *testing.T) {
	t.Parallel()

	result, err := NewBatch(NewConverter()).Run(context.Background(), nil, newMemWriter())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if len(result.Items) != 0 || result.Report == nil || result.Report.RunID == "" {
		t.Errorf("Run(nil) = %+v", result)
	}
}

func TestBatch_Run_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []Record{{ID: 1, Slug: "a"}, {ID: 2, Slug: "b"}, {ID: 3, Type: "elementor_library"}}
	w := newMemWriter()

	result, err := NewBatch(NewConverter(), WithWorkers(2)).Run(ctx, records, w)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	for _, item := range result.Items[:2] {
		if !errors.Is(item.Err, context.Canceled) {
			t.Errorf("item %d error = %v, want context.Canceled", item.ID, item.Err)
		}
	}
	if len(w.paths()) != 0 {
		t.Errorf("written = %v, want nothing", w.paths())
	}
	if want := (Stats{Skipped: 1, Failed: 2}); result.Report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Report.Stats, want)
	}
}

func TestBatch_Run_IssueOrderFollowsInput(t *testing.T) {
	t.Parallel()

	var records []Record
	for i := range 20 {
		records = append(records, Record{ID: i + 1, Slug: fmt.Sprintf("p%d", i), Content: "[vc_row]unclosed"})
	}

	result, err := NewBatch(NewConverter(), WithWorkers(4)).Run(context.Background(), records, nil)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	issues := result.Report.Issues()
	if len(issues) != len(records) {
		t.Fatalf("Issues() has %d entries, want %d", len(issues), len(records))
	}
	for i, issue := range issues {
		if prefix := fmt.Sprintf("post %d: ", i+1); !strings.HasPrefix(issue, prefix) {
			t.Errorf("issues[%d] = %q, want prefix %q", i, issue, prefix)
		}
	}
}

func TestBatch_Run_DirWriter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	conv := NewConverter(WithNestPages(true))

	exp := &Export{
		Pages: []Record{
			{ID: 1, Type: TypePage, Slug: "about", Content: "<p>About</p>"},
			{ID: 2, Type: TypePage, Slug: "team", ParentID: 1, Content: "<p>Team</p>"},
		},
	}
	report := NewReport(fixedNow())

	result, err := NewBatch(conv).Run(context.Background(), exp.Records(report), NewDirWriter(root))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	report.Merge(result.Report)

	got, err := os.ReadFile(filepath.Join(root, "pages", "about", "team.mdx"))
	if err != nil {
		t.Fatalf("reading team page: %v", err)
	}
	if !strings.Contains(string(got), `path: "about/team"`) || !strings.HasSuffix(string(got), "\n\nTeam\n") {
		t.Errorf("team page =\n%s", got)
	}
	if report.Stats.Converted != 2 {
		t.Errorf("Converted = %d, want 2", report.Stats.Converted)
	}
}
