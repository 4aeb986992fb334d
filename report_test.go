package wp2mdx

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// ---------------------------------------------------------------------------
// TestReport - Accumulation and merge
// ---------------------------------------------------------------------------

func TestReport_UnknownShortcodesSortedAndDeduplicated(t *testing.T) {
	t.Parallel()

	r := NewReport(time.Now())
	for _, name := range []string{"zeta", "foo_bar", "alpha", "foo_bar"} {
		r.RecordUnknownTag(name)
	}

	want := []string{"alpha", "foo_bar", "zeta"}
	if got := r.UnknownShortcodes(); !slices.Equal(got, want) {
		t.Errorf("UnknownShortcodes() = %v, want %v", got, want)
	}
}

func TestReport_ZeroValueUsable(t *testing.T) {
	t.Parallel()

	var r Report
	r.RecordUnknownTag("x")
	r.Issuef("page %d: %s", 3, "odd")

	if got := r.UnknownShortcodes(); !slices.Equal(got, []string{"x"}) {
		t.Errorf("UnknownShortcodes() = %v, want [x]", got)
	}
	if got := r.Issues(); !slices.Equal(got, []string{"page 3: odd"}) {
		t.Errorf("Issues() = %v, want [page 3: odd]", got)
	}
}

func TestReport_Merge(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewReport(ts)
	r.RecordUnknownTag("foo_bar")
	r.RecordIssue("first")
	r.Stats.Converted = 1

	other := &Report{RunID: "other", Stats: Stats{Converted: 2, Skipped: 1, Failed: 1}}
	other.RecordUnknownTag("foo_bar")
	other.RecordUnknownTag("baz")
	other.RecordIssue("second")

	runID := r.RunID
	r.Merge(other)
	r.Merge(nil)

	if r.RunID != runID || !r.Timestamp.Equal(ts) {
		t.Errorf("Merge() changed identity to %q %v", r.RunID, r.Timestamp)
	}
	if got := r.UnknownShortcodes(); !slices.Equal(got, []string{"baz", "foo_bar"}) {
		t.Errorf("UnknownShortcodes() = %v, want [baz foo_bar]", got)
	}
	if got := r.Issues(); !slices.Equal(got, []string{"first", "second"}) {
		t.Errorf("Issues() = %v, want [first second]", got)
	}
	if want := (Stats{Converted: 3, Skipped: 1, Failed: 1}); r.Stats != want {
		t.Errorf("Stats = %+v, want %+v", r.Stats, want)
	}
}

func TestReport_IssuesReturnsCopy(t *testing.T) {
	t.Parallel()

	r := &Report{}
	r.RecordIssue("a")
	r.Issues()[0] = "changed"

	if got := r.Issues()[0]; got != "a" {
		t.Errorf("Issues()[0] = %q, want %q", got, "a")
	}
}

func TestNewReport_RunIDUnique(t *testing.T) {
	t.Parallel()

	a, b := NewReport(time.Now()), NewReport(time.Now())
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run ids %q and %q should be distinct and non-empty", a.RunID, b.RunID)
	}
}

// ---------------------------------------------------------------------------
// TestReport_JSON - Artifact format
// ---------------------------------------------------------------------------

func TestReport_MarshalJSON(t *testing.T) {
	t.Parallel()

	r := NewReport(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC))
	r.RunID = "run-1"

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}

	want := `{"unknownShortcodes":[],"conversionIssues":[],"timestamp":"2024-03-04T05:06:07Z","runId":"run-1","stats":{"converted":0,"skipped":0,"failed":0}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestReport_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	in := `{"unknownShortcodes":["b","a"],"conversionIssues":["post 1: x"],"timestamp":"2024-03-04T05:06:07Z","runId":"r","stats":{"converted":4,"skipped":1,"failed":0}}`

	var r Report
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if r.RunID != "r" || r.Stats.Converted != 4 || r.Stats.Skipped != 1 {
		t.Errorf("Unmarshal() = %+v", r)
	}
	if got := r.UnknownShortcodes(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("UnknownShortcodes() = %v, want [a b]", got)
	}
	if !r.Timestamp.Equal(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", r.Timestamp)
	}
}

func TestReport_UnmarshalJSON_BadTimestamp(t *testing.T) {
	t.Parallel()

	var r Report
	err := json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &r)
	if err == nil || !strings.Contains(err.Error(), "timestamp") {
		t.Errorf("Unmarshal() error = %v, want timestamp error", err)
	}
}
