package wp2mdx

import (
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Stats counts item outcomes of a batch run.
type Stats struct {
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Report accumulates the unknown shortcode names and conversion issues of a
// run. A Report is not safe for concurrent use: concurrent workers each own
// one and the results are combined with Merge.
type Report struct {
	RunID     string
	Timestamp time.Time
	Stats     Stats

	unknown map[string]struct{}
	issues  []string
}

// NewReport returns an empty Report with a fresh run id.
func NewReport(timestamp time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Timestamp: timestamp,
		unknown:   make(map[string]struct{}),
	}
}

// RecordUnknownTag adds a shortcode name to the unknown set.
func (r *Report) RecordUnknownTag(name string) {
	if r.unknown == nil {
		r.unknown = make(map[string]struct{})
	}
	r.unknown[name] = struct{}{}
}

// RecordIssue appends an issue.
func (r *Report) RecordIssue(msg string) {
	r.issues = append(r.issues, msg)
}

// Issuef appends a formatted issue.
func (r *Report) Issuef(format string, args ...any) {
	r.RecordIssue(fmt.Sprintf(format, args...))
}

// UnknownShortcodes returns the unknown names sorted.
func (r *Report) UnknownShortcodes() []string {
	names := make([]string, 0, len(r.unknown))
	for name := range r.unknown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Issues returns a copy of the issues in the order they were recorded.
func (r *Report) Issues() []string {
	out := make([]string, len(r.issues))
	copy(out, r.issues)
	return out
}

// Merge adds the names, issues and counters of other to r. The run id and
// timestamp of r are kept.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for name := range other.unknown {
		r.RecordUnknownTag(name)
	}
	r.issues = append(r.issues, other.issues...)
	r.Stats.Converted += other.Stats.Converted
	r.Stats.Skipped += other.Stats.Skipped
	r.Stats.Failed += other.Stats.Failed
}

// reportJSON is the serialized form of a Report.
type reportJSON struct {
	UnknownShortcodes []string `json:"unknownShortcodes"`
	ConversionIssues  []string `json:"conversionIssues"`
	Timestamp         string   `json:"timestamp"`
	RunID             string   `json:"runId"`
	Stats             Stats    `json:"stats"`
}

// MarshalJSON writes the report artifact. Lists are never null.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		UnknownShortcodes: r.UnknownShortcodes(),
		ConversionIssues:  r.Issues(),
		Timestamp:         r.Timestamp.Format(time.RFC3339),
		RunID:             r.RunID,
		Stats:             r.Stats,
	})
}

// UnmarshalJSON reads a report artifact written by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var in reportJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339, in.Timestamp)
	if err != nil && in.Timestamp != "" {
		return fmt.Errorf("report timestamp: %w", err)
	}

	*r = Report{
		RunID:     in.RunID,
		Timestamp: ts,
		Stats:     in.Stats,
		unknown:   make(map[string]struct{}, len(in.UnknownShortcodes)),
		issues:    in.ConversionIssues,
	}
	for _, name := range in.UnknownShortcodes {
		r.unknown[name] = struct{}{}
	}
	return nil
}

// itemRecorder prefixes the issues of one item with its identity.
type itemRecorder struct {
	report *Report
	prefix string
}

func (r itemRecorder) RecordUnknownTag(name string) { r.report.RecordUnknownTag(name) }

func (r itemRecorder) RecordIssue(msg string) { r.report.RecordIssue(r.prefix + msg) }

func newItemRecorder(report *Report, rec Record) itemRecorder {
	return itemRecorder{report: report, prefix: fmt.Sprintf("%s %d: ", itemType(rec), rec.ID)}
}
