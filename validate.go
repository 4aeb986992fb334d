package wp2mdx

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"

	"github.com/alnah/go-wp2mdx/internal/pipeline"
)

// requiredKeys are present in every header.
var requiredKeys = []string{"title", "permalink", "date", "type", "status"}

// maxFragmentReport bounds how much of a raw HTML fragment an issue quotes.
const maxFragmentReport = 60

// Validator reads a document back the way a site generator would. It is not
// safe for concurrent use; give each worker its own.
type Validator struct {
	preview *pipeline.Previewer
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{preview: pipeline.NewPreviewer()}
}

// Validate re-parses the header of doc, checks its permalink and looks for
// raw HTML left in the body. Findings are recorded in report. The returned
// error wraps ErrInvalidFrontmatter when the header does not parse or lacks
// a required key; body findings never produce an error.
func (v *Validator) Validate(doc *Document, report *Report) error {
	if report == nil {
		report = &Report{}
	}
	rr := itemRecorder{report: report, prefix: fmt.Sprintf("%s %d: ", doc.Type, doc.ID)}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(doc.Bytes()), &meta)
	if err != nil {
		rr.RecordIssue("header does not parse: " + err.Error())
		return fmt.Errorf("%w: %s %d: %v", ErrInvalidFrontmatter, doc.Type, doc.ID, err)
	}

	for _, key := range requiredKeys {
		if _, ok := meta[key]; !ok {
			rr.RecordIssue("header lacks " + key)
			return fmt.Errorf("%w: %s %d: missing %s", ErrInvalidFrontmatter, doc.Type, doc.ID, key)
		}
	}

	if permalink, _ := meta["permalink"].(string); !slug.IsValid(permalink) {
		rr.RecordIssue(fmt.Sprintf("permalink %q is not a clean slug", permalink))
	}

	for _, fragment := range v.preview.RawHTML(string(body)) {
		rr.RecordIssue("raw HTML in body: " + truncate(fragment, maxFragmentReport))
	}
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
