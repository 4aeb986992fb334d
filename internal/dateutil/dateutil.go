// Package dateutil parses export timestamps and expands date-based
// permalink structures.
package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrInvalidDate indicates a timestamp in none of the accepted layouts.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidStructure indicates an empty, oversized or unresolvable
	// permalink structure.
	ErrInvalidStructure = errors.New("invalid permalink structure")
)

// MaxStructureLength limits permalink structure length.
const MaxStructureLength = 200

// exportLayouts are tried in order. Exports carry ISO timestamps without a
// zone; the database form with a space is accepted too.
var exportLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseExportDate parses an export timestamp. Zone-less values are UTC.
func ParseExportDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range exportLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// dateTags maps permalink structure tags to Go time layouts.
var dateTags = []struct {
	tag   string
	goFmt string
}{
	{"%year%", "2006"},
	{"%monthnum%", "01"},
	{"%day%", "02"},
	{"%hour%", "15"},
	{"%minute%", "04"},
	{"%second%", "05"},
}

var leftoverTag = regexp.MustCompile(`%[a-z_]+%`)

// HasDateTags reports whether structure contains any date tag.
func HasDateTags(structure string) bool {
	for _, d := range dateTags {
		if strings.Contains(structure, d.tag) {
			return true
		}
	}
	return false
}

// ExpandPermalink substitutes the date tags of structure with t and the
// other tags with values (keyed by tag name without percent signs, e.g.
// "postname"). A tag left unresolved is an error.
//
// Example: "/%year%/%monthnum%/%day%/%postname%/" with 2021-05-03 and
// postname "hello" gives "/2021/05/03/hello/".
func ExpandPermalink(structure string, t time.Time, values map[string]string) (string, error) {
	if structure == "" {
		return "", fmt.Errorf("%w: structure cannot be empty", ErrInvalidStructure)
	}
	if len(structure) > MaxStructureLength {
		return "", fmt.Errorf("%w: structure exceeds %d characters", ErrInvalidStructure, MaxStructureLength)
	}

	out := structure
	for _, d := range dateTags {
		out = strings.ReplaceAll(out, d.tag, t.Format(d.goFmt))
	}
	for name, v := range values {
		out = strings.ReplaceAll(out, "%"+name+"%", v)
	}

	if tag := leftoverTag.FindString(out); tag != "" {
		return "", fmt.Errorf("%w: unresolved tag %s", ErrInvalidStructure, tag)
	}
	return out, nil
}
