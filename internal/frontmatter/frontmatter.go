// Package frontmatter builds and serializes the metadata header of a
// converted document.
//
// The header is a YAML subset written by hand so the field order and the
// quoting are stable: string values are always double-quoted, integers are
// bare, lists are bracketed and comma-joined with each element quoted.
package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter opens and closes the header block.
const Delimiter = "---"

// Field is one serialized key/value line of a header.
type Field struct {
	Key   string
	Value string
}

// Frontmatter is an ordered list of header fields. Keys are unique.
type Frontmatter struct {
	fields []Field
	index  map[string]int
}

// New returns an empty Frontmatter.
func New() *Frontmatter {
	return &Frontmatter{index: make(map[string]int)}
}

// String appends a quoted string field.
func (f *Frontmatter) String(key, value string) {
	f.set(key, Quote(value))
}

// Int appends an integer field.
func (f *Frontmatter) Int(key string, value int) {
	f.set(key, strconv.Itoa(value))
}

// List appends a bracketed list of quoted strings.
func (f *Frontmatter) List(key string, values []string) {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	f.set(key, "["+strings.Join(quoted, ", ")+"]")
}

// set replaces the value of an existing key in place, keeping its position.
func (f *Frontmatter) set(key, value string) {
	if i, ok := f.index[key]; ok {
		f.fields[i].Value = value
		return
	}
	f.index[key] = len(f.fields)
	f.fields = append(f.fields, Field{Key: key, Value: value})
}

// Has reports whether key is present.
func (f *Frontmatter) Has(key string) bool {
	_, ok := f.index[key]
	return ok
}

// Get returns the serialized value of key.
func (f *Frontmatter) Get(key string) (string, bool) {
	i, ok := f.index[key]
	if !ok {
		return "", false
	}
	return f.fields[i].Value, true
}

// Fields returns a copy of the fields in order.
func (f *Frontmatter) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Serialize renders the header including both delimiters, without a
// trailing newline.
func (f *Frontmatter) Serialize() string {
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, field := range f.fields {
		b.WriteString(field.Key)
		b.WriteString(": ")
		b.WriteString(field.Value)
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	return b.String()
}

// Quote wraps s in double quotes, escaping backslashes, quotes and control
// characters with YAML double-quoted escapes.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
