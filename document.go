package wp2mdx

import "github.com/alnah/go-wp2mdx/internal/frontmatter"

// Document is one converted record.
type Document struct {
	ID   int
	Type string
	Slug string

	// Path is slash-separated and relative to the output root.
	Path string

	Frontmatter *frontmatter.Frontmatter
	Body        string
}

// Header returns the serialized frontmatter block.
func (d *Document) Header() string {
	if d.Frontmatter == nil {
		return frontmatter.New().Serialize()
	}
	return d.Frontmatter.Serialize()
}

// Bytes returns the file content: header, a blank line, the body and a
// final newline.
func (d *Document) Bytes() []byte {
	return []byte(d.Header() + "\n\n" + d.Body + "\n")
}
