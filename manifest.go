package wp2mdx

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// UploadsSegment is the path segment under which WordPress stores uploads.
const UploadsSegment = "/wp-content/uploads/"

// MediaEntry is one line of the media manifest.
type MediaEntry struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	File     string `json:"file"`
	MimeType string `json:"mimeType"`
	Title    string `json:"title"`
	Alt      string `json:"alt"`
}

// MediaManifest lists exported attachments in export order and answers
// whether a body reference points at one of them.
type MediaManifest struct {
	Entries []MediaEntry

	files map[string]bool // upload-relative paths, lower-cased
}

// resizedSuffix matches the size suffix WordPress adds to generated
// thumbnails, e.g. photo-300x200.jpg.
var resizedSuffix = regexp.MustCompile(`-\d+x\d+(\.[A-Za-z0-9]+)$`)

// NewMediaManifest builds the manifest of items.
func NewMediaManifest(items []MediaItem) *MediaManifest {
	m := &MediaManifest{
		Entries: make([]MediaEntry, 0, len(items)),
		files:   make(map[string]bool, len(items)),
	}
	for _, item := range items {
		m.Entries = append(m.Entries, MediaEntry{
			ID:       item.ID,
			URL:      item.URL,
			File:     item.File,
			MimeType: item.MimeType,
			Title:    item.Title,
			Alt:      item.Alt,
		})
		if item.File != "" {
			m.files[strings.ToLower(strings.TrimPrefix(item.File, "/"))] = true
		}
		if rel := uploadPath(item.URL); rel != "" {
			m.files[rel] = true
		}
	}
	return m
}

// Len returns the number of entries.
func (m *MediaManifest) Len() int {
	return len(m.Entries)
}

// Has reports whether ref, a URL or path containing the uploads segment,
// names a manifest file or one of its resized variants. References outside
// the uploads directory are not manifest files.
func (m *MediaManifest) Has(ref string) bool {
	rel := uploadPath(ref)
	if rel == "" {
		return false
	}
	if m.files[rel] {
		return true
	}
	return m.files[resizedSuffix.ReplaceAllString(rel, "$1")]
}

// MarshalJSON writes the entries as an array, never null.
func (m *MediaManifest) MarshalJSON() ([]byte, error) {
	if m.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.Entries)
}

// uploadPath returns the lower-cased path of ref below the uploads segment
// without query or fragment, or "" when ref is not an upload.
func uploadPath(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	} else if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}

	i := strings.Index(strings.ToLower(ref), UploadsSegment)
	if i < 0 {
		return ""
	}
	rel := path.Clean(ref[i+len(UploadsSegment):])
	if rel == "." || rel == "/" {
		return ""
	}
	return strings.ToLower(rel)
}
