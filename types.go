package wp2mdx

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Item type constants for the built-in collections.
const (
	TypePost = "post"
	TypePage = "page"
)

// Term is a taxonomy term reference.
type Term struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// FeaturedImage is the attachment set as an item's thumbnail.
type FeaturedImage struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Alt   string `json:"alt"`
	File  string `json:"file"`
}

// MetaValue is a post meta value. Keys stored several times hold several
// values in order; single values decode from a plain JSON string.
type MetaValue []string

// UnmarshalJSON accepts a string, a number, a boolean, null, an array of
// those, or an object (kept as its raw JSON text).
func (m *MetaValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*m = nil
	case []any:
		out := make(MetaValue, 0, len(v))
		for _, elem := range v {
			out = append(out, metaString(elem))
		}
		*m = out
	case map[string]any:
		*m = MetaValue{strings.TrimSpace(string(data))}
	default:
		*m = MetaValue{metaString(v)}
	}
	return nil
}

// MarshalJSON writes a single value as a string and several as an array.
func (m MetaValue) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}

// First returns the first value, or "" when there is none.
func (m MetaValue) First() string {
	if len(m) == 0 {
		return ""
	}
	return m[0]
}

func metaString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Record is one exported content item: a post, a page or a custom type item.
// Records are not modified by the conversion.
type Record struct {
	ID            int                  `json:"id"`
	AuthorID      int                  `json:"authorId"`
	Date          string               `json:"date"`
	DateGMT       string               `json:"dateGmt"`
	Content       string               `json:"content"`
	Title         string               `json:"title"`
	Excerpt       string               `json:"excerpt"`
	Status        string               `json:"status"`
	Slug          string               `json:"slug"`
	Modified      string               `json:"modified"`
	ModifiedGMT   string               `json:"modifiedGmt"`
	ParentID      int                  `json:"parentId"`
	GUID          string               `json:"guid"`
	MenuOrder     int                  `json:"menuOrder"`
	Type          string               `json:"type"`
	Categories    []Term               `json:"categories"`
	Tags          []Term               `json:"tags"`
	FeaturedImage *FeaturedImage       `json:"featuredImage"`
	Meta          map[string]MetaValue `json:"meta"`
	Taxonomies    map[string][]Term    `json:"taxonomies"`

	// Path is the slash-joined hierarchy path of a page, set by
	// ApplyHierarchy. Not part of the export.
	Path string `json:"-"`
}

// SiteSettings is the exported site configuration.
type SiteSettings struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	BaseURL            string `json:"baseUrl"`
	HomeURL            string `json:"homeUrl"`
	Timezone           string `json:"timezone"`
	DateFormat         string `json:"dateFormat"`
	TimeFormat         string `json:"timeFormat"`
	PostsPerPage       int    `json:"postsPerPage"`
	PermalinkStructure string `json:"permalinkStructure"`
	Charset            string `json:"charset"`
	Language           string `json:"language"`
	Theme              string `json:"theme"`
	AdminEmail         string `json:"adminEmail"`
}

// MediaItem is an exported attachment.
type MediaItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url"`
	Date     string `json:"date"`
	Alt      string `json:"alt"`
	File     string `json:"file"`
}

// Export is a loaded export directory.
type Export struct {
	Site   SiteSettings
	Posts  []Record
	Pages  []Record
	Custom map[string][]Record // keyed by custom type name
	Media  []MediaItem
}

// termSlugs returns the slugs of terms, skipping empty ones.
func termSlugs(terms []Term) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Slug != "" {
			out = append(out, t.Slug)
		}
	}
	return out
}
