package frontmatter

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Item types with type-specific fields.
const (
	TypePost = "post"
	TypePage = "page"
)

const (
	// DefaultTitle replaces an empty title.
	DefaultTitle = "Untitled"

	// DefaultStatus replaces an empty status.
	DefaultStatus = "publish"

	// MaxExcerptLength is the excerpt limit in characters.
	MaxExcerptLength = 200
)

// DescriptionKeys are the SEO plugin meta keys read for the description,
// first non-empty wins.
var DescriptionKeys = []string{
	"_yoast_wpseo_metadesc",
	"rank_math_description",
	"_aioseo_description",
}

var (
	lineBreaks  = regexp.MustCompile(`\r\n|\r|\n`)
	taxonomyKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// Image is a featured image reference.
type Image struct {
	URL string
	Alt string
}

// Source holds the record fields a header is derived from.
type Source struct {
	ID         int
	Type       string
	Title      string
	Slug       string
	Date       string
	Modified   string
	Status     string
	Excerpt    string
	Content    string // raw body before conversion, for reading time
	AuthorID   int
	MenuOrder  int
	ParentID   int
	Path       string // hierarchy path, pages only
	Categories []string
	Tags       []string
	Taxonomies map[string][]string
	Image      *Image
	Meta       map[string]string
}

// Builder derives headers from records.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder using now for records without a date.
// A nil now uses time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build derives the header of src. Field order is fixed:
// title, permalink, date, updated, type, status, excerpt, description,
// categories, tags, custom taxonomies, featuredImage, featuredImageAlt,
// authorId, menuOrder, parentId, path, readingTime, canonicalUrl.
func (b *Builder) Build(src Source) *Frontmatter {
	fm := New()

	title := strings.TrimSpace(src.Title)
	if title == "" {
		title = DefaultTitle
	}
	slug := ResolveSlug(src.Slug, title, src.ID)

	fm.String("title", title)
	fm.String("permalink", slug)

	date := strings.TrimSpace(src.Date)
	if date == "" {
		date = b.now().Format(time.RFC3339)
	}
	fm.String("date", date)
	if modified := strings.TrimSpace(src.Modified); modified != "" {
		fm.String("updated", modified)
	}

	fm.String("type", src.Type)
	status := strings.TrimSpace(src.Status)
	if status == "" {
		status = DefaultStatus
	}
	fm.String("status", status)

	if excerpt := Excerpt(src.Excerpt); excerpt != "" {
		fm.String("excerpt", excerpt)
	}
	if desc := description(src.Meta); desc != "" {
		fm.String("description", desc)
	}

	if len(src.Categories) > 0 {
		fm.List("categories", src.Categories)
	}
	if len(src.Tags) > 0 {
		fm.List("tags", src.Tags)
	}
	addTaxonomies(fm, src.Taxonomies)

	if src.Image != nil {
		fm.String("featuredImage", src.Image.URL)
		fm.String("featuredImageAlt", src.Image.Alt)
	}
	if src.AuthorID != 0 {
		fm.Int("authorId", src.AuthorID)
	}

	switch src.Type {
	case TypePage:
		fm.Int("menuOrder", src.MenuOrder)
		fm.Int("parentId", src.ParentID)
		path := src.Path
		if path == "" {
			path = slug
		}
		fm.String("path", path)
	case TypePost:
		fm.Int("readingTime", ReadingTime(src.Content))
	}

	fm.String("canonicalUrl", "/"+slug+"/")
	return fm
}

// Excerpt flattens line breaks to spaces and truncates to MaxExcerptLength
// characters.
func Excerpt(s string) string {
	s = strings.TrimSpace(lineBreaks.ReplaceAllString(s, " "))
	r := []rune(s)
	if len(r) > MaxExcerptLength {
		s = strings.TrimSpace(string(r[:MaxExcerptLength]))
	}
	return s
}

func description(meta map[string]string) string {
	for _, key := range DescriptionKeys {
		if v := strings.TrimSpace(meta[key]); v != "" {
			return Excerpt(v)
		}
	}
	return ""
}

// addTaxonomies appends one slug list per custom taxonomy, sorted by name.
// Names that are not plain keys or that collide with a field already set
// are skipped.
func addTaxonomies(fm *Frontmatter, taxonomies map[string][]string) {
	names := make([]string, 0, len(taxonomies))
	for name, slugs := range taxonomies {
		if len(slugs) > 0 && taxonomyKey.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if reservedKeys[name] || fm.Has(name) {
			continue
		}
		fm.List(name, taxonomies[name])
	}
}

// reservedKeys are fields that may be emitted after taxonomies.
var reservedKeys = map[string]bool{
	"featuredImage":    true,
	"featuredImageAlt": true,
	"authorId":         true,
	"menuOrder":        true,
	"parentId":         true,
	"path":             true,
	"readingTime":      true,
	"canonicalUrl":     true,
}
