package wp2mdx

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/alnah/go-wp2mdx/internal/fileutil"
	"github.com/alnah/go-wp2mdx/internal/frontmatter"
	"github.com/alnah/go-wp2mdx/internal/logging"
	"github.com/alnah/go-wp2mdx/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Recorder = (*Report)(nil)
	_ pipeline.Recorder = itemRecorder{}
)

// Directory names and extension of written documents.
const (
	PostsDir      = "posts"
	PagesDir      = "pages"
	DocumentExt   = ".mdx"
	customTypeCut = "stm_"
)

// Converter turns records into documents. It holds no per-item state and is
// safe for concurrent use.
type Converter struct {
	cfg      converterConfig
	macros   *pipeline.MacroExpander
	links    *pipeline.LinkRewriter
	builder  *frontmatter.Builder
	excluded map[string]bool
}

// NewConverter creates a Converter. Without options links are left absolute,
// only the built-in shortcodes are known and DefaultExcludedTypes are skipped.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			excludedTypes: DefaultExcludedTypes,
			now:           time.Now,
			logger:        logging.NoOp(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.macros = pipeline.NewMacroExpander(c.cfg.knownShortcodes...)
	c.links = pipeline.NewLinkRewriter(c.cfg.baseURL, c.cfg.mediaPrefix)
	c.builder = frontmatter.NewBuilder(c.cfg.now)
	c.excluded = make(map[string]bool, len(c.cfg.excludedTypes))
	for _, t := range c.cfg.excludedTypes {
		c.excluded[t] = true
	}
	return c
}

// Excluded reports whether records of type itemType are skipped.
func (c *Converter) Excluded(itemType string) bool {
	return c.excluded[itemType]
}

// Now returns the converter clock's current time.
func (c *Converter) Now() time.Time {
	return c.cfg.now()
}

// Convert transforms one record. Unknown shortcodes and issues are recorded
// into report, issues prefixed with the record type and id; a nil report
// discards them. Malformed markup never fails an item. A panic inside a
// stage is returned as ErrTransform.
func (c *Converter) Convert(ctx context.Context, rec Record, report *Report) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %s %d: %v", ErrTransform, itemType(rec), rec.ID, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if report == nil {
		report = &Report{}
	}
	rr := newItemRecorder(report, rec)

	if c.cfg.manifest != nil {
		for _, ref := range AuditMedia(rec.Content, c.cfg.manifest) {
			rr.RecordIssue("media not in manifest: " + ref)
		}
	}

	body := c.transformBody(rec.Content, rr)
	fm := c.builder.Build(c.source(rec))

	c.cfg.logger.Debug("record converted",
		"type", itemType(rec), "id", rec.ID, "bytes", len(body))

	return &Document{
		ID:          rec.ID,
		Type:        itemType(rec),
		Slug:        c.Slug(rec),
		Path:        c.OutputPath(rec),
		Frontmatter: fm,
		Body:        body,
	}, nil
}

// transformBody runs the body stages in order. Order matters:
//   - block markers go first so shortcodes inside blocks are exposed
//   - shortcodes expand before links so expanded anchors are rewritten
//   - ToMDX runs last, it is the only stage decoding entities
func (c *Converter) transformBody(content string, rec pipeline.Recorder) string {
	if content == "" {
		return ""
	}
	body := pipeline.NormalizeBlocks(content)
	body = c.macros.Expand(body, rec)
	body = c.links.Rewrite(body)
	return pipeline.ToMDX(body)
}

// Slug returns the permalink slug of rec.
func (c *Converter) Slug(rec Record) string {
	return recordSlug(rec)
}

// recordSlug resolves the slug of rec the way its header does: the record
// slug, else the slugified title, else untitled-<id>.
func recordSlug(rec Record) string {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = frontmatter.DefaultTitle
	}
	return frontmatter.ResolveSlug(rec.Slug, title, rec.ID)
}

// OutputPath returns the slash-separated path of rec's document relative to
// the output root:
//   - posts: posts/<slug>.mdx
//   - pages: pages/<slug>.mdx, or pages/<hierarchy path>.mdx when nesting
//   - custom types: <type without stm_ prefix>/<slug>.mdx
func (c *Converter) OutputPath(rec Record) string {
	name := fileutil.SafeName(c.Slug(rec))
	if name == "" {
		name = fmt.Sprintf("untitled-%d", rec.ID)
	}

	switch t := itemType(rec); t {
	case TypePost:
		return path.Join(PostsDir, name+DocumentExt)
	case TypePage:
		if c.cfg.nestPages && rec.Path != "" {
			if nested := safePath(rec.Path); nested != "" {
				return path.Join(PagesDir, nested+DocumentExt)
			}
		}
		return path.Join(PagesDir, name+DocumentExt)
	default:
		dir := fileutil.SafeName(strings.TrimPrefix(t, customTypeCut))
		if dir == "" {
			dir = fileutil.SafeName(t)
		}
		return path.Join(dir, name+DocumentExt)
	}
}

// safePath sanitizes each segment of a slash-joined hierarchy path.
func safePath(p string) string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if s := fileutil.SafeName(seg); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// source maps a record to the header builder input.
func (c *Converter) source(rec Record) frontmatter.Source {
	src := frontmatter.Source{
		ID:         rec.ID,
		Type:       itemType(rec),
		Title:      rec.Title,
		Slug:       rec.Slug,
		Date:       rec.Date,
		Modified:   rec.Modified,
		Status:     rec.Status,
		Excerpt:    rec.Excerpt,
		Content:    rec.Content,
		AuthorID:   rec.AuthorID,
		MenuOrder:  rec.MenuOrder,
		ParentID:   rec.ParentID,
		Path:       rec.Path,
		Categories: termSlugs(rec.Categories),
		Tags:       termSlugs(rec.Tags),
	}

	if len(rec.Taxonomies) > 0 {
		src.Taxonomies = make(map[string][]string, len(rec.Taxonomies))
		for name, terms := range rec.Taxonomies {
			src.Taxonomies[name] = termSlugs(terms)
		}
	}
	if rec.FeaturedImage != nil {
		src.Image = &frontmatter.Image{URL: rec.FeaturedImage.URL, Alt: rec.FeaturedImage.Alt}
	}
	if len(rec.Meta) > 0 {
		src.Meta = make(map[string]string, len(frontmatter.DescriptionKeys))
		for _, key := range frontmatter.DescriptionKeys {
			if v, ok := rec.Meta[key]; ok {
				src.Meta[key] = v.First()
			}
		}
	}
	return src
}

// itemType returns the record type, treating an empty type as a post.
func itemType(rec Record) string {
	if rec.Type == "" {
		return TypePost
	}
	return rec.Type
}
