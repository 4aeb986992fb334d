// Package export loads a WordPress content export directory.
//
// The directory holds one JSON file per collection:
//
//	site.json               required
//	posts.json              required
//	pages.json              optional
//	custom-post-types.json  optional, items keyed by type name
//	media.json              optional
//
// Every file is checked against an embedded JSON Schema before it is
// decoded, so a malformed export fails with the offending location instead
// of a half-filled record.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	wp2mdx "github.com/alnah/go-wp2mdx"
)

// Export file names.
const (
	SiteFile   = "site.json"
	PostsFile  = "posts.json"
	PagesFile  = "pages.json"
	CustomFile = "custom-post-types.json"
	MediaFile  = "media.json"
)

// Sentinel errors for export loading.
var (
	ErrMissingInput = errors.New("required export file missing")
	ErrReadInput    = errors.New("failed to read export file")
	ErrSchemaInput  = errors.New("export file does not match its schema")
	ErrDecodeInput  = errors.New("failed to decode export file")
)

// Load reads the export in dir. A missing required file fails with
// ErrMissingInput before anything else is read; missing optional files
// leave their collection empty.
func Load(dir string) (*wp2mdx.Export, error) {
	for _, name := range []string{SiteFile, PostsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingInput, filepath.Join(dir, name))
			}
			return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
	}

	exp := &wp2mdx.Export{}

	if err := load(dir, SiteFile, siteSchema, &exp.Site); err != nil {
		return nil, err
	}
	if err := load(dir, PostsFile, recordsSchema, &exp.Posts); err != nil {
		return nil, err
	}
	if err := load(dir, PagesFile, recordsSchema, &exp.Pages); err != nil {
		return nil, err
	}
	if err := load(dir, CustomFile, customSchema, &exp.Custom); err != nil {
		return nil, err
	}
	if err := load(dir, MediaFile, mediaSchema, &exp.Media); err != nil {
		return nil, err
	}

	fillTypes(exp.Posts, wp2mdx.TypePost)
	fillTypes(exp.Pages, wp2mdx.TypePage)
	for name, recs := range exp.Custom {
		fillTypes(recs, name)
	}
	return exp, nil
}

// load validates and decodes name into v. A missing file leaves v untouched.
func load(dir, name string, schema *schema, v any) error {
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path) // #nosec G304 -- export directory chosen by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecodeInput, name, err)
	}
	if err := schema.validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaInput, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecodeInput, name, err)
	}
	return nil
}

// fillTypes sets the type of records exported without one.
func fillTypes(recs []wp2mdx.Record, itemType string) {
	for i := range recs {
		if recs[i].Type == "" {
			recs[i].Type = itemType
		}
	}
}

// Summary counts the items of a loaded export.
type Summary struct {
	Posts  int
	Pages  int
	Custom map[string]int
	Media  int
}

// Summarize counts the items of exp.
func Summarize(exp *wp2mdx.Export) Summary {
	s := Summary{
		Posts:  len(exp.Posts),
		Pages:  len(exp.Pages),
		Custom: make(map[string]int, len(exp.Custom)),
		Media:  len(exp.Media),
	}
	for name, recs := range exp.Custom {
		s.Custom[name] = len(recs)
	}
	return s
}

// CustomTypes returns the custom type names of s, sorted.
func (s Summary) CustomTypes() []string {
	names := make([]string, 0, len(s.Custom))
	for name := range s.Custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
