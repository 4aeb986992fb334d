package wp2mdx

import (
	"net/http"
	"strconv"

	"github.com/alnah/go-wp2mdx/internal/dateutil"
)

// BlogPrefix is the path under which posts are served after migration.
const BlogPrefix = "/blog/"

// Redirect maps an old permalink to its new path.
type Redirect struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Status int    `json:"status"`
	Type   string `json:"type"`
}

// BuildRedirects maps the date-based permalink of each post to
// /blog/<slug>/. Without date tags in the site's permalink structure old
// and new links are the same and nil is returned. Posts whose date does not
// parse are recorded in report and skipped.
func BuildRedirects(site SiteSettings, posts []Record, report *Report) []Redirect {
	structure := site.PermalinkStructure
	if !dateutil.HasDateTags(structure) {
		return nil
	}
	if report == nil {
		report = &Report{}
	}

	var out []Redirect
	for _, p := range posts {
		if p.Date == "" {
			continue
		}
		t, err := dateutil.ParseExportDate(p.Date)
		if err != nil {
			report.Issuef("%s %d: no redirect: %v", itemType(p), p.ID, err)
			continue
		}

		slug := recordSlug(p)
		from, err := dateutil.ExpandPermalink(structure, t, map[string]string{
			"postname": slug,
			"post_id":  strconv.Itoa(p.ID),
		})
		if err != nil {
			report.Issuef("%s %d: no redirect: %v", itemType(p), p.ID, err)
			continue
		}

		to := BlogPrefix + slug + "/"
		if from == to {
			continue
		}
		out = append(out, Redirect{
			From:   from,
			To:     to,
			Status: http.StatusMovedPermanently,
			Type:   TypePost,
		})
	}
	return out
}
