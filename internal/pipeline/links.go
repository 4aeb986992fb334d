package pipeline

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// Collapses separator runs inside a rewritten path
	repeatedSlashes = regexp.MustCompile(`/{2,}`)

	// /YYYY/MM/DD/slug with an optional trailing slash
	datedPath = regexp.MustCompile(`^/(\d{4})/(\d{2})/(\d{2})/([^/?#]+)/?$`)
)

// LinkRewriter relativizes absolute links that point at the old site.
type LinkRewriter struct {
	host        string
	pattern     *regexp.Regexp
	mediaPrefix string
}

// NewLinkRewriter builds a rewriter for links under baseURL. Links written
// with either scheme or protocol-relative are recognized. A non-empty
// mediaPrefix replaces the /wp-content/uploads/ directory in rewritten
// links. An empty or unparsable baseURL yields a rewriter that changes
// nothing.
func NewLinkRewriter(baseURL, mediaPrefix string) *LinkRewriter {
	r := &LinkRewriter{mediaPrefix: mediaPrefix}

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return r
	}
	r.host = u.Host

	// Site root path, e.g. WordPress installed under /blog
	root := strings.TrimRight(u.Path, "/")

	r.pattern = regexp.MustCompile(
		`(?i)(?:https?:)?//` + regexp.QuoteMeta(u.Host) + regexp.QuoteMeta(root) +
			`((?:/[^"'<>\s\]\)]*)?)`,
	)
	return r
}

// Rewrite applies the link rules in order:
//  1. dated permalinks become /blog/<slug>/
//  2. any other path under the site loses the scheme and host
//  3. repeated slashes inside the rewritten path collapse to one
//
// The dated rule must run first; once a link is relative its date
// segments can no longer be told apart from a page path.
func (r *LinkRewriter) Rewrite(content string) string {
	if r.pattern == nil || content == "" {
		return content
	}

	matches := r.pattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, m := range matches {
		// example.com must not claim example.com.evil.org or example.community
		if m[1] < len(content) && isHostChar(content[m[1]]) && m[3] == m[2] {
			continue
		}
		b.WriteString(content[last:m[0]])
		b.WriteString(r.rewritePath(content[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(content[last:])
	return b.String()
}

// rewritePath maps a site path (possibly with query and fragment) to its
// new location.
func (r *LinkRewriter) rewritePath(path string) string {
	if path == "" {
		return "/"
	}

	suffix := ""
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path, suffix = path[:i], path[i:]
	}
	path = repeatedSlashes.ReplaceAllString(path, "/")

	if m := datedPath.FindStringSubmatch(path); m != nil {
		return "/blog/" + m[4] + "/" + suffix
	}

	if r.mediaPrefix != "" {
		if rest, ok := strings.CutPrefix(path, "/wp-content/uploads/"); ok {
			path = strings.TrimRight(r.mediaPrefix, "/") + "/" + rest
		}
	}
	if path == "" {
		path = "/"
	}
	return path + suffix
}

func isHostChar(c byte) bool {
	return c == '.' || c == '-' || c == ':' || c == '_' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
