package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// mdxRule is one step of the HTML to MDX conversion. Exactly one of
// replace or fn is used.
type mdxRule struct {
	pattern *regexp.Regexp
	replace string
	fn      func(string) string
}

func (r mdxRule) apply(content string) string {
	if r.fn != nil {
		return r.pattern.ReplaceAllStringFunc(content, r.fn)
	}
	return r.pattern.ReplaceAllString(content, r.replace)
}

// element matches <tag ...>inner</tag> by exact tag name, capturing the
// trimmed inner markup.
func element(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + tag + `(?:\s[^>]*)?>\s*(.*?)\s*</` + tag + `\s*>`)
}

// wrapInner surrounds non-empty inner text with marker, dropping empty
// elements instead of emitting a bare "****".
func wrapInner(re *regexp.Regexp, marker string) func(string) string {
	return func(match string) string {
		inner := re.FindStringSubmatch(match)[1]
		if inner == "" {
			return ""
		}
		return marker + inner + marker
	}
}

var (
	strongElem = element(`strong`)
	boldElem   = element(`b`)
	emElem     = element(`em`)
	italicElem = element(`i`)

	imgTag  = regexp.MustCompile(`(?is)<img\s[^>]*>`)
	srcAttr = regexp.MustCompile(`(?is)\ssrc\s*=\s*"([^"]*)"`)
	altAttr = regexp.MustCompile(`(?is)\salt\s*=\s*"([^"]*)"`)
)

// mdxMarkupRules convert markup while tags are still present.
// Order matters:
//   - comments, CSS, style and script go first so their text never leaks
//   - inline elements are converted inside block elements already unwrapped
//   - the catch-all tag strip runs last
var mdxMarkupRules = []mdxRule{
	// Noise
	{pattern: regexp.MustCompile(`(?s)<!--.*?-->`)},
	{pattern: regexp.MustCompile(`/\*!?[^*]*\*+(?:[^/*][^*]*\*+)*/`)},
	{pattern: regexp.MustCompile(`(?is)<style(?:\s[^>]*)?>.*?</style\s*>`)},
	{pattern: regexp.MustCompile(`(?is)<script(?:\s[^>]*)?>.*?</script\s*>`)},
	{pattern: regexp.MustCompile(`\.elementor[^{}<>\n]*\{[^{}]*\}`)},
	{pattern: regexp.MustCompile(`\.[a-zA-Z_-]+[^{}<>\n]*\{[^{}]*\}`)},

	// Headings, one rule per level
	{pattern: element(`h1`), replace: "# $1\n"},
	{pattern: element(`h2`), replace: "## $1\n"},
	{pattern: element(`h3`), replace: "### $1\n"},
	{pattern: element(`h4`), replace: "#### $1\n"},
	{pattern: element(`h5`), replace: "##### $1\n"},
	{pattern: element(`h6`), replace: "###### $1\n"},

	// Blocks and inlines
	{pattern: element(`p`), replace: "$1\n\n"},
	{pattern: regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*"([^"]*)"[^>]*>\s*(.*?)\s*</a\s*>`), replace: "[$2]($1)"},
	{pattern: strongElem, fn: wrapInner(strongElem, "**")},
	{pattern: boldElem, fn: wrapInner(boldElem, "**")},
	{pattern: emElem, fn: wrapInner(emElem, "*")},
	{pattern: italicElem, fn: wrapInner(italicElem, "*")},
	{pattern: element(`blockquote`), replace: "> $1\n"},
	{pattern: element(`li`), replace: "- $1\n"},
	{pattern: regexp.MustCompile(`(?i)</?(?:ul|ol)(?:\s[^>]*)?>`), replace: "\n"},
	{pattern: imgTag, fn: imageToMarkdown},
	{pattern: regexp.MustCompile(`(?i)<br\s*/?\s*>`), replace: "\n"},
	// Blank lines around the rule, or the line above becomes a setext heading
	{pattern: regexp.MustCompile(`(?i)<hr(?:\s[^>]*)?/?\s*>`), replace: "\n\n---\n\n"},

	// Everything else that still looks like a tag
	{pattern: regexp.MustCompile(`</?[a-zA-Z!][^>]*>`)},
}

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// & that would start a character reference when the output is parsed
	referenceStart = regexp.MustCompile(`&([#a-zA-Z])`)

	// Whitespace cleanup
	horizontalSpace  = regexp.MustCompile(`[ \t]+`)
	lineEdgeSpace    = regexp.MustCompile(`(?m)^ +| +$`)
	multipleNewlines = regexp.MustCompile(`\n{3,}`)
)

// mdxEscaper escapes text the MDX parser would treat as syntax.
var mdxEscaper = strings.NewReplacer(
	"{", "&#123;",
	"}", "&#125;",
	"<", "&lt;",
	"/*", "/&#42;",
)

// ToMDX converts an HTML body into an MDX-safe Markdown body.
//
// Entities are decoded once, after all tag rules ran, then the text is
// re-escaped so that braces, angle brackets and reference-like ampersands
// are inert. Applying ToMDX to its own output returns it unchanged.
func ToMDX(content string) string {
	if content == "" {
		return ""
	}

	content = normalizeLineEndings(content)
	for _, rule := range mdxMarkupRules {
		content = rule.apply(content)
	}

	// Ampersands first, so the references added below stay intact
	content = html.UnescapeString(content)
	content = referenceStart.ReplaceAllString(content, "&amp;$1")
	content = mdxEscaper.Replace(content)

	return collapseWhitespace(content)
}

// collapseWhitespace trims lines and limits blank lines to one. Lines are
// trimmed before newlines are counted so "\n \n \n" collapses too.
// Decoded references may have produced new carriage returns.
func collapseWhitespace(content string) string {
	content = normalizeLineEndings(content)
	content = horizontalSpace.ReplaceAllString(content, " ")
	content = lineEdgeSpace.ReplaceAllString(content, "")
	content = multipleNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// imageToMarkdown renders an <img> with its alt text, or "Image" when the
// tag has no alt attribute. Tags without a src are dropped.
func imageToMarkdown(tag string) string {
	src := srcAttr.FindStringSubmatch(tag)
	if src == nil {
		return ""
	}
	alt := "Image"
	if m := altAttr.FindStringSubmatch(tag); m != nil {
		alt = m[1]
	}
	return "![" + alt + "](" + src[1] + ")\n"
}
