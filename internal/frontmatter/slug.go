package frontmatter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugRuns     = regexp.MustCompile(`[\s-]+`)
	markupTag    = regexp.MustCompile(`<[^>]+>`)
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// Slugify derives a URL slug from text: compatibility decomposition, marks
// and other non-ASCII characters dropped, lower-cased, characters other than
// letters, digits, underscores, whitespace and hyphens removed, then
// whitespace and hyphen runs joined by a single hyphen.
//
// Examples:
//   - `Hello "World"` -> "hello-world"
//   - "Café Crème" -> "cafe-creme"
//   - " -- " -> ""
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, text)
	if err != nil {
		return ""
	}
	s := nonSlugChars.ReplaceAllString(strings.ToLower(ascii), "")
	s = slugRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ResolveSlug returns slug when set, else the slug derived from title, else
// "untitled-<id>" when the title yields nothing.
func ResolveSlug(slug, title string, id int) string {
	if s := strings.TrimSpace(slug); s != "" {
		return s
	}
	if s := Slugify(title); s != "" {
		return s
	}
	return "untitled-" + strconv.Itoa(id)
}

// ReadingTime estimates minutes to read an HTML body: tags stripped, words
// divided by WordsPerMinute, rounded half to even, at least one minute.
func ReadingTime(content string) int {
	words := len(strings.Fields(markupTag.ReplaceAllString(content, "")))
	minutes := int(math.RoundToEven(float64(words) / WordsPerMinute))
	return max(minutes, 1)
}
