package pipeline

import (
	"regexp"
)

// blockRule maps one Gutenberg block kind to the markup that replaces its
// opening and closing markers. Empty replacements unwrap the block.
type blockRule struct {
	open      *regexp.Regexp
	close     *regexp.Regexp
	openWith  string
	closeWith string
}

// newBlockRule compiles marker patterns for kind, a regexp fragment matched
// as a whole block name. Markers swallow the whitespace next to the content
// they delimit.
func newBlockRule(kind, openWith, closeWith string) blockRule {
	return blockRule{
		open:      regexp.MustCompile(`(?s)<!--\s*wp:(?:` + kind + `)(?:\s.*?)?-->\s*`),
		close:     regexp.MustCompile(`\s*<!--\s*/wp:(?:` + kind + `)\s*-->`),
		openWith:  openWith,
		closeWith: closeWith,
	}
}

// blockRules is applied top to bottom. Order matters: the generic marker
// rules at the end would otherwise swallow the classed containers.
var blockRules = []blockRule{
	// Text blocks keep their inner HTML
	newBlockRule(`paragraph|heading|list|list-item|quote|code|preformatted`, "", ""),

	// Layout blocks become classed containers
	newBlockRule(`group`, `<div class="content-group">`, `</div>`),
	newBlockRule(`columns`, `<div class="columns">`, `</div>`),
	newBlockRule(`column`, `<div class="column">`, `</div>`),

	// Media blocks keep their figure markup
	newBlockRule(`image|video|audio`, "", ""),
	newBlockRule(`gallery`, `<div class="gallery">`, `</div>`),

	// Embeds, including the pre-5.6 core-embed/<provider> names
	newBlockRule(`embed|core-embed/[a-z0-9-]+`, `<div class="embed">`, `</div>`),
}

// Any marker left after the table ran, including self-closing ones.
var leftoverBlockMarker = regexp.MustCompile(`(?s)<!--\s*/?wp:[a-zA-Z0-9_/-]+(?:\s.*?)?-->`)

// NormalizeBlocks resolves Gutenberg block comment markers. Known kinds are
// unwrapped or replaced with a classed container; unknown markers are
// stripped and their inner content kept.
//
// Markers are matched independently rather than paired, which is sound for
// the non-overlapping marker pairs the block editor writes.
func NormalizeBlocks(content string) string {
	if content == "" {
		return ""
	}

	for _, rule := range blockRules {
		content = rule.open.ReplaceAllLiteralString(content, rule.openWith)
		content = rule.close.ReplaceAllLiteralString(content, rule.closeWith)
	}
	return leftoverBlockMarker.ReplaceAllLiteralString(content, "")
}
