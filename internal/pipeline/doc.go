// Package pipeline implements the body transformation stages that turn a
// WordPress content body into an MDX document body.
//
// Stages run in a fixed order, each one a pure string to string function:
//   - NormalizeBlocks resolves Gutenberg block comment markers
//   - MacroExpander expands WPBakery and theme shortcodes
//   - LinkRewriter relativizes site-internal links
//   - ToMDX converts the remaining HTML to Markdown and escapes it for MDX
//
// Each stage keeps its rules in an ordered table. Later rules may assume the
// constructs handled by earlier rules are gone, so tables must not be
// reordered casually.
//
// The package also holds the read-only helpers that inspect bodies without
// rewriting them: MediaRefs lists image references in HTML, and the
// Previewer renders a finished MDX body to HTML for review.
package pipeline
