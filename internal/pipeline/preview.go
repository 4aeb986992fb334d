package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// ErrPreview indicates the MDX body could not be rendered.
var ErrPreview = errors.New("preview rendering failed")

// previewTemplate wraps goldmark's fragment output in a complete HTML5 document.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<article>
%s
</article>
</body>
</html>`

// Previewer renders converted MDX bodies to HTML for review, and inspects
// them for markup the converter should have removed.
type Previewer struct {
	md goldmark.Markdown
}

// NewPreviewer creates a Previewer with GFM extensions and syntax highlighting.
func NewPreviewer() *Previewer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldhtml.WithXHTML(),
			// Raw HTML is never rendered: a converted body should not contain any.
		),
	)
	return &Previewer{md: md}
}

// ToHTML renders body as a standalone HTML5 document titled title.
// Goldmark has no context support, so rendering runs in a goroutine and
// the caller stops waiting on cancellation.
func (p *Previewer) ToHTML(ctx context.Context, title, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := p.md.Convert([]byte(body), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrPreview, err)}
			return
		}
		done <- result{html: fmt.Sprintf(previewTemplate, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// RawHTML returns every raw HTML fragment goldmark finds in body, inline or
// block. A body produced by ToMDX yields none.
func (p *Previewer) RawHTML(body string) []string {
	src := []byte(body)
	doc := p.md.Parser().Parse(text.NewReader(src))

	var found []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(src))
			}
			found = append(found, b.String())
		case *ast.HTMLBlock:
			var b strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			found = append(found, strings.TrimSpace(b.String()))
		}
		return ast.WalkContinue, nil
	})
	return found
}
