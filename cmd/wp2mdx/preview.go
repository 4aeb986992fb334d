package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-wp2mdx/internal/fileutil"
	"github.com/alnah/go-wp2mdx/internal/pipeline"
)

// Sentinel errors for the preview and report commands.
var (
	ErrNoInput   = errors.New("no input specified")
	ErrReadInput = errors.New("failed to read input file")
	ErrWriteHTML = errors.New("failed to write HTML file")
)

// File permission for preview output.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// runPreview renders one converted document to HTML.
func runPreview(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: preview takes one .mdx file", ErrNoInput)
	}
	inputPath := positional[0]

	data, err := os.ReadFile(inputPath) // #nosec G304 -- path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	title, body := splitDocument(data, inputPath)

	previewer := pipeline.NewPreviewer()
	if !flags.common.quiet {
		for _, fragment := range previewer.RawHTML(body) {
			fmt.Fprintf(env.Stderr, "warning: raw HTML in %s: %s\n", inputPath, fragment)
		}
	}

	html, err := previewer.ToHTML(ctx, title, body)
	if err != nil {
		return err
	}
	if !flags.noStyle {
		css, err := pipeline.HighlightCSS(flags.style)
		if err != nil {
			return fmt.Errorf("%w: highlight style %q: %v", pipeline.ErrPreview, flags.style, err)
		}
		html = pipeline.InjectCSS(html, css)
	}

	if flags.output == "" {
		_, err := io.WriteString(env.Stdout, html)
		return err
	}
	if err := fileutil.WriteFileAtomic(flags.output, []byte(html), filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteHTML, err)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", flags.output)
	}
	return nil
}

// splitDocument separates the header of a document from its body and
// returns the header title, or the file name when there is none. A header
// that does not parse is previewed as part of the body.
func splitDocument(data []byte, path string) (title, body string) {
	title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var meta map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return title, string(data)
	}
	if t, ok := meta["title"].(string); ok && t != "" {
		title = t
	}
	return title, string(rest)
}
