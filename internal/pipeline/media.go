package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MediaRefs lists the media URLs an HTML body references, in document order
// without duplicates.
//
// Collected:
//   - img[src]
//   - video[src], audio[src], source[src]
//
// Not collected: srcset candidates and CSS url() references.
func MediaRefs(content string) []string {
	if content == "" {
		return nil
	}

	var refs []string
	seen := make(map[string]bool)

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF at the end of input
			return refs
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		switch tok.DataAtom {
		case atom.Img, atom.Video, atom.Audio, atom.Source:
		default:
			continue
		}
		for _, attr := range tok.Attr {
			if attr.Key != "src" {
				continue
			}
			src := strings.TrimSpace(attr.Val)
			if src != "" && !seen[src] {
				seen[src] = true
				refs = append(refs, src)
			}
		}
	}
}
