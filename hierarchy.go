package wp2mdx

import (
	"sort"
	"strings"
)

// HierarchyNode is the position of a page in the page tree.
type HierarchyNode struct {
	ID       int    `json:"id"`
	Slug     string `json:"slug"`
	Path     string `json:"fullPath"`
	ParentID int    `json:"parentId"`
	Title    string `json:"title"`
}

// BuildHierarchy computes the full path of every page by walking parent
// links up to the root: the slugs of all ancestors, root first, then the
// page's own slug, joined with "/".
//
// A parent missing from pages ends the walk. A parent link leading back to
// a page already on the walk ends it too and is recorded in report.
func BuildHierarchy(pages []Record, report *Report) map[int]HierarchyNode {
	if report == nil {
		report = &Report{}
	}

	byID := make(map[int]Record, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
	}

	nodes := make(map[int]HierarchyNode, len(pages))
	for _, p := range pages {
		nodes[p.ID] = HierarchyNode{
			ID:       p.ID,
			Slug:     recordSlug(p),
			Path:     pagePath(p, byID, report),
			ParentID: p.ParentID,
			Title:    p.Title,
		}
	}
	return nodes
}

func pagePath(page Record, byID map[int]Record, report *Report) string {
	segments := []string{recordSlug(page)}
	visited := map[int]bool{page.ID: true}

	for cur := page; cur.ParentID > 0; {
		parent, ok := byID[cur.ParentID]
		if !ok {
			break
		}
		if visited[parent.ID] {
			report.Issuef("%s %d: parent cycle through page %d", TypePage, page.ID, parent.ID)
			break
		}
		visited[parent.ID] = true
		segments = append(segments, recordSlug(parent))
		cur = parent
	}

	// Collected leaf first.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// ApplyHierarchy returns a copy of pages with Path set from nodes.
func ApplyHierarchy(pages []Record, nodes map[int]HierarchyNode) []Record {
	out := make([]Record, len(pages))
	for i, p := range pages {
		if n, ok := nodes[p.ID]; ok {
			p.Path = n.Path
		}
		out[i] = p
	}
	return out
}

// Records returns every item of the export in conversion order: posts,
// pages with their hierarchy path, then custom types sorted by name.
// Hierarchy anomalies are recorded in report.
func (e *Export) Records(report *Report) []Record {
	pages := ApplyHierarchy(e.Pages, BuildHierarchy(e.Pages, report))

	n := len(e.Posts) + len(pages)
	types := make([]string, 0, len(e.Custom))
	for t, recs := range e.Custom {
		types = append(types, t)
		n += len(recs)
	}
	sort.Strings(types)

	out := make([]Record, 0, n)
	out = append(out, e.Posts...)
	out = append(out, pages...)
	for _, t := range types {
		out = append(out, e.Custom[t]...)
	}
	return out
}
