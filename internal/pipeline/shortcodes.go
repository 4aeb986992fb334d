package pipeline

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var (
	// WordPress shortcode tag: [name attrs], [/name] or [name attrs /].
	// Names must start with a letter so footnote-style "[1]" stays text.
	shortcodeTag = regexp.MustCompile(`\[(/?)([a-zA-Z][a-zA-Z0-9_\-]*)((?:[\s/][^\[\]]*)?)\]`)

	// name="value" or name='value'
	shortcodeAttr = regexp.MustCompile(`([a-zA-Z0-9_\-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// videoHosts are link substrings rendered as a watch link by vc_video.
var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// Recorder receives what the expander could not convert faithfully.
type Recorder interface {
	RecordUnknownTag(name string)
	RecordIssue(msg string)
}

type nopRecorder struct{}

func (nopRecorder) RecordUnknownTag(string) {}
func (nopRecorder) RecordIssue(string)      {}

// attrSpec declares one shortcode attribute. Decode runs on present,
// non-empty values; Default applies when the result is empty.
type attrSpec struct {
	Name    string
	Default string
	Decode  func(string) string
}

// shortcodeSpec describes how a single shortcode name expands.
type shortcodeSpec struct {
	Name  string
	Attrs []attrSpec

	// Container shortcodes pair with a closing tag that emits Close.
	Container bool
	Close     string

	// Open renders the opening tag from resolved attribute values.
	Open func(v map[string]string) string

	// Orphan renders what an unclosed container keeps of its opening: text
	// a reader would miss, without the wrapping markup. Nil keeps nothing.
	Orphan func(v map[string]string) string

	// Placeholder names the feature a degraded shortcode stands in for.
	Placeholder string

	// Unlisted shortcodes are rendered but still reported as unknown, so
	// the report lists plugins the target site has to replace.
	Unlisted bool
}

// resolve evaluates the attribute schema against the raw attribute text.
func (s *shortcodeSpec) resolve(raw string) map[string]string {
	parsed := parseAttrs(raw)
	values := make(map[string]string, len(s.Attrs))
	for _, a := range s.Attrs {
		v := parsed[a.Name]
		if v != "" && a.Decode != nil {
			v = a.Decode(v)
		}
		if v == "" {
			v = a.Default
		}
		values[a.Name] = v
	}
	return values
}

// parseAttrs extracts name/value pairs. The first occurrence of a name wins.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range shortcodeAttr.FindAllStringSubmatch(raw, -1) {
		name := strings.ToLower(m[1])
		if _, seen := attrs[name]; seen {
			continue
		}
		v := m[2]
		if v == "" {
			v = m[3]
		}
		attrs[name] = v
	}
	return attrs
}

func static(markup string) func(map[string]string) string {
	return func(map[string]string) string { return markup }
}

func container(name, open, close string) shortcodeSpec {
	return shortcodeSpec{Name: name, Container: true, Open: static(open), Close: close}
}

func removed(name string) shortcodeSpec {
	return shortcodeSpec{Name: name, Open: static("")}
}

func placeholder(name, feature string) shortcodeSpec {
	return shortcodeSpec{
		Name:        name,
		Open:        static("<!-- " + feature + " needs implementation -->"),
		Placeholder: feature,
	}
}

func unlisted(spec shortcodeSpec) shortcodeSpec {
	spec.Unlisted = true
	return spec
}

var (
	columnAttrs = []attrSpec{{Name: "width"}, {Name: "offset"}}
	titleAttr   = attrSpec{Name: "title", Decode: html.UnescapeString}
)

// shortcodeTable is the known vocabulary, grouped in the order the rules
// were written for the WPBakery page builder and the theme on top of it.
// Names match exactly, so vc_row never claims vc_row_inner.
var shortcodeTable = []shortcodeSpec{
	// Rows and columns
	container("vc_row", `<section class="content-section">`, `</section>`),
	container("vc_row_inner", `<div class="row-inner">`, `</div>`),
	{Name: "vc_column", Attrs: columnAttrs, Container: true, Open: columnOpen, Close: `</div>`},
	{Name: "vc_column_inner", Attrs: columnAttrs, Container: true, Open: columnOpen, Close: `</div>`},
	container("vc_column_text", "", ""),

	// Headings
	{
		Name:  "vc_custom_heading",
		Attrs: []attrSpec{{Name: "text", Decode: html.UnescapeString}},
		Open: func(v map[string]string) string {
			return `<h2 class="section-heading">` + v["text"] + `</h2>`
		},
	},

	// Media
	{Name: "vc_single_image", Open: static(`<figure class="wp-image"><img src="/images/placeholder.jpg" alt="Image" /></figure>`)},
	{Name: "vc_gallery", Open: static(`<div class="gallery"><!-- Gallery images --></div>`)},
	{Name: "vc_video", Attrs: []attrSpec{{Name: "link"}}, Open: videoOpen},

	// Spacing
	{Name: "vc_separator", Open: static(`<hr class="section-divider" />`)},
	{Name: "vc_empty_space", Open: static(`<div class="spacer"></div>`)},
	{Name: "stm_spacing", Open: static(`<div class="spacer"></div>`)},

	// Calls to action and stats
	{
		Name: "vc_btn",
		Attrs: []attrSpec{
			{Name: "title", Default: "Button", Decode: html.UnescapeString},
			{Name: "link", Default: "#", Decode: buttonURL},
		},
		Open: func(v map[string]string) string {
			return `<a href="` + v["link"] + `" class="btn btn-primary">` + v["title"] + `</a>`
		},
	},
	{
		Name: "vc_pie",
		Attrs: []attrSpec{
			{Name: "value", Default: "0"},
			{Name: "label_value", Decode: html.UnescapeString},
			titleAttr,
		},
		Open: pieOpen,
	},
	{
		Name:  "stm_icon_box",
		Attrs: []attrSpec{titleAttr},
		Open: func(v map[string]string) string {
			return "<div class=\"icon-box\">\n  <h3>" + v["title"] + "</h3>\n</div>"
		},
	},

	// Theme widgets without a static equivalent
	placeholder("stm_services", "Services component"),
	placeholder("stm_news", "News component"),
	placeholder("stm_testimonials", "Testimonials component"),
	placeholder("stm_testimonials_carousel", "Testimonials carousel"),
	placeholder("stm_partner", "Partner logos component"),
	placeholder("stm_image_carousel", "Image carousel"),
	placeholder("stm_vacancies", "Vacancies/careers listing"),
	placeholder("stm_company_history_item", "Company history item"),
	placeholder("stm_cost_calculator", "Cost calculator"),

	// Tabs and accordions
	container("vc_tta_accordion", `<div class="accordion">`, `</div>`),
	container("vc_tta_tabs", `<div class="tabs">`, `</div>`),
	{
		Name:      "vc_tta_section",
		Attrs:     []attrSpec{{Name: "title", Default: "Section", Decode: html.UnescapeString}},
		Container: true,
		Open: func(v map[string]string) string {
			return `<div class="accordion-item"><h4 class="accordion-title">` + v["title"] + `</h4><div class="accordion-content">`
		},
		Orphan: func(v map[string]string) string {
			return `<h4 class="accordion-title">` + v["title"] + `</h4>`
		},
		Close: `</div></div>`,
	},

	// Commerce and forms
	unlisted(placeholder("woocommerce_cart", "Shopping cart")),
	unlisted(placeholder("woocommerce_my_account", "Account page")),
	{Name: "contact-form-7", Unlisted: true, Open: static(`<div class="contact-form-placeholder"><p>Contact form - please use the contact details provided.</p></div>`)},

	// Known but rendered as nothing
	removed("stm_post_details"),
	removed("vc_wp_search"),
	removed("vc_icon"),
	removed("vc_progress_bar"),
}

// columnOpen renders a column with its width and offset classes.
func columnOpen(v map[string]string) string {
	classes := []string{"column"}
	if w, ok := widthClass(v["width"]); ok {
		classes = append(classes, w)
	}
	if offset := strings.TrimSpace(v["offset"]); offset != "" {
		classes = append(classes, strings.ReplaceAll(offset, "vc_col-", "col-"))
	}
	return `<div class="` + strings.Join(classes, " ") + `">`
}

// widthClass converts a fraction like "1/3" into "w-33".
func widthClass(width string) (string, bool) {
	num, den, ok := strings.Cut(strings.TrimSpace(width), "/")
	if !ok {
		return "", false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(num))
	b, errB := strconv.Atoi(strings.TrimSpace(den))
	if errA != nil || errB != nil || b <= 0 || a < 0 {
		return "", false
	}
	pct := int(math.Round(100 * float64(a) / float64(b)))
	return "w-" + strconv.Itoa(pct), true
}

// buttonURL extracts the url field of a vc_link value such as
// "url:%2Fcontact|title:Contact|target:_blank".
func buttonURL(link string) string {
	for _, field := range strings.Split(html.UnescapeString(link), "|") {
		raw, ok := strings.CutPrefix(strings.TrimSpace(field), "url:")
		if !ok {
			continue
		}
		if decoded, err := url.PathUnescape(raw); err == nil {
			return decoded
		}
		return raw
	}
	return ""
}

func videoOpen(v map[string]string) string {
	link := v["link"]
	for _, host := range videoHosts {
		if strings.Contains(link, host) {
			return `<div class="video-embed"><a href="` + link + `" target="_blank">Watch Video</a></div>`
		}
	}
	return `<div class="video-embed"><!-- Video content --></div>`
}

func pieOpen(v map[string]string) string {
	label := v["label_value"]
	if label == "" {
		label = v["value"]
	}
	return "<div class=\"stat-item\">\n" +
		"  <span class=\"stat-value\">" + label + "</span>\n" +
		"  <span class=\"stat-label\">" + v["title"] + "</span>\n" +
		"</div>"
}

// MacroExpander expands the known shortcode vocabulary and strips every
// other shortcode tag, keeping the text between tags.
type MacroExpander struct {
	specs map[string]*shortcodeSpec
	known map[string]bool
}

// NewMacroExpander builds an expander over the built-in table. Extra names
// are treated as known, so they are stripped without being reported.
func NewMacroExpander(extraKnown ...string) *MacroExpander {
	e := &MacroExpander{
		specs: make(map[string]*shortcodeSpec, len(shortcodeTable)),
		known: make(map[string]bool, len(shortcodeTable)+len(extraKnown)),
	}
	for i := range shortcodeTable {
		spec := &shortcodeTable[i]
		e.specs[spec.Name] = spec
		if !spec.Unlisted {
			e.known[spec.Name] = true
		}
	}
	for _, name := range extraKnown {
		if name = strings.TrimSpace(name); name != "" {
			e.known[name] = true
		}
	}
	return e
}

// IsKnown reports whether name belongs to the expander's vocabulary.
func (e *MacroExpander) IsKnown(name string) bool {
	return e.known[name]
}

// Known returns the vocabulary in sorted order.
func (e *MacroExpander) Known() []string {
	names := make([]string, 0, len(e.known))
	for name := range e.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// openTag is a container shortcode waiting for its closing tag.
type openTag struct {
	spec   *shortcodeSpec
	piece  int
	orphan string
}

// Expand rewrites every shortcode tag in content. Unknown names are sent to
// rec before anything is rewritten.
//
// Containers are paired with a stack. A closing tag without a matching open
// is dropped. Opens still pending when a matching outer close arrives, or
// at the end of input, lose their wrapping markup so the output stays
// balanced; a heading they carry is kept.
func (e *MacroExpander) Expand(content string, rec Recorder) string {
	if content == "" {
		return ""
	}
	if rec == nil {
		rec = nopRecorder{}
	}

	tags := shortcodeTag.FindAllStringSubmatchIndex(content, -1)
	if len(tags) == 0 {
		return content
	}

	// First pass: report unknown names, whatever happens to them later
	for _, m := range tags {
		if m[3] > m[2] {
			continue
		}
		if name := content[m[4]:m[5]]; !e.IsKnown(name) {
			rec.RecordUnknownTag(name)
		}
	}

	pieces := make([]string, 0, 2*len(tags)+1)
	var stack []openTag
	last := 0

	for _, m := range tags {
		pieces = append(pieces, content[last:m[0]])
		last = m[1]

		name := content[m[4]:m[5]]
		spec := e.specs[name]

		if m[3] > m[2] {
			if spec == nil || !spec.Container {
				continue
			}
			i := len(stack) - 1
			for i >= 0 && stack[i].spec != spec {
				i--
			}
			if i < 0 {
				rec.RecordIssue(fmt.Sprintf("unmatched closing shortcode [/%s] dropped", name))
				continue
			}
			for _, orphan := range stack[i+1:] {
				pieces[orphan.piece] = orphan.orphan
				rec.RecordIssue(fmt.Sprintf("unclosed shortcode [%s] dropped", orphan.spec.Name))
			}
			stack = stack[:i]
			pieces = append(pieces, spec.Close)
			continue
		}

		if spec == nil {
			continue
		}

		raw := content[m[6]:m[7]]
		values := spec.resolve(raw)
		pieces = append(pieces, spec.Open(values))
		if spec.Placeholder != "" {
			rec.RecordIssue(fmt.Sprintf("shortcode [%s] replaced by placeholder: %s", name, spec.Placeholder))
		}
		if spec.Container && !strings.HasSuffix(strings.TrimSpace(raw), "/") {
			tag := openTag{spec: spec, piece: len(pieces) - 1}
			if spec.Orphan != nil {
				tag.orphan = spec.Orphan(values)
			}
			stack = append(stack, tag)
		}
	}
	pieces = append(pieces, content[last:])

	for _, orphan := range stack {
		pieces[orphan.piece] = orphan.orphan
		rec.RecordIssue(fmt.Sprintf("unclosed shortcode [%s] dropped", orphan.spec.Name))
	}

	return strings.Join(pieces, "")
}
