package wp2mdx

import (
	"time"

	"github.com/alnah/go-wp2mdx/internal/logging"
)

// Logger is the leveled logger accepted by the library. Arguments after the
// message are key/value pairs.
type Logger = logging.Logger

// DefaultExcludedTypes are custom types that do not produce documents:
// calculator, form, sidebar and page-builder template records.
var DefaultExcludedTypes = []string{
	"cost-calc",
	"cost-calc-templates",
	"cost-calc-categories",
	"wpcf7_contact_form",
	"stm_vc_sidebar",
	"elementor_library",
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	baseURL         string
	mediaPrefix     string
	knownShortcodes []string
	nestPages       bool
	excludedTypes   []string
	now             func() time.Time
	logger          Logger
	manifest        *MediaManifest
}

// WithBaseURL sets the site URL whose absolute links are made relative.
func WithBaseURL(baseURL string) Option {
	return func(c *Converter) {
		c.cfg.baseURL = baseURL
	}
}

// WithMediaPrefix moves /wp-content/uploads/ links under prefix.
func WithMediaPrefix(prefix string) Option {
	return func(c *Converter) {
		c.cfg.mediaPrefix = prefix
	}
}

// WithKnownShortcodes adds names that are stripped without being reported
// as unknown.
func WithKnownShortcodes(names ...string) Option {
	return func(c *Converter) {
		c.cfg.knownShortcodes = append(c.cfg.knownShortcodes, names...)
	}
}

// WithNestPages writes pages under their full hierarchy path instead of
// their slug alone.
func WithNestPages(nest bool) Option {
	return func(c *Converter) {
		c.cfg.nestPages = nest
	}
}

// WithExcludedTypes replaces the list of skipped custom types.
func WithExcludedTypes(types ...string) Option {
	return func(c *Converter) {
		c.cfg.excludedTypes = types
	}
}

// WithNow sets the clock used for records without a date.
func WithNow(now func() time.Time) Option {
	return func(c *Converter) {
		c.cfg.now = now
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithMediaManifest enables the media audit: upload references missing from
// the manifest are reported as issues.
func WithMediaManifest(m *MediaManifest) Option {
	return func(c *Converter) {
		c.cfg.manifest = m
	}
}
