// Package config loads the YAML configuration of the command line tool.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-wp2mdx/internal/fileutil"
	"github.com/alnah/go-wp2mdx/internal/logging"
	"github.com/alnah/go-wp2mdx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxURLLength       = 2048 // Browser limit
	MaxTypeNameLength  = 20   // WordPress post_type column width
	MaxShortcodeLength = 64
	MaxWorkers         = 64
)

// Default directories, relative to the working directory.
const (
	DefaultInputDir  = "content/_raw"
	DefaultOutputDir = "content"
)

// Config holds all configuration of a migration run.
type Config struct {
	Input   InputConfig   `yaml:"input" json:"input"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Site    SiteConfig    `yaml:"site" json:"site"`
	Convert ConvertConfig `yaml:"convert" json:"convert"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// InputConfig locates the export.
type InputConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// OutputConfig locates the converted documents and artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// SiteConfig describes the site being migrated.
type SiteConfig struct {
	BaseURL     string `yaml:"baseUrl" json:"baseUrl"`         // Empty = baseUrl of site.json
	MediaPrefix string `yaml:"mediaPrefix" json:"mediaPrefix"` // Empty = upload links unchanged
}

// ConvertConfig tunes the conversion.
type ConvertConfig struct {
	Workers         int      `yaml:"workers" json:"workers"` // 0 = auto
	NestPages       bool     `yaml:"nestPages" json:"nestPages"`
	Validate        bool     `yaml:"validate" json:"validate"`
	ExcludedTypes   []string `yaml:"excludedTypes" json:"excludedTypes"`     // nil = built-in list
	KnownShortcodes []string `yaml:"knownShortcodes" json:"knownShortcodes"` // stripped silently
}

// LogConfig selects diagnostics output.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" json:"format"` // console, json, pretty
}

var (
	typeNamePattern  = regexp.MustCompile(`^[a-z0-9_-]+$`)
	shortcodePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for callers who build a
// Config from flags and environment.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.dir", c.Input.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.baseUrl", c.Site.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.mediaPrefix", c.Site.MediaPrefix, MaxPathLength); err != nil {
		return err
	}

	sections := []struct {
		name string
		err  error
	}{
		{"site", validation.ValidateStruct(&c.Site,
			validation.Field(&c.Site.BaseURL, validation.By(absoluteURL)),
			validation.Field(&c.Site.MediaPrefix, validation.By(rootedPath)),
		)},
		{"convert", validation.ValidateStruct(&c.Convert,
			validation.Field(&c.Convert.Workers, validation.Min(0), validation.Max(MaxWorkers)),
			validation.Field(&c.Convert.ExcludedTypes, validation.Each(
				validation.Required,
				validation.Length(1, MaxTypeNameLength),
				validation.Match(typeNamePattern),
			)),
			validation.Field(&c.Convert.KnownShortcodes, validation.Each(
				validation.Required,
				validation.Length(1, MaxShortcodeLength),
				validation.Match(shortcodePattern),
			)),
		)},
		{"log", validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In(anySlice(logging.Levels)...)),
			validation.Field(&c.Log.Format, validation.In(anySlice(logging.Formats)...)),
		)},
	}
	for _, s := range sections {
		if s.err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.name, s.err)
		}
	}
	return nil
}

// absoluteURL accepts an http or https URL with a host.
func absoluteURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return validation.NewError("validation_absolute_url", "must be an absolute http or https URL")
	}
	return nil
}

// rootedPath accepts a site path starting with a slash.
func rootedPath(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") || strings.ContainsAny(s, "?# ") {
		return validation.NewError("validation_rooted_path", "must be a path starting with /")
	}
	return nil
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{Dir: DefaultInputDir},
		Output: OutputConfig{Dir: DefaultOutputDir},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig value. Returns error if
// the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Dump encodes c as YAML in the config file format.
func (c *Config) Dump() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-wp2mdx/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-wp2mdx", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
