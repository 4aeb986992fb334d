package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-wp2mdx/internal/config"
)

// envPrefix is shared by every recognized variable.
const envPrefix = "WP2MDX_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string // WP2MDX_CONFIG: config file name or path
	InputDir    string // WP2MDX_INPUT_DIR: export directory
	OutputDir   string // WP2MDX_OUTPUT_DIR: output directory
	BaseURL     string // WP2MDX_BASE_URL: site URL made relative in links
	MediaPrefix string // WP2MDX_MEDIA_PREFIX: new location of uploads
	Workers     int    // WP2MDX_WORKERS: parallel workers
	LogLevel    string // WP2MDX_LOG_LEVEL: trace, debug, info, warn, error
	LogFormat   string // WP2MDX_LOG_FORMAT: console, json, pretty
}

// knownEnvVars lists valid WP2MDX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"WP2MDX_CONFIG":       true,
	"WP2MDX_INPUT_DIR":    true,
	"WP2MDX_OUTPUT_DIR":   true,
	"WP2MDX_BASE_URL":     true,
	"WP2MDX_MEDIA_PREFIX": true,
	"WP2MDX_WORKERS":      true,
	"WP2MDX_LOG_LEVEL":    true,
	"WP2MDX_LOG_FORMAT":   true,
}

// loadDotEnv loads path into the process environment. Variables already
// set are never overridden, and a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvConfig reads configuration through getenv.
// Returns a struct with all recognized WP2MDX_* values.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("WP2MDX_CONFIG"),
		InputDir:    getenv("WP2MDX_INPUT_DIR"),
		OutputDir:   getenv("WP2MDX_OUTPUT_DIR"),
		BaseURL:     getenv("WP2MDX_BASE_URL"),
		MediaPrefix: getenv("WP2MDX_MEDIA_PREFIX"),
		LogLevel:    getenv("WP2MDX_LOG_LEVEL"),
		LogFormat:   getenv("WP2MDX_LOG_FORMAT"),
	}

	// Invalid worker counts are ignored; the flag or config value applies.
	if workers := getenv("WP2MDX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for every unrecognized WP2MDX_*
// variable in environ, sorted by name.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	var unknown []string
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment variable values to cfg.
// A set variable replaces the config file value, giving:
// CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.Dir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.BaseURL != "" {
		cfg.Site.BaseURL = env.BaseURL
	}
	if env.MediaPrefix != "" {
		cfg.Site.MediaPrefix = env.MediaPrefix
	}
	if env.Workers > 0 {
		cfg.Convert.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
