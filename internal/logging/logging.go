// Package logging wraps go-logger behind a small leveled Logger interface.
package logging

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract used across the module. Arguments
// after the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Supported level and format names.
var (
	Levels  = []string{"trace", "debug", "info", "warn", "error"}
	Formats = []string{"json", "console", "pretty"}
)

// Config selects the level and output format of the root logger.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Provider hands out named child loggers of one root logger.
type Provider struct {
	root *glog.BaseLogger
}

// New creates a Provider. An empty format means console output.
func New(cfg Config) (*Provider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	} else if strings.TrimSpace(cfg.Level) != "" {
		return nil, fmt.Errorf("logging: unsupported level %q", cfg.Level)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &Provider{root: glog.NewLogger(options...)}, nil
}

// Named returns the child logger called name, or the root logger for an
// empty name. A nil Provider returns NoOp.
func (p *Provider) Named(name string) Logger {
	if p == nil {
		return NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return p.root
	}
	return p.root.GetLogger(name)
}

// WithContext returns the logger bound to ctx when it supports it.
func WithContext(l Logger, ctx context.Context) Logger {
	if ctxLogger, ok := l.(glog.Logger); ok && ctx != nil {
		return ctxLogger.WithContext(ctx)
	}
	return l
}

// NoOp returns a Logger that discards everything.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}
