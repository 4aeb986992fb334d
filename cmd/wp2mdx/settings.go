package main

import (
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-wp2mdx/internal/config"
	"github.com/alnah/go-wp2mdx/internal/hints"
	"github.com/alnah/go-wp2mdx/internal/logging"
)

// loadSettings builds the effective configuration before command flags
// are merged: defaults, then the config file, then WP2MDX_* variables.
// The --config flag wins over WP2MDX_CONFIG.
func loadSettings(common *commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(triedPaths(err)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeCommonFlags(common, cfg)
	return cfg, nil
}

// mergeCommonFlags merges the shared flags into cfg. CLI values override
// config values.
func mergeCommonFlags(flags *commonFlags, cfg *config.Config) {
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
}

// triedPaths extracts the searched locations from a config lookup error.
func triedPaths(err error) []string {
	msg := err.Error()
	_, tried, ok := strings.Cut(msg, "tried ")
	if !ok {
		return nil
	}
	return strings.Split(tried, ", ")
}

// newLogger creates the diagnostics logger of a run. Quiet mode discards
// everything; verbose mode lowers the level to debug.
func newLogger(cfg *config.Config, flags *commonFlags) (logging.Logger, error) {
	if flags.quiet {
		return logging.NoOp(), nil
	}

	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if flags.verbose {
		logCfg.Level = "debug"
		logCfg.AddSource = true
	}

	provider, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return provider.Named("wp2mdx"), nil
}

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadSettings(flags, env)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := cfg.Dump()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}
