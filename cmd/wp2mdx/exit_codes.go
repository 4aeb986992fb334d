package main

import (
	"errors"
	"os"

	wp2mdx "github.com/alnah/go-wp2mdx"
	"github.com/alnah/go-wp2mdx/internal/config"
	"github.com/alnah/go-wp2mdx/internal/export"
)

// Exit codes for wp2mdx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every document converted
	ExitGeneral = 1 // General/unexpected error, including interruption
	ExitUsage   = 2 // Invalid flags, config, or export content
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitPartial = 4 // Run completed but some documents failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Partial batch (exit 4)
	if errors.Is(err, ErrPartialBatch) {
		return ExitPartial
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, export.ErrMissingInput) ||
		errors.Is(err, export.ErrReadInput) ||
		errors.Is(err, wp2mdx.ErrWriteDocument) ||
		errors.Is(err, wp2mdx.ErrInvalidPath) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, export.ErrSchemaInput) ||
		errors.Is(err, export.ErrDecodeInput) {
		return ExitUsage
	}

	return ExitGeneral
}
