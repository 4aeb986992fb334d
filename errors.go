package wp2mdx

import "errors"

// Sentinel errors for library operations.
var (
	// ErrTransform wraps a failure inside a transformation stage. It only
	// affects the item being converted.
	ErrTransform = errors.New("transformation failed")

	// ErrWriteDocument indicates an output file could not be written.
	ErrWriteDocument = errors.New("failed to write document")

	// ErrInvalidPath indicates an output path escaping the output root.
	ErrInvalidPath = errors.New("invalid output path")

	// ErrInvalidFrontmatter indicates a written header that does not parse back.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)
