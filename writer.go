package wp2mdx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/alnah/go-wp2mdx/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// DocumentWriter persists converted documents. Implementations must be safe
// for concurrent use.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *Document) error
}

// Compile-time interface implementation check.
var _ DocumentWriter = (*DirWriter)(nil)

// DirWriter writes documents and artifacts under an output root.
type DirWriter struct {
	Root string
}

// NewDirWriter creates a DirWriter for root.
func NewDirWriter(root string) *DirWriter {
	return &DirWriter{Root: root}
}

// WriteDocument writes doc at its path under the root, creating parent
// directories. Files are replaced atomically.
func (w *DirWriter) WriteDocument(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dest, err := fileutil.ResolveUnder(w.Root, doc.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return w.write(dest, doc.Bytes())
}

// WriteJSON writes v as indented JSON to name under the root.
func (w *DirWriter) WriteJSON(name string, v any) error {
	dest, err := fileutil.ResolveUnder(w.Root, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrWriteDocument, name, err)
	}
	return w.write(dest, append(data, '\n'))
}

func (w *DirWriter) write(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating directory: %v", ErrWriteDocument, err)
	}
	// #nosec G306 -- documents are meant to be readable
	if err := fileutil.WriteFileAtomic(dest, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteDocument, dest, err)
	}
	return nil
}
