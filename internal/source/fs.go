package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// FSReader reads content from the local filesystem. The zero value is ready
// to use.
type FSReader struct{}

// NewFSReader returns a filesystem-backed Reader.
func NewFSReader() *FSReader { return &FSReader{} }

// ReadSource reads contentPath relative to contentRoot. Paths escaping the
// root (".." traversal) and missing files are reported as classified errors:
// not_found for absent files so the orchestrator can map them to the render
// contract's not-found branch.
func (r *FSReader) ReadSource(_ context.Context, contentRoot, contentPath string) ([]byte, error) {
	clean := filepath.Clean(contentPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, errors.NewError(errors.CategorySource, "content path escapes content root").
			WithContext("content_path", contentPath).Build()
	}

	data, err := os.ReadFile(filepath.Join(contentRoot, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryNotFound, "content file does not exist").
				WithContext("content_path", contentPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read content file").
			WithContext("content_path", contentPath).Build()
	}
	return data, nil
}
