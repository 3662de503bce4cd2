// Package source provides the file-reading capability the rendering core
// consumes. Content may live on the local filesystem or in a cloned git
// repository; the pipeline only sees the Reader interface.
package source

import "context"

// Reader reads document source text from a zone's content store.
// contentPath is relative to the zone's content root.
type Reader interface {
	ReadSource(ctx context.Context, contentRoot, contentPath string) ([]byte, error)
}
