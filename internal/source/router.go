package source

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Router dispatches reads by content root: roots that look like remote URLs
// go to the git reader, everything else to the local filesystem.
type Router struct {
	fs  *FSReader
	git *GitReader
}

// NewRouter builds a routing reader. git may be nil when no zone is
// git-backed; remote roots then fail with a source error.
func NewRouter(git *GitReader) *Router {
	return &Router{fs: NewFSReader(), git: git}
}

func (r *Router) ReadSource(ctx context.Context, contentRoot, contentPath string) ([]byte, error) {
	if isRemoteRoot(contentRoot) {
		if r.git == nil {
			return nil, errors.NewError(errors.CategorySource, "no git reader configured for remote content root").
				WithContext("content_root", contentRoot).Build()
		}
		return r.git.ReadSource(ctx, contentRoot, contentPath)
	}
	return r.fs.ReadSource(ctx, contentRoot, contentPath)
}

func isRemoteRoot(root string) bool {
	return strings.Contains(root, "://") || strings.HasPrefix(root, "git@")
}
