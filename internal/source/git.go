package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// GitSpec describes a git-hosted content root.
type GitSpec struct {
	URL    string
	Branch string
	Token  string // optional; used as basic-auth password for HTTPS remotes
}

// GitReader materializes git-hosted content roots into a local workspace and
// serves reads from the checkout. A zone whose content root is a git URL is
// cloned once, on first read; subsequent reads hit the working tree directly.
type GitReader struct {
	workspaceDir string
	fs           *FSReader

	mu     sync.Mutex
	clones map[string]string // repo URL -> checkout path
	specs  map[string]GitSpec
}

// NewGitReader returns a reader that clones into workspaceDir.
func NewGitReader(workspaceDir string, specs ...GitSpec) *GitReader {
	byURL := make(map[string]GitSpec, len(specs))
	for _, s := range specs {
		byURL[s.URL] = s
	}
	return &GitReader{
		workspaceDir: workspaceDir,
		fs:           NewFSReader(),
		clones:       make(map[string]string),
		specs:        byURL,
	}
}

// ReadSource treats contentRoot as a repository URL, ensures a checkout
// exists, and reads contentPath from the working tree.
func (r *GitReader) ReadSource(ctx context.Context, contentRoot, contentPath string) ([]byte, error) {
	checkout, err := r.ensureClone(ctx, contentRoot)
	if err != nil {
		return nil, err
	}
	return r.fs.ReadSource(ctx, checkout, contentPath)
}

func (r *GitReader) ensureClone(ctx context.Context, repoURL string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if path, ok := r.clones[repoURL]; ok {
		return path, nil
	}

	spec := r.specs[repoURL]
	spec.URL = repoURL
	path := filepath.Join(r.workspaceDir, sanitizeRepoDir(repoURL))
	if err := os.RemoveAll(path); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to clear checkout directory").
			WithContext("path", path).Build()
	}

	cloneOptions := &git.CloneOptions{URL: repoURL, Depth: 1}
	if spec.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + spec.Branch)
		cloneOptions.SingleBranch = true
	}
	if spec.Token != "" {
		cloneOptions.Auth = &githttp.BasicAuth{Username: "token", Password: spec.Token}
	}

	slog.Debug("Cloning content repository", logfields.URL(repoURL), slog.String("branch", spec.Branch))
	if _, err := git.PlainCloneContext(ctx, path, false, cloneOptions); err != nil {
		return "", errors.WrapError(err, errors.CategorySource, "failed to clone content repository").
			Retryable().
			WithContext("url", repoURL).Build()
	}

	slog.Info("Content repository cloned", logfields.URL(repoURL), slog.String("path", path))
	r.clones[repoURL] = path
	return path, nil
}

// sanitizeRepoDir derives a stable directory name from a repository URL.
func sanitizeRepoDir(url string) string {
	out := make([]byte, 0, len(url))
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
