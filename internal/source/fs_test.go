package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func TestFSReader_ReadsRelativePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "database"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "database", "raw-query.md"), []byte("# Title\n"), 0o600))

	data, err := NewFSReader().ReadSource(context.Background(), root, "database/raw-query.md")
	require.NoError(t, err)
	require.Equal(t, "# Title\n", string(data))
}

func TestFSReader_MissingFileIsNotFound(t *testing.T) {
	_, err := NewFSReader().ReadSource(context.Background(), t.TempDir(), "absent.md")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestFSReader_RejectsTraversal(t *testing.T) {
	for _, path := range []string{"../outside.md", "a/../../outside.md", "/etc/passwd"} {
		_, err := NewFSReader().ReadSource(context.Background(), t.TempDir(), path)
		require.Error(t, err, path)
		require.True(t, errors.HasCategory(err, errors.CategorySource), path)
	}
}

func TestSanitizeRepoDir(t *testing.T) {
	require.Equal(t, "https___git.example.com_docs_content.git",
		sanitizeRepoDir("https://git.example.com/docs/content.git"))
}
