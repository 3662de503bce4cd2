package manifest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndFingerprint(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, found, err := store.Fingerprint(ctx, "docs", "intro")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Record(ctx, "docs", "intro", "abc123", "/out/docs/intro.html"))
	fp, found, err := store.Fingerprint(ctx, "docs", "intro")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc123", fp)

	// Upsert replaces the fingerprint.
	require.NoError(t, store.Record(ctx, "docs", "intro", "def456", "/out/docs/intro.html"))
	fp, _, err = store.Fingerprint(ctx, "docs", "intro")
	require.NoError(t, err)
	require.Equal(t, "def456", fp)
}

func TestPruneRemovesStaleEntries(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "docs", "keep", "a", "/out/keep.html"))
	require.NoError(t, store.Record(ctx, "docs", "drop", "b", "/out/drop.html"))
	require.NoError(t, store.Record(ctx, "other", "drop", "c", "/out/other.html"))

	require.NoError(t, store.Prune(ctx, "docs", map[string]bool{"keep": true}))

	_, found, err := store.Fingerprint(ctx, "docs", "keep")
	require.NoError(t, err)
	require.True(t, found)
	_, found, err = store.Fingerprint(ctx, "docs", "drop")
	require.NoError(t, err)
	require.False(t, found)
	// Other zones are untouched.
	_, found, err = store.Fingerprint(ctx, "other", "drop")
	require.NoError(t, err)
	require.True(t, found)
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, "docs", "intro", "abc", "/out/intro.html"))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	fp, found, err := store.Fingerprint(ctx, "docs", "intro")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc", fp)
}
