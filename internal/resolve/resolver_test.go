package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/zone"
)

func makeRegistry(t *testing.T, zones ...*zone.Zone) *zone.Registry {
	t.Helper()
	reg, err := zone.NewRegistry(zones...)
	require.NoError(t, err)
	return reg
}

func makeTree(t *testing.T, permalinks ...string) *zone.NavigationTree {
	t.Helper()
	menu := `{"name": "root", "categories": [{"name": "root", "docs": [`
	for i, p := range permalinks {
		if i > 0 {
			menu += ","
		}
		menu += `{"title": "t", "permalink": "` + p + `", "contentPath": "` + p + `.md"}`
	}
	menu += `]}]}`
	tree, err := zone.ParseMenu([]byte(menu))
	require.NoError(t, err)
	return tree
}

func TestResolve_EveryNavEntryRoundTrips(t *testing.T) {
	ref := &zone.Zone{Name: "reference", BaseURL: "/reference", Nav: makeTree(t, "db/raw-query", "db/migrations", "intro")}
	guides := &zone.Zone{Name: "guides", BaseURL: "/guides", Nav: makeTree(t, "setup", "deploy/docker")}
	r := New(makeRegistry(t, ref, guides))

	for _, z := range []*zone.Zone{ref, guides} {
		for _, doc := range z.Nav.Docs() {
			m, ok := r.Resolve(z.BaseURL + "/" + doc.Permalink)
			require.True(t, ok, doc.Permalink)
			require.Same(t, z, m.Zone)
			require.Equal(t, doc.Permalink, m.Doc.Permalink)
		}
	}
}

func TestResolve_StripsQueryAndTrailingSlash(t *testing.T) {
	z := &zone.Zone{Name: "docs", BaseURL: "/docs", Nav: makeTree(t, "intro")}
	r := New(makeRegistry(t, z))

	for _, url := range []string{
		"/docs/intro",
		"/docs/intro/",
		"/docs/intro?version=2",
		"/docs/intro/?utm=x#anchor",
	} {
		m, ok := r.Resolve(url)
		require.True(t, ok, url)
		require.Equal(t, "intro", m.Doc.Permalink)
	}
}

func TestResolve_NotFoundIsValueNotError(t *testing.T) {
	z := &zone.Zone{Name: "docs", BaseURL: "/docs", Nav: makeTree(t, "intro")}
	r := New(makeRegistry(t, z))

	_, ok := r.Resolve("/docs/missing")
	require.False(t, ok)
	_, ok = r.Resolve("/elsewhere/intro")
	require.False(t, ok)
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	// Overlapping prefixes: /docs and /docs/api. The more specific zone must
	// win regardless of registration order.
	broad := &zone.Zone{Name: "broad", BaseURL: "/docs", Nav: makeTree(t, "api/errors")}
	narrow := &zone.Zone{Name: "narrow", BaseURL: "/docs/api", Nav: makeTree(t, "errors")}
	r := New(makeRegistry(t, broad, narrow))

	m, ok := r.Resolve("/docs/api/errors")
	require.True(t, ok)
	require.Equal(t, "narrow", m.Zone.Name)
	require.Equal(t, "errors", m.Doc.Permalink)
}

func TestResolve_SegmentBoundaryRequired(t *testing.T) {
	z := &zone.Zone{Name: "ref", BaseURL: "/ref", Nav: makeTree(t, "intro")}
	r := New(makeRegistry(t, z))

	_, ok := r.Resolve("/referenced/intro")
	require.False(t, ok)
}

func TestResolve_RootZone(t *testing.T) {
	z := &zone.Zone{Name: "main", BaseURL: "/", Nav: makeTree(t, "about")}
	r := New(makeRegistry(t, z))

	m, ok := r.Resolve("/about")
	require.True(t, ok)
	require.Equal(t, "about", m.Doc.Permalink)
}
