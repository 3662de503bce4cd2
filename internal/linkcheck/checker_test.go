package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

const checkMenu = `{
  "name": "root",
  "categories": [
    {
      "name": "root",
      "docs": [
        {"title": "Intro", "permalink": "intro", "contentPath": "intro.md"},
        {"title": "Usage", "permalink": "usage", "contentPath": "usage.md"}
      ]
    }
  ]
}`

func newCheckSite(t *testing.T) (*site.Site, string) {
	t.Helper()
	root := t.TempDir()
	nav, err := zone.ParseMenu([]byte(checkMenu))
	require.NoError(t, err)
	registry, err := zone.NewRegistry(&zone.Zone{
		Name: "docs", BaseURL: "/docs", ContentRoot: root, Nav: nav,
	})
	require.NoError(t, err)
	return site.New(registry), root
}

func write(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
}

func TestExtractLinks(t *testing.T) {
	links := ExtractLinks([]byte("See [usage](usage) and ![img](/static/a.png).\n\n[ref]: https://example.com\n"))
	dests := make([]string, 0, len(links))
	for _, l := range links {
		dests = append(dests, l.Destination)
	}
	require.Contains(t, dests, "usage")
	require.Contains(t, dests, "/static/a.png")
	require.Contains(t, dests, "https://example.com")
}

func TestCollectAnchors(t *testing.T) {
	anchors, err := CollectAnchors(`<h1 id="intro">Intro</h1><h2 id="setup">Setup</h2><p>x</p>`)
	require.NoError(t, err)
	require.True(t, anchors["intro"])
	require.True(t, anchors["setup"])
	require.False(t, anchors["missing"])
}

func TestRunFlagsUnregisteredPermalink(t *testing.T) {
	s, root := newCheckSite(t)
	write(t, root, "intro.md", "See [usage](usage) and [gone](nope).\n")
	write(t, root, "usage.md", "# Usage\n")

	report, err := New(s, source.NewFSReader()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	require.Equal(t, "nope", report.Issues[0].Destination)
	require.Equal(t, "intro", report.Issues[0].Permalink)
}

func TestRunVerifiesFragments(t *testing.T) {
	s, root := newCheckSite(t)
	write(t, root, "intro.md", "Jump to [setup](usage#setup) or [bad](usage#absent).\n")
	write(t, root, "usage.md", "# Usage\n\n## Setup\n")

	report, err := New(s, source.NewFSReader()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	require.Equal(t, "usage#absent", report.Issues[0].Destination)
}

func TestRunChecksAbsolutePathsAgainstRegistry(t *testing.T) {
	s, root := newCheckSite(t)
	write(t, root, "intro.md", "Good: [a](/docs/usage). Bad: [b](/docs/missing).\n")
	write(t, root, "usage.md", "# Usage\n")

	report, err := New(s, source.NewFSReader()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	require.Equal(t, "/docs/missing", report.Issues[0].Destination)
}

func TestRunExternalUsesVerdictCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, root := newCheckSite(t)
	write(t, root, "intro.md", "External: ["+srv.URL+"]("+srv.URL+")\n")
	write(t, root, "usage.md", "Same link again: [x]("+srv.URL+")\n")

	cache := NewMemoryVerdicts()
	report, err := New(s, source.NewFSReader(), WithExternal(cache)).Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Issues)
	require.Equal(t, 1, hits)

	v, found, err := cache.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, v.OK)
}

func TestRunExternalFlagsBrokenURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s, root := newCheckSite(t)
	write(t, root, "intro.md", "Broken: [x]("+srv.URL+"/gone)\n")
	write(t, root, "usage.md", "# Usage\n")

	report, err := New(s, source.NewFSReader(), WithExternal(nil)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
}

func TestRunSkipsSpecialSchemes(t *testing.T) {
	s, root := newCheckSite(t)
	write(t, root, "intro.md", "[mail](mailto:a@b.c) [tel](tel:123)\n")
	write(t, root, "usage.md", "# Usage\n")

	report, err := New(s, source.NewFSReader()).Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Issues)
}
