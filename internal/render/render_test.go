package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

func testZone(t *testing.T, permalinks ...string) *zone.Zone {
	t.Helper()
	menu := `{"name": "root", "categories": [{"name": "root", "docs": [`
	for i, p := range permalinks {
		if i > 0 {
			menu += ","
		}
		menu += `{"title": "Title of ` + p + `", "permalink": "` + p + `", "contentPath": "` + p + `.md"}`
	}
	menu += `]}]}`
	tree, err := zone.ParseMenu([]byte(menu))
	require.NoError(t, err)
	return &zone.Zone{Name: "reference", BaseURL: "/reference", Nav: tree}
}

func renderSource(t *testing.T, z *zone.Zone, source string) (string, *Context) {
	t.Helper()
	doc, err := markdown.New().Parse(source)
	require.NoError(t, err)
	ctx := NewContext(z, nil)
	html, err := New(nil).Render(doc, ctx)
	require.NoError(t, err)
	return html, ctx
}

func TestRender_HeadingAndEmphasis(t *testing.T) {
	html, _ := renderSource(t, testZone(t), "# Title\n\nSome *text*.\n")
	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<p>Some <em>text</em>.</p>")
}

func TestRender_Idempotent(t *testing.T) {
	z := testZone(t)
	first, _ := renderSource(t, z, "# A\n\n- x\n- y\n")
	second, _ := renderSource(t, z, "# A\n\n- x\n- y\n")
	require.Equal(t, first, second)
}

func TestRender_CollectsTOC(t *testing.T) {
	_, ctx := renderSource(t, testZone(t), "# One\n\n## Two\n\n## Two\n")
	toc := ctx.TOC()
	require.Len(t, toc, 3)
	assert.Equal(t, TOCEntry{Level: 1, Text: "One", Anchor: "one"}, toc[0])
	assert.Equal(t, "two", toc[1].Anchor)
	assert.Equal(t, "two-1", toc[2].Anchor) // duplicate headings stay unique
}

func TestRender_RelativeLinkRewrittenToZonePrefix(t *testing.T) {
	z := testZone(t, "db/raw-query")
	html, ctx := renderSource(t, z, "See [raw queries](db/raw-query).\n")
	assert.Contains(t, html, `<a href="/reference/db/raw-query">raw queries</a>`)
	assert.Empty(t, ctx.Warnings())
}

func TestRender_BrokenLinkDegradesWithWarning(t *testing.T) {
	z := testZone(t, "db/raw-query")
	html, ctx := renderSource(t, z, "See [gone](db/gone).\n")

	assert.Contains(t, html, "<p>See gone.</p>")
	assert.NotContains(t, html, "<a")
	require.Len(t, ctx.Warnings(), 1)
	assert.Contains(t, ctx.Warnings()[0].Message, "db/gone")
	assert.Equal(t, 1, ctx.Warnings()[0].Pos.Line)
}

func TestRender_ExternalAndAnchorLinksPassThrough(t *testing.T) {
	z := testZone(t)
	html, ctx := renderSource(t, z, "[ext](https://example.com) [anchor](#frag) [abs](/other/page)\n")
	assert.Contains(t, html, `href="https://example.com"`)
	assert.Contains(t, html, `href="#frag"`)
	assert.Contains(t, html, `href="/other/page"`)
	assert.Empty(t, ctx.Warnings())
}

func TestRender_LinkWithFragmentResolves(t *testing.T) {
	z := testZone(t, "db/raw-query")
	html, _ := renderSource(t, z, "[jump](db/raw-query#usage)\n")
	assert.Contains(t, html, `href="/reference/db/raw-query#usage"`)
}

func TestRender_KnownDirective(t *testing.T) {
	html, _ := renderSource(t, testZone(t), ":::warning Careful\nDragons ahead.\n:::\n")
	assert.Contains(t, html, `class="admonition admonition-warning"`)
	assert.Contains(t, html, `<p class="admonition-title">Careful</p>`)
	assert.Contains(t, html, "Dragons ahead.")
}

func TestRender_UnknownDirectiveLiteral(t *testing.T) {
	html, ctx := renderSource(t, testZone(t), ":::mystery\nhello\n:::\n")
	assert.Contains(t, html, ":::mystery")
	assert.NotContains(t, html, "admonition")
	assert.Empty(t, ctx.Warnings())
}

func TestRender_RefShortcode(t *testing.T) {
	z := testZone(t, "db/raw-query")
	html, _ := renderSource(t, z, `Read {{< ref "db/raw-query" >}} first.`+"\n")
	assert.Contains(t, html, `<a href="/reference/db/raw-query">Title of db/raw-query</a>`)
}

func TestRender_RefShortcodeBrokenTarget(t *testing.T) {
	z := testZone(t)
	html, ctx := renderSource(t, z, `{{< ref "nope" >}}`+"\n")
	assert.Contains(t, html, "nope")
	require.Len(t, ctx.Warnings(), 1)
}

func TestRender_UnknownShortcodeLiteral(t *testing.T) {
	html, _ := renderSource(t, testZone(t), `{{< widget 42 >}}`+"\n")
	assert.Contains(t, html, "{{&lt; widget 42 &gt;}}")
}

func TestRender_Table(t *testing.T) {
	html, _ := renderSource(t, testZone(t), "| K | V |\n|---|---|\n| a | 1 |\n")
	assert.Contains(t, html, "<thead><tr><th>K</th><th>V</th></tr></thead>")
	assert.Contains(t, html, "<tbody><tr><td>a</td><td>1</td></tr></tbody>")
}

func TestRender_TightList(t *testing.T) {
	html, _ := renderSource(t, testZone(t), "- one\n- two\n")
	assert.Contains(t, html, "<ul><li>one</li><li>two</li></ul>")
}

func TestRender_OrderedListStart(t *testing.T) {
	html, _ := renderSource(t, testZone(t), "5. five\n6. six\n")
	assert.Contains(t, html, `<ol start="5">`)
}

func TestRender_EscapesText(t *testing.T) {
	html, _ := renderSource(t, testZone(t), "a <script> & b\n")
	assert.Contains(t, html, "a &lt;script&gt; &amp; b")
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Simple Heading":     "simple-heading",
		"Déjà vu":            "deja-vu",
		"  spaces   galore ": "spaces-galore",
		"semver 2.0!":        "semver-2-0",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
