// Package render assembles HTML from a parsed document tree using one
// renderer per node kind, dispatched over the closed kind enumeration.
package render

import (
	"strconv"

	"git.home.luguber.info/inful/docsite/internal/markdown/ast"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

// Warning records a non-fatal degradation encountered while rendering, such
// as a link to a permalink that does not exist. Warnings never fail a page.
type Warning struct {
	Message string
	Pos     ast.Position
}

// TOCEntry is a table-of-contents entry collected while rendering headings.
type TOCEntry struct {
	Level  int
	Text   string
	Anchor string
}

// Context carries per-render state: the zone and doc being rendered, plus
// side tables accumulated during the tree walk. A Context is used by a single
// render and is not shared between goroutines.
type Context struct {
	Zone *zone.Zone
	Doc  *zone.Doc

	toc      []TOCEntry
	warnings []Warning
	anchors  map[string]int
}

// NewContext builds a render context for one document.
func NewContext(z *zone.Zone, d *zone.Doc) *Context {
	return &Context{Zone: z, Doc: d, anchors: make(map[string]int)}
}

// TOC returns the heading entries collected so far, in document order.
func (c *Context) TOC() []TOCEntry { return c.toc }

// Warnings returns all degradations recorded during the render.
func (c *Context) Warnings() []Warning { return c.warnings }

func (c *Context) addWarning(message string, pos ast.Position) {
	c.warnings = append(c.warnings, Warning{Message: message, Pos: pos})
}

// anchorFor returns a unique anchor ID for a heading, suffixing duplicates.
func (c *Context) anchorFor(text string) string {
	slug := Slugify(text)
	n := c.anchors[slug]
	c.anchors[slug] = n + 1
	if n == 0 {
		return slug
	}
	return slug + "-" + strconv.Itoa(n)
}

// resolvePermalink rewrites a doc-relative permalink into an absolute
// zone-prefixed URL, or reports failure for unknown permalinks.
func (c *Context) resolvePermalink(permalink string) (string, bool) {
	if c.Zone == nil {
		return "", false
	}
	if _, ok := c.Zone.Nav.Lookup(permalink); !ok {
		return "", false
	}
	if c.Zone.BaseURL == "/" {
		return "/" + permalink, true
	}
	return c.Zone.BaseURL + "/" + permalink, true
}

