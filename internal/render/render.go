package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/highlight"
	"git.home.luguber.info/inful/docsite/internal/markdown/ast"
)

// renderFunc produces the HTML fragment for one node, recursing into children
// as needed.
type renderFunc func(r *Renderer, n ast.Node, ctx *Context, sb *strings.Builder)

// Renderer holds the per-kind dispatch table. The table is indexed by
// ast.NodeKind and checked for completeness at construction, so adding a node
// kind without a renderer fails immediately at startup rather than at render
// time. Renderer is immutable and safe for concurrent use.
type Renderer struct {
	highlighter *highlight.Highlighter
	table       [ast.NumKinds]renderFunc
}

// New builds a renderer over the given highlighter (default registry if nil).
func New(h *highlight.Highlighter) *Renderer {
	if h == nil {
		h = highlight.New(nil)
	}
	r := &Renderer{highlighter: h}
	r.table = [ast.NumKinds]renderFunc{
		ast.KindDocument:      (*Renderer).renderChildren,
		ast.KindHeading:       (*Renderer).renderHeading,
		ast.KindParagraph:     wrap("p"),
		ast.KindFencedCode:    (*Renderer).renderFencedCode,
		ast.KindList:          (*Renderer).renderList,
		ast.KindListItem:      (*Renderer).renderListItem,
		ast.KindBlockquote:    wrap("blockquote"),
		ast.KindTable:         (*Renderer).renderTable,
		ast.KindTableRow:      (*Renderer).renderTableRow,
		ast.KindTableCell:     wrap("td"),
		ast.KindThematicBreak: void("<hr>"),
		ast.KindDirective:     (*Renderer).renderDirective,
		ast.KindText:          (*Renderer).renderText,
		ast.KindEmphasis:      wrap("em"),
		ast.KindStrong:        wrap("strong"),
		ast.KindCodeSpan:      (*Renderer).renderCodeSpan,
		ast.KindLink:          (*Renderer).renderLink,
		ast.KindImage:         (*Renderer).renderImage,
		ast.KindShortcode:     (*Renderer).renderShortcode,
		ast.KindHardBreak:     void("<br>"),
	}
	for kind, fn := range r.table {
		if fn == nil {
			panic(fmt.Sprintf("render: no renderer registered for node kind %s", ast.NodeKind(kind)))
		}
	}
	return r
}

// Render walks the document depth-first and returns the assembled HTML.
// Renderer panics (from malformed trees) are converted into classified
// errors so a bad page cannot take down the process.
func (r *Renderer) Render(doc *ast.Document, ctx *Context) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.RenderError("renderer panic").
				WithContext("panic", fmt.Sprint(rec)).Build()
		}
	}()
	var sb strings.Builder
	r.renderNode(doc, ctx, &sb)
	return sb.String(), nil
}

func (r *Renderer) renderNode(n ast.Node, ctx *Context, sb *strings.Builder) {
	r.table[n.Kind()](r, n, ctx, sb)
}

func (r *Renderer) renderChildren(n ast.Node, ctx *Context, sb *strings.Builder) {
	for _, c := range n.Children() {
		r.renderNode(c, ctx, sb)
	}
}

// wrap renders children inside a fixed element.
func wrap(tag string) renderFunc {
	return func(r *Renderer, n ast.Node, ctx *Context, sb *strings.Builder) {
		sb.WriteString("<" + tag + ">")
		r.renderChildren(n, ctx, sb)
		sb.WriteString("</" + tag + ">")
	}
}

// void renders a childless element.
func void(markup string) renderFunc {
	return func(_ *Renderer, _ ast.Node, _ *Context, sb *strings.Builder) {
		sb.WriteString(markup)
	}
}

func (r *Renderer) renderHeading(n ast.Node, ctx *Context, sb *strings.Builder) {
	h := n.(*ast.Heading)
	text := ast.PlainText(h)
	anchor := ctx.anchorFor(text)
	ctx.toc = append(ctx.toc, TOCEntry{Level: h.Level, Text: text, Anchor: anchor})

	level := strconv.Itoa(h.Level)
	sb.WriteString(`<h` + level + ` id="` + anchor + `">`)
	r.renderChildren(h, ctx, sb)
	sb.WriteString("</h" + level + ">")
}

func (r *Renderer) renderFencedCode(n ast.Node, ctx *Context, sb *strings.Builder) {
	fc := n.(*ast.FencedCode)
	sb.WriteString(r.highlighter.Highlight(fc.Code, fc.Language, highlight.Options{
		Title:      fc.Title,
		Highlights: fc.Highlights,
	}))
}

func (r *Renderer) renderList(n ast.Node, ctx *Context, sb *strings.Builder) {
	list := n.(*ast.List)
	tag := "ul"
	attrs := ""
	if list.Ordered {
		tag = "ol"
		if list.Start != 1 {
			attrs = ` start="` + strconv.Itoa(list.Start) + `"`
		}
	}
	sb.WriteString("<" + tag + attrs + ">")
	r.renderChildren(list, ctx, sb)
	sb.WriteString("</" + tag + ">")
}

func (r *Renderer) renderListItem(n ast.Node, ctx *Context, sb *strings.Builder) {
	sb.WriteString("<li>")
	children := n.Children()
	if len(children) == 1 && children[0].Kind() == ast.KindParagraph {
		// Tight list: unwrap the single paragraph.
		r.renderChildren(children[0], ctx, sb)
	} else {
		r.renderChildren(n, ctx, sb)
	}
	sb.WriteString("</li>")
}

func (r *Renderer) renderTable(n ast.Node, ctx *Context, sb *strings.Builder) {
	sb.WriteString("<table>")
	rows := n.Children()
	for i, row := range rows {
		if i == 0 {
			sb.WriteString("<thead>")
			r.renderNode(row, ctx, sb)
			sb.WriteString("</thead>")
			if len(rows) > 1 {
				sb.WriteString("<tbody>")
			}
			continue
		}
		r.renderNode(row, ctx, sb)
	}
	if len(rows) > 1 {
		sb.WriteString("</tbody>")
	}
	sb.WriteString("</table>")
}

func (r *Renderer) renderTableRow(n ast.Node, ctx *Context, sb *strings.Builder) {
	row := n.(*ast.TableRow)
	sb.WriteString("<tr>")
	for _, cell := range row.Children() {
		if row.Header {
			sb.WriteString("<th>")
			r.renderChildren(cell, ctx, sb)
			sb.WriteString("</th>")
		} else {
			r.renderNode(cell, ctx, sb)
		}
	}
	sb.WriteString("</tr>")
}

func (r *Renderer) renderDirective(n ast.Node, ctx *Context, sb *strings.Builder) {
	d := n.(*ast.Directive)
	if !d.Known {
		// Unknown directive names pass through as literal text.
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(d.RawText))
		sb.WriteString("</p>")
		return
	}
	sb.WriteString(`<div class="admonition admonition-` + d.Name + `">`)
	sb.WriteString(`<p class="admonition-title">`)
	if d.Title != "" {
		sb.WriteString(html.EscapeString(d.Title))
	} else {
		sb.WriteString(strings.ToUpper(d.Name[:1]) + d.Name[1:])
	}
	sb.WriteString("</p>")
	r.renderChildren(d, ctx, sb)
	sb.WriteString("</div>")
}

func (*Renderer) renderText(n ast.Node, _ *Context, sb *strings.Builder) {
	sb.WriteString(html.EscapeString(n.(*ast.Text).Content))
}

func (*Renderer) renderCodeSpan(n ast.Node, _ *Context, sb *strings.Builder) {
	sb.WriteString("<code>")
	sb.WriteString(html.EscapeString(n.(*ast.CodeSpan).Content))
	sb.WriteString("</code>")
}

func (r *Renderer) renderLink(n ast.Node, ctx *Context, sb *strings.Builder) {
	link := n.(*ast.Link)
	href, ok := resolveLinkTarget(link.Destination, ctx)
	if !ok {
		// Broken internal link: degrade to the original text, keep the page.
		ctx.addWarning(fmt.Sprintf("link target %q does not resolve to a permalink", link.Destination), link.Pos())
		r.renderChildren(link, ctx, sb)
		return
	}
	sb.WriteString(`<a href="` + html.EscapeString(href) + `"`)
	if link.Title != "" {
		sb.WriteString(` title="` + html.EscapeString(link.Title) + `"`)
	}
	sb.WriteString(">")
	r.renderChildren(link, ctx, sb)
	sb.WriteString("</a>")
}

func (*Renderer) renderImage(n ast.Node, _ *Context, sb *strings.Builder) {
	img := n.(*ast.Image)
	sb.WriteString(`<img src="` + html.EscapeString(img.Destination) + `" alt="` + html.EscapeString(img.Alt) + `">`)
}

func (r *Renderer) renderShortcode(n ast.Node, ctx *Context, sb *strings.Builder) {
	sc := n.(*ast.Shortcode)
	if !sc.Known {
		sb.WriteString(html.EscapeString(sc.RawText))
		return
	}
	switch sc.Name {
	case "ref":
		r.renderRefShortcode(sc, ctx, sb)
	case "badge":
		sb.WriteString(`<span class="badge">`)
		sb.WriteString(html.EscapeString(strings.Join(sc.Args, " ")))
		sb.WriteString("</span>")
	}
}

func (r *Renderer) renderRefShortcode(sc *ast.Shortcode, ctx *Context, sb *strings.Builder) {
	if len(sc.Args) == 0 {
		ctx.addWarning("ref shortcode requires a permalink argument", sc.Pos())
		sb.WriteString(html.EscapeString(sc.RawText))
		return
	}
	permalink := strings.Trim(sc.Args[0], `"`)
	href, ok := ctx.resolvePermalink(permalink)
	if !ok {
		ctx.addWarning(fmt.Sprintf("ref shortcode target %q does not resolve to a permalink", permalink), sc.Pos())
		sb.WriteString(html.EscapeString(permalink))
		return
	}
	title := permalink
	if doc, found := ctx.Zone.Nav.Lookup(permalink); found && doc.Title != "" {
		title = doc.Title
	}
	sb.WriteString(`<a href="` + html.EscapeString(href) + `">` + html.EscapeString(title) + `</a>`)
}

// resolveLinkTarget classifies a link destination. External URLs,
// site-absolute paths, and in-page anchors pass through untouched;
// anything else is treated as a doc-relative permalink and rewritten to an
// absolute zone-prefixed URL.
func resolveLinkTarget(dest string, ctx *Context) (string, bool) {
	switch {
	case dest == "":
		return "", false
	case strings.Contains(dest, "://"), strings.HasPrefix(dest, "mailto:"):
		return dest, true
	case strings.HasPrefix(dest, "/"), strings.HasPrefix(dest, "#"):
		return dest, true
	}
	base := dest
	fragment := ""
	if idx := strings.IndexByte(dest, '#'); idx >= 0 {
		base, fragment = dest[:idx], dest[idx:]
	}
	href, ok := ctx.resolvePermalink(base)
	if !ok {
		return "", false
	}
	return href + fragment, true
}
