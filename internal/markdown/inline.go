package markdown

import (
	"strings"

	"git.home.luguber.info/inful/docsite/internal/markdown/ast"
)

// knownShortcodes enumerates the inline macros the renderer understands.
// Unknown names are kept as literal text (see Shortcode.Known).
var knownShortcodes = map[string]bool{
	"ref":   true,
	"badge": true,
}

// inlineParser is a single-run recursive-descent scanner over one line of
// paragraph, heading, or cell text. It never fails: malformed constructs
// degrade to literal text.
type inlineParser struct {
	src  string
	pos  int
	line int

	nodes []ast.Node
	text  strings.Builder
	start int // byte offset where the pending literal text began
}

// parseInline parses one source line of inline content.
func parseInline(src string, line int) []ast.Node {
	p := &inlineParser{src: src, line: line}
	p.run()
	return p.nodes
}

func (p *inlineParser) position(offset int) ast.Position {
	return ast.Position{Line: p.line, Column: offset + 1}
}

func (p *inlineParser) flushText() {
	if p.text.Len() == 0 {
		return
	}
	node := &ast.Text{Content: p.text.String()}
	node.Position = p.position(p.start)
	p.nodes = append(p.nodes, node)
	p.text.Reset()
}

func (p *inlineParser) literal(s string) {
	if p.text.Len() == 0 {
		p.start = p.pos
	}
	p.text.WriteString(s)
}

func (p *inlineParser) run() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			p.literal(string(p.src[p.pos+1]))
			p.pos += 2
		case c == '`':
			p.codeSpan()
		case strings.HasPrefix(p.src[p.pos:], "{{<"):
			p.shortcode()
		case strings.HasPrefix(p.src[p.pos:], "**"):
			p.delimited("**", func() ast.Node { return &ast.Strong{} })
		case c == '*' || c == '_':
			p.delimited(string(c), func() ast.Node { return &ast.Emphasis{} })
		case c == '!' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '[':
			p.image()
		case c == '[':
			p.link()
		default:
			p.literal(string(c))
			p.pos++
		}
	}
	p.flushText()
}

// codeSpan scans `code`; an unmatched backtick is literal text.
func (p *inlineParser) codeSpan() {
	end := strings.IndexByte(p.src[p.pos+1:], '`')
	if end < 0 {
		p.literal("`")
		p.pos++
		return
	}
	p.flushText()
	node := &ast.CodeSpan{Content: p.src[p.pos+1 : p.pos+1+end]}
	node.Position = p.position(p.pos)
	p.nodes = append(p.nodes, node)
	p.pos += end + 2
}

// delimited scans emphasis-style spans with a symmetric delimiter.
func (p *inlineParser) delimited(delim string, make func() ast.Node) {
	rest := p.src[p.pos+len(delim):]
	end := strings.Index(rest, delim)
	if end <= 0 {
		// No closer, or empty span: literal.
		p.literal(delim)
		p.pos += len(delim)
		return
	}
	p.flushText()
	node := make()
	inner := parseInline(rest[:end], p.line)
	setPosition(node, p.position(p.pos))
	for _, c := range inner {
		node.AppendChild(c)
	}
	p.nodes = append(p.nodes, node)
	p.pos += len(delim)*2 + end
}

// link scans [text](destination "title").
func (p *inlineParser) link() {
	text, dest, title, consumed, ok := scanLinkAt(p.src[p.pos:])
	if !ok {
		p.literal("[")
		p.pos++
		return
	}
	p.flushText()
	node := &ast.Link{Destination: dest, Title: title}
	node.Position = p.position(p.pos)
	for _, c := range parseInline(text, p.line) {
		node.AppendChild(c)
	}
	p.nodes = append(p.nodes, node)
	p.pos += consumed
}

// image scans ![alt](src).
func (p *inlineParser) image() {
	alt, dest, _, consumed, ok := scanLinkAt(p.src[p.pos+1:])
	if !ok {
		p.literal("!")
		p.pos++
		return
	}
	p.flushText()
	node := &ast.Image{Destination: dest, Alt: alt}
	node.Position = p.position(p.pos)
	p.nodes = append(p.nodes, node)
	p.pos += consumed + 1
}

// shortcode scans {{< name args... >}}.
func (p *inlineParser) shortcode() {
	end := strings.Index(p.src[p.pos:], ">}}")
	if end < 0 {
		p.literal("{{<")
		p.pos += 3
		return
	}
	raw := p.src[p.pos : p.pos+end+3]
	fields := strings.Fields(p.src[p.pos+3 : p.pos+end])
	if len(fields) == 0 {
		p.literal(raw)
		p.pos += end + 3
		return
	}
	p.flushText()
	node := &ast.Shortcode{
		Name:    fields[0],
		Args:    fields[1:],
		Known:   knownShortcodes[fields[0]],
		RawText: raw,
	}
	node.Position = p.position(p.pos)
	p.nodes = append(p.nodes, node)
	p.pos += end + 3
}

// scanLinkAt matches [text](dest "title") at the start of s, returning the
// number of bytes consumed. Bracket nesting in the text part is honored one
// level deep (enough for image-in-link constructs).
func scanLinkAt(s string) (text, dest, title string, consumed int, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", "", "", 0, false
	}
	depth := 0
	closeBracket := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				closeBracket = i
			}
		}
		if closeBracket >= 0 {
			break
		}
	}
	if closeBracket < 0 || closeBracket+1 >= len(s) || s[closeBracket+1] != '(' {
		return "", "", "", 0, false
	}
	closeParen := strings.IndexByte(s[closeBracket+2:], ')')
	if closeParen < 0 {
		return "", "", "", 0, false
	}
	text = s[1:closeBracket]
	target := strings.TrimSpace(s[closeBracket+2 : closeBracket+2+closeParen])
	dest = target
	if idx := strings.IndexByte(target, '"'); idx > 0 {
		dest = strings.TrimSpace(target[:idx])
		title = strings.Trim(target[idx:], `" `)
	}
	consumed = closeBracket + 2 + closeParen + 1
	return text, dest, title, consumed, true
}

// setPosition assigns a position to any concrete node type.
func setPosition(n ast.Node, pos ast.Position) {
	switch t := n.(type) {
	case *ast.Emphasis:
		t.Position = pos
	case *ast.Strong:
		t.Position = pos
	}
}
