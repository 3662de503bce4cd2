// Package markdown parses documentation Markdown into a closed AST.
//
// Block structure is recognized in a single line-oriented pass; inline content
// is handled by a recursive-descent scanner per text run. The dialect is the
// subset used by the documentation corpus: ATX headings, paragraphs, fenced
// code with an info-string mini-grammar, pipe tables, lists, blockquotes,
// thematic breaks, triple-colon directive blocks, and inline shortcodes.
//
// Parsing fails only for structurally broken input (unterminated fences or
// directive blocks); everything else degrades to literal text.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/markdown/ast"
)

// Parser converts Markdown source into an AST. Safe for concurrent use.
type Parser struct {
	directives map[string]bool
}

// New returns a Parser recognizing the built-in admonition directives.
func New() *Parser {
	return &Parser{
		directives: map[string]bool{
			"note":    true,
			"tip":     true,
			"info":    true,
			"warning": true,
			"danger":  true,
		},
	}
}

// Parse parses source into a document tree. On malformed structure it returns
// a *ParseError carrying the 1-based source position.
func (p *Parser) Parse(source string) (*ast.Document, error) {
	doc := &ast.Document{}
	doc.Position = ast.Position{Line: 1, Column: 1}
	bp := &blockParser{parser: p, lines: splitLines(source), base: 1}
	if err := bp.parseBlocks(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func splitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.TrimSuffix(source, "\n")
	if source == "" {
		return nil
	}
	return strings.Split(source, "\n")
}

var (
	headingRe       = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	fenceOpenRe     = regexp.MustCompile("^(`{3,}|~{3,})(.*)$")
	directiveOpenRe = regexp.MustCompile(`^:::([A-Za-z][A-Za-z0-9_-]*)\s*(.*)$`)
	thematicRe      = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})\s*$`)
	unorderedRe     = regexp.MustCompile(`^([-*])\s+(.*)$`)
	orderedRe       = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	tableSepRe      = regexp.MustCompile(`^\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?$`)
)

// blockParser walks a window of source lines. base is the 1-based source line
// number of lines[0]; nested parses (directives, blockquotes, list items)
// carry their own window with a shifted base so positions stay accurate.
type blockParser struct {
	parser *Parser
	lines  []string
	base   int
	i      int
}

func (b *blockParser) lineNo() int { return b.base + b.i }

func (b *blockParser) parseBlocks(parent ast.Node) error {
	for b.i < len(b.lines) {
		line := b.lines[b.i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			b.i++
		case fenceOpenRe.MatchString(trimmed):
			if err := b.parseFence(parent); err != nil {
				return err
			}
		case directiveOpenRe.MatchString(trimmed):
			if err := b.parseDirective(parent); err != nil {
				return err
			}
		case headingRe.MatchString(line):
			b.parseHeading(parent)
		case thematicRe.MatchString(trimmed):
			hr := &ast.ThematicBreak{}
			hr.Position = ast.Position{Line: b.lineNo(), Column: 1}
			parent.AppendChild(hr)
			b.i++
		case strings.HasPrefix(trimmed, ">"):
			if err := b.parseBlockquote(parent); err != nil {
				return err
			}
		case b.isTableStart():
			b.parseTable(parent)
		case unorderedRe.MatchString(line) || orderedRe.MatchString(line):
			if err := b.parseList(parent); err != nil {
				return err
			}
		default:
			b.parseParagraph(parent)
		}
	}
	return nil
}

func (b *blockParser) parseHeading(parent ast.Node) {
	m := headingRe.FindStringSubmatch(b.lines[b.i])
	h := &ast.Heading{Level: len(m[1])}
	h.Position = ast.Position{Line: b.lineNo(), Column: 1}
	for _, c := range parseInline(m[2], b.lineNo()) {
		h.AppendChild(c)
	}
	parent.AppendChild(h)
	b.i++
}

func (b *blockParser) parseFence(parent ast.Node) error {
	openLine := b.lineNo()
	m := fenceOpenRe.FindStringSubmatch(strings.TrimSpace(b.lines[b.i]))
	marker := m[1]
	lang, title := parseFenceInfo(m[2])

	close := -1
	for j := b.i + 1; j < len(b.lines); j++ {
		t := strings.TrimSpace(b.lines[j])
		if strings.HasPrefix(t, marker[:1]) && strings.TrimRight(t, string(marker[0])) == "" && len(t) >= len(marker) {
			close = j
			break
		}
	}
	if close < 0 {
		return parseErrorf(openLine, 1, "unterminated fenced code block")
	}

	body, highlights := stripHighlightSentinels(b.lines[b.i+1 : close])
	fc := &ast.FencedCode{
		Language:   lang,
		Title:      title,
		Code:       strings.Join(body, "\n"),
		Highlights: highlights,
	}
	fc.Position = ast.Position{Line: openLine, Column: 1}
	parent.AppendChild(fc)
	b.i = close + 1
	return nil
}

func (b *blockParser) parseDirective(parent ast.Node) error {
	openLine := b.lineNo()
	m := directiveOpenRe.FindStringSubmatch(strings.TrimSpace(b.lines[b.i]))
	name, title := m[1], strings.TrimSpace(m[2])

	depth := 1
	close := -1
	for j := b.i + 1; j < len(b.lines); j++ {
		t := strings.TrimSpace(b.lines[j])
		if directiveOpenRe.MatchString(t) {
			depth++
			continue
		}
		if t == ":::" {
			depth--
			if depth == 0 {
				close = j
				break
			}
		}
	}
	if close < 0 {
		return parseErrorf(openLine, 1, "unterminated directive %q", ":::"+name)
	}

	d := &ast.Directive{Name: name, Title: title, Known: b.parser.directives[name]}
	d.Position = ast.Position{Line: openLine, Column: 1}
	if d.Known {
		inner := &blockParser{parser: b.parser, lines: b.lines[b.i+1 : close], base: openLine + 1}
		if err := inner.parseBlocks(d); err != nil {
			return err
		}
	} else {
		// Unknown directive names pass through as their literal source text.
		d.RawText = strings.Join(b.lines[b.i:close+1], "\n")
	}
	parent.AppendChild(d)
	b.i = close + 1
	return nil
}

func (b *blockParser) parseBlockquote(parent ast.Node) error {
	start := b.i
	var inner []string
	for b.i < len(b.lines) {
		t := strings.TrimSpace(b.lines[b.i])
		if !strings.HasPrefix(t, ">") {
			break
		}
		inner = append(inner, strings.TrimPrefix(strings.TrimPrefix(t, ">"), " "))
		b.i++
	}
	bq := &ast.Blockquote{}
	bq.Position = ast.Position{Line: b.base + start, Column: 1}
	nested := &blockParser{parser: b.parser, lines: inner, base: b.base + start}
	if err := nested.parseBlocks(bq); err != nil {
		return err
	}
	parent.AppendChild(bq)
	return nil
}

func (b *blockParser) parseList(parent ast.Node) error {
	first := b.lines[b.i]
	ordered := orderedRe.MatchString(first)

	list := &ast.List{Ordered: ordered, Start: 1}
	list.Position = ast.Position{Line: b.lineNo(), Column: 1}
	if ordered {
		if m := orderedRe.FindStringSubmatch(first); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				list.Start = n
			}
		}
	}

	var itemLines []string
	itemStart := 0
	itemIndent := 0

	flush := func() error {
		if itemLines == nil {
			return nil
		}
		item := &ast.ListItem{}
		item.Position = ast.Position{Line: b.base + itemStart, Column: 1}
		nested := &blockParser{parser: b.parser, lines: itemLines, base: b.base + itemStart}
		if err := nested.parseBlocks(item); err != nil {
			return err
		}
		list.AppendChild(item)
		itemLines = nil
		return nil
	}

	for b.i < len(b.lines) {
		line := b.lines[b.i]
		switch {
		case matchesMarker(line, ordered):
			if err := flush(); err != nil {
				return err
			}
			content, width := stripMarker(line, ordered)
			itemLines = []string{content}
			itemStart = b.i
			itemIndent = width
			b.i++
		case strings.TrimSpace(line) == "":
			// A blank line ends the list unless the next line continues the item.
			if b.i+1 < len(b.lines) && indentOf(b.lines[b.i+1]) >= itemIndent && strings.TrimSpace(b.lines[b.i+1]) != "" {
				itemLines = append(itemLines, "")
				b.i++
				continue
			}
			if err := flush(); err != nil {
				return err
			}
			parent.AppendChild(list)
			return nil
		case indentOf(line) >= itemIndent && itemIndent > 0:
			itemLines = append(itemLines, line[itemIndent:])
			b.i++
		default:
			if err := flush(); err != nil {
				return err
			}
			parent.AppendChild(list)
			return nil
		}
	}
	if err := flush(); err != nil {
		return err
	}
	parent.AppendChild(list)
	return nil
}

func matchesMarker(line string, ordered bool) bool {
	if ordered {
		return orderedRe.MatchString(line)
	}
	return unorderedRe.MatchString(line)
}

func stripMarker(line string, ordered bool) (content string, width int) {
	re := unorderedRe
	if ordered {
		re = orderedRe
	}
	m := re.FindStringSubmatch(line)
	content = m[2]
	width = len(line) - len(content)
	return content, width
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func (b *blockParser) isTableStart() bool {
	line := strings.TrimSpace(b.lines[b.i])
	if !strings.Contains(line, "|") {
		return false
	}
	if b.i+1 >= len(b.lines) {
		return false
	}
	next := strings.TrimSpace(b.lines[b.i+1])
	return strings.Contains(next, "-") && tableSepRe.MatchString(next)
}

func (b *blockParser) parseTable(parent ast.Node) {
	table := &ast.Table{}
	table.Position = ast.Position{Line: b.lineNo(), Column: 1}

	header := splitTableRow(b.lines[b.i])
	table.Alignments = parseAlignments(b.lines[b.i+1], len(header))
	table.AppendChild(b.makeTableRow(header, b.lineNo(), true))
	b.i += 2

	for b.i < len(b.lines) {
		line := strings.TrimSpace(b.lines[b.i])
		if line == "" || !strings.Contains(line, "|") {
			break
		}
		table.AppendChild(b.makeTableRow(splitTableRow(b.lines[b.i]), b.lineNo(), false))
		b.i++
	}
	parent.AppendChild(table)
}

func (b *blockParser) makeTableRow(cells []string, line int, header bool) *ast.TableRow {
	row := &ast.TableRow{Header: header}
	row.Position = ast.Position{Line: line, Column: 1}
	for _, cell := range cells {
		c := &ast.TableCell{}
		c.Position = ast.Position{Line: line, Column: 1}
		for _, n := range parseInline(cell, line) {
			c.AppendChild(n)
		}
		row.AppendChild(c)
	}
	return row
}

func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func parseAlignments(sep string, n int) []ast.Alignment {
	cells := splitTableRow(sep)
	aligns := make([]ast.Alignment, n)
	for i := 0; i < n && i < len(cells); i++ {
		c := cells[i]
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[i] = ast.AlignCenter
		case right:
			aligns[i] = ast.AlignRight
		case left:
			aligns[i] = ast.AlignLeft
		}
	}
	return aligns
}

// paragraphBreakers lists block starts that terminate a paragraph without a
// blank line between them.
func (b *blockParser) breaksParagraph(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" ||
		headingRe.MatchString(line) ||
		fenceOpenRe.MatchString(trimmed) ||
		directiveOpenRe.MatchString(trimmed) ||
		thematicRe.MatchString(trimmed) ||
		strings.HasPrefix(trimmed, ">") ||
		unorderedRe.MatchString(line) ||
		orderedRe.MatchString(line)
}

func (b *blockParser) parseParagraph(parent ast.Node) {
	para := &ast.Paragraph{}
	para.Position = ast.Position{Line: b.lineNo(), Column: 1}

	firstLine := true
	for b.i < len(b.lines) {
		line := b.lines[b.i]
		if !firstLine && b.breaksParagraph(line) {
			break
		}
		if !firstLine {
			// Soft break: joined with a space. A line ending in two or more
			// spaces produces an explicit HardBreak instead.
			if strings.HasSuffix(b.lines[b.i-1], "  ") {
				br := &ast.HardBreak{}
				br.Position = ast.Position{Line: b.lineNo() - 1, Column: len(b.lines[b.i-1])}
				para.AppendChild(br)
			} else {
				sp := &ast.Text{Content: " "}
				sp.Position = ast.Position{Line: b.lineNo(), Column: 1}
				para.AppendChild(sp)
			}
		}
		for _, n := range parseInline(strings.TrimRight(strings.TrimSpace(line), " "), b.lineNo()) {
			para.AppendChild(n)
		}
		firstLine = false
		b.i++
	}
	parent.AppendChild(para)
}
