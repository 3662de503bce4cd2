// Package ast defines the document tree produced by the Markdown parser.
//
// The node set is closed: every kind the parser can emit is enumerated in
// NodeKind, and the renderer dispatches over that enumeration exhaustively.
// Nodes own their children; trees are never shared between documents.
package ast

import "fmt"

// NodeKind identifies the variant of a Node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindHeading
	KindParagraph
	KindFencedCode
	KindList
	KindListItem
	KindBlockquote
	KindTable
	KindTableRow
	KindTableCell
	KindThematicBreak
	KindDirective
	KindText
	KindEmphasis
	KindStrong
	KindCodeSpan
	KindLink
	KindImage
	KindShortcode
	KindHardBreak

	// kindSentinel marks the end of the enumeration; used by the renderer to
	// verify its dispatch table covers every kind.
	kindSentinel
)

// NumKinds is the number of node kinds in the closed set.
const NumKinds = int(kindSentinel)

var kindNames = [...]string{
	"Document", "Heading", "Paragraph", "FencedCode", "List", "ListItem",
	"Blockquote", "Table", "TableRow", "TableCell", "ThematicBreak",
	"Directive", "Text", "Emphasis", "Strong", "CodeSpan", "Link", "Image",
	"Shortcode", "HardBreak",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return kindNames[k]
}

// Position locates a node in the Markdown source for error reporting.
// Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Node is the interface implemented by every AST node.
type Node interface {
	Kind() NodeKind
	Pos() Position
	Children() []Node
	AppendChild(Node)
}

// BaseNode provides position and child bookkeeping for concrete nodes.
type BaseNode struct {
	Position Position
	children []Node
}

func (n *BaseNode) Pos() Position       { return n.Position }
func (n *BaseNode) Children() []Node    { return n.children }
func (n *BaseNode) AppendChild(c Node)  { n.children = append(n.children, c) }

// Document is the root of a parsed Markdown file.
type Document struct{ BaseNode }

func (*Document) Kind() NodeKind { return KindDocument }

// Heading is an ATX heading; Level is 1..6.
type Heading struct {
	BaseNode
	Level int
}

func (*Heading) Kind() NodeKind { return KindHeading }

// Paragraph is a run of inline content.
type Paragraph struct{ BaseNode }

func (*Paragraph) Kind() NodeKind { return KindParagraph }

// FencedCode is a fenced code block. Language and Title come from the fence
// info string; Highlights holds 1-based line numbers (after sentinel
// stripping) that should be marked in the rendered output.
type FencedCode struct {
	BaseNode
	Language   string
	Title      string
	Code       string
	Highlights map[int]bool
}

func (*FencedCode) Kind() NodeKind { return KindFencedCode }

// List is an ordered or unordered list of ListItem children.
type List struct {
	BaseNode
	Ordered bool
	Start   int
}

func (*List) Kind() NodeKind { return KindList }

// ListItem holds block content of a single list entry.
type ListItem struct{ BaseNode }

func (*ListItem) Kind() NodeKind { return KindListItem }

// Blockquote holds block content quoted with '>'.
type Blockquote struct{ BaseNode }

func (*Blockquote) Kind() NodeKind { return KindBlockquote }

// Table is a pipe table; the first TableRow child is the header row.
type Table struct {
	BaseNode
	Alignments []Alignment
}

func (*Table) Kind() NodeKind { return KindTable }

// Alignment is a table column alignment from the separator row.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// TableRow holds TableCell children.
type TableRow struct {
	BaseNode
	Header bool
}

func (*TableRow) Kind() NodeKind { return KindTableRow }

// TableCell holds inline content of a single cell.
type TableCell struct{ BaseNode }

func (*TableCell) Kind() NodeKind { return KindTableCell }

// ThematicBreak is a horizontal rule.
type ThematicBreak struct{ BaseNode }

func (*ThematicBreak) Kind() NodeKind { return KindThematicBreak }

// Directive is a triple-colon admonition block (:::note ... :::).
// Name is the directive tag; Title is the optional text after the tag.
// Known is false for names the parser does not recognize; unknown directives
// render as their literal source text (RawText) instead of admonition markup.
type Directive struct {
	BaseNode
	Name    string
	Title   string
	Known   bool
	RawText string
}

func (*Directive) Kind() NodeKind { return KindDirective }

// Text is a literal text run.
type Text struct {
	BaseNode
	Content string
}

func (*Text) Kind() NodeKind { return KindText }

// Emphasis wraps inline content in light emphasis (*x* or _x_).
type Emphasis struct{ BaseNode }

func (*Emphasis) Kind() NodeKind { return KindEmphasis }

// Strong wraps inline content in strong emphasis (**x**).
type Strong struct{ BaseNode }

func (*Strong) Kind() NodeKind { return KindStrong }

// CodeSpan is inline code.
type CodeSpan struct {
	BaseNode
	Content string
}

func (*CodeSpan) Kind() NodeKind { return KindCodeSpan }

// Link is an inline link; Destination is the raw target before permalink
// resolution (which happens at render time).
type Link struct {
	BaseNode
	Destination string
	Title       string
}

func (*Link) Kind() NodeKind { return KindLink }

// Image is an inline image reference.
type Image struct {
	BaseNode
	Destination string
	Alt         string
}

func (*Image) Kind() NodeKind { return KindImage }

// Shortcode is an inline macro ({{< name args >}}).
// Known mirrors Directive.Known: unrecognized names render as literal text.
type Shortcode struct {
	BaseNode
	Name    string
	Args    []string
	Known   bool
	RawText string
}

func (*Shortcode) Kind() NodeKind { return KindShortcode }

// HardBreak is an explicit line break inside a paragraph.
type HardBreak struct{ BaseNode }

func (*HardBreak) Kind() NodeKind { return KindHardBreak }

// Walk visits n and its descendants depth-first. The visitor returns false to
// skip a node's children.
func Walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// PlainText concatenates all literal text beneath n. Used for heading anchors
// and table-of-contents entries.
func PlainText(n Node) string {
	out := ""
	Walk(n, func(c Node) bool {
		switch t := c.(type) {
		case *Text:
			out += t.Content
		case *CodeSpan:
			out += t.Content
		}
		return true
	})
	return out
}
