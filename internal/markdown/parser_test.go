package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/markdown/ast"
)

func TestParse_HeadingAndParagraph(t *testing.T) {
	doc, err := New().Parse("# Title\n\nSome *text*.\n")
	require.NoError(t, err)
	require.Len(t, doc.Children(), 2)

	h, ok := doc.Children()[0].(*ast.Heading)
	require.True(t, ok)
	require.Equal(t, 1, h.Level)
	require.Equal(t, "Title", ast.PlainText(h))
	require.Equal(t, 1, h.Pos().Line)

	p, ok := doc.Children()[1].(*ast.Paragraph)
	require.True(t, ok)
	require.Equal(t, 3, p.Pos().Line)

	var em *ast.Emphasis
	ast.Walk(p, func(n ast.Node) bool {
		if e, ok := n.(*ast.Emphasis); ok {
			em = e
		}
		return true
	})
	require.NotNil(t, em)
	require.Equal(t, "text", ast.PlainText(em))
}

func TestParse_HeadingLevels(t *testing.T) {
	doc, err := New().Parse("## Two\n\n###### Six\n")
	require.NoError(t, err)
	require.Equal(t, 2, doc.Children()[0].(*ast.Heading).Level)
	require.Equal(t, 6, doc.Children()[1].(*ast.Heading).Level)
}

func TestParse_FencedCodeWithLanguage(t *testing.T) {
	doc, err := New().Parse("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	require.Len(t, doc.Children(), 1)

	fc := doc.Children()[0].(*ast.FencedCode)
	require.Equal(t, "go", fc.Language)
	require.Equal(t, "func main() {}", fc.Code)
	require.Nil(t, fc.Highlights)
}

func TestParse_FenceTitleMiniGrammar(t *testing.T) {
	doc, err := New().Parse("```go // title: main.go\npackage main\n```\n")
	require.NoError(t, err)

	fc := doc.Children()[0].(*ast.FencedCode)
	require.Equal(t, "go", fc.Language)
	require.Equal(t, "main.go", fc.Title)
	require.Equal(t, "package main", fc.Code)
}

func TestParse_HighlightRangeSentinels(t *testing.T) {
	source := "```go\n" +
		"a := 1\n" +
		"// highlight-start\n" +
		"b := 2\n" +
		"c := 3\n" +
		"// highlight-end\n" +
		"d := 4\n" +
		"```\n"
	doc, err := New().Parse(source)
	require.NoError(t, err)

	fc := doc.Children()[0].(*ast.FencedCode)
	require.Equal(t, "a := 1\nb := 2\nc := 3\nd := 4", fc.Code)
	require.Equal(t, map[int]bool{2: true, 3: true}, fc.Highlights)
	require.NotContains(t, fc.Code, "highlight-start")
	require.NotContains(t, fc.Code, "highlight-end")
}

func TestParse_HighlightNextLineSentinel(t *testing.T) {
	doc, err := New().Parse("```go\n// highlight-next-line\nx := 1\ny := 2\n```\n")
	require.NoError(t, err)

	fc := doc.Children()[0].(*ast.FencedCode)
	require.Equal(t, map[int]bool{1: true}, fc.Highlights)
	require.Equal(t, "x := 1\ny := 2", fc.Code)
}

func TestParse_UnterminatedFence(t *testing.T) {
	_, err := New().Parse("para\n\n```go\nfunc main() {}\n")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 3, perr.Line)
	require.Contains(t, perr.Message, "unterminated fenced code block")
}

func TestParse_KnownDirective(t *testing.T) {
	doc, err := New().Parse(":::note Remember\nbody text\n:::\n")
	require.NoError(t, err)

	d := doc.Children()[0].(*ast.Directive)
	require.Equal(t, "note", d.Name)
	require.Equal(t, "Remember", d.Title)
	require.True(t, d.Known)
	require.Len(t, d.Children(), 1)
	require.Equal(t, "body text", ast.PlainText(d.Children()[0]))
}

func TestParse_NestedDirectives(t *testing.T) {
	source := ":::note\nouter\n:::tip\ninner\n:::\n:::\n"
	doc, err := New().Parse(source)
	require.NoError(t, err)
	require.Len(t, doc.Children(), 1)

	outer := doc.Children()[0].(*ast.Directive)
	require.Equal(t, "note", outer.Name)

	var inner *ast.Directive
	for _, c := range outer.Children() {
		if d, ok := c.(*ast.Directive); ok {
			inner = d
		}
	}
	require.NotNil(t, inner)
	require.Equal(t, "tip", inner.Name)
}

func TestParse_UnknownDirectivePassesThrough(t *testing.T) {
	// Pinned policy: unknown directive names are kept as literal text so that
	// documents written for newer tooling degrade instead of failing.
	doc, err := New().Parse(":::futuristic\ncontent\n:::\n")
	require.NoError(t, err)

	d := doc.Children()[0].(*ast.Directive)
	require.False(t, d.Known)
	require.Empty(t, d.Children())
	require.Equal(t, ":::futuristic\ncontent\n:::", d.RawText)
}

func TestParse_UnterminatedDirective(t *testing.T) {
	_, err := New().Parse(":::warning\nnever closed\n")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 1, perr.Line)
	require.Contains(t, perr.Message, ":::warning")
}

func TestParse_UnorderedList(t *testing.T) {
	doc, err := New().Parse("- one\n- two\n- three\n")
	require.NoError(t, err)

	list := doc.Children()[0].(*ast.List)
	require.False(t, list.Ordered)
	require.Len(t, list.Children(), 3)
	require.Equal(t, "two", ast.PlainText(list.Children()[1]))
}

func TestParse_OrderedListStart(t *testing.T) {
	doc, err := New().Parse("3. third\n4. fourth\n")
	require.NoError(t, err)

	list := doc.Children()[0].(*ast.List)
	require.True(t, list.Ordered)
	require.Equal(t, 3, list.Start)
	require.Len(t, list.Children(), 2)
}

func TestParse_Blockquote(t *testing.T) {
	doc, err := New().Parse("> quoted line\n> more\n")
	require.NoError(t, err)

	bq := doc.Children()[0].(*ast.Blockquote)
	require.Len(t, bq.Children(), 1)
	require.Equal(t, "quoted line more", ast.PlainText(bq))
}

func TestParse_Table(t *testing.T) {
	source := "| Name | Value |\n|------|------:|\n| a | 1 |\n| b | 2 |\n"
	doc, err := New().Parse(source)
	require.NoError(t, err)

	table := doc.Children()[0].(*ast.Table)
	require.Len(t, table.Children(), 3)
	require.Equal(t, []ast.Alignment{ast.AlignNone, ast.AlignRight}, table.Alignments)

	header := table.Children()[0].(*ast.TableRow)
	require.True(t, header.Header)
	require.Equal(t, "Name", ast.PlainText(header.Children()[0]))

	row := table.Children()[1].(*ast.TableRow)
	require.False(t, row.Header)
	require.Equal(t, "1", ast.PlainText(row.Children()[1]))
}

func TestParse_ThematicBreak(t *testing.T) {
	doc, err := New().Parse("above\n\n---\n\nbelow\n")
	require.NoError(t, err)
	require.Len(t, doc.Children(), 3)
	require.Equal(t, ast.KindThematicBreak, doc.Children()[1].Kind())
}

func TestParse_HardBreak(t *testing.T) {
	doc, err := New().Parse("first  \nsecond\n")
	require.NoError(t, err)

	para := doc.Children()[0].(*ast.Paragraph)
	var sawBreak bool
	ast.Walk(para, func(n ast.Node) bool {
		if n.Kind() == ast.KindHardBreak {
			sawBreak = true
		}
		return true
	})
	require.True(t, sawBreak)
}

func TestParse_EmptySource(t *testing.T) {
	doc, err := New().Parse("")
	require.NoError(t, err)
	require.Empty(t, doc.Children())
}

func TestParse_PositionsAreOneBased(t *testing.T) {
	doc, err := New().Parse("\n\n## Later\n")
	require.NoError(t, err)
	require.Equal(t, 3, doc.Children()[0].Pos().Line)
	require.Equal(t, 1, doc.Children()[0].Pos().Column)
}
