package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_GoKeywordsAndStrings(t *testing.T) {
	g := DefaultRegistry().Lookup("go")
	require.NotNil(t, g)

	spans := Tokenize(g, `func main() { s := "hi" }`)

	var scopes []Scope
	for _, s := range spans {
		if s.Scope != ScopePlain {
			scopes = append(scopes, s.Scope)
		}
	}
	assert.Contains(t, scopes, ScopeKeyword)
	assert.Contains(t, scopes, ScopeFunction)
	assert.Contains(t, scopes, ScopeString)
}

func TestTokenize_FunctionNameConsumesOnlyIdentifier(t *testing.T) {
	g := DefaultRegistry().Lookup("go")
	spans := Tokenize(g, "foo(x)")

	require.Equal(t, "foo", spans[0].Text)
	require.Equal(t, ScopeFunction, spans[0].Scope)
	// The paren must survive as its own (plain) text.
	joined := ""
	for _, s := range spans {
		joined += s.Text
	}
	require.Equal(t, "foo(x)", joined)
}

func TestTokenize_RoundTripsText(t *testing.T) {
	for _, lang := range []string{"go", "json", "shell", "dotenv", "gotemplate"} {
		g := DefaultRegistry().Lookup(lang)
		require.NotNil(t, g, lang)

		input := "weird $stuff { \"k\": 1 } # done"
		joined := ""
		for _, s := range Tokenize(g, input) {
			joined += s.Text
		}
		require.Equal(t, input, joined, lang)
	}
}

func TestHighlight_UnknownLanguageFallsBackToEscapedPlainText(t *testing.T) {
	h := New(nil)
	out := h.Highlight(`if x < 3 { "y" }`, "nosuchlang", Options{})

	assert.Contains(t, out, "&lt; 3")
	assert.Contains(t, out, `class="language-nosuchlang"`)
	assert.NotContains(t, out, "tok-")
}

func TestHighlight_EscapesCodeContent(t *testing.T) {
	h := New(nil)
	out := h.Highlight(`fmt.Println("<script>")`, "go", Options{})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestHighlight_MarksHighlightedLines(t *testing.T) {
	h := New(nil)
	code := "a := 1\nb := 2\nc := 3"
	out := h.Highlight(code, "go", Options{Highlights: map[int]bool{2: true}})

	require.Equal(t, 1, strings.Count(out, `<span class="hl">`))
	// The marked span must wrap line two.
	idx := strings.Index(out, `<span class="hl">`)
	require.Greater(t, idx, strings.Index(out, "1"))
}

func TestHighlight_TitleRendered(t *testing.T) {
	h := New(nil)
	out := h.Highlight("KEY=value", "dotenv", Options{Title: ".env.example"})
	assert.Contains(t, out, `<div class="codeblock-title">.env.example</div>`)
	assert.Contains(t, out, `tok-variable`)
}

func TestRegistry_AliasLookup(t *testing.T) {
	r := DefaultRegistry()
	require.Same(t, r.Lookup("shell"), r.Lookup("bash"))
	require.Same(t, r.Lookup("go"), r.Lookup("golang"))
	require.Nil(t, r.Lookup("cobol"))
}

func TestRegistry_PluggableGrammar(t *testing.T) {
	custom := &Grammar{
		Name:  "beep",
		Rules: []Rule{rule(`beep`, ScopeKeyword)},
	}
	r := NewRegistry(custom)
	h := New(r)

	out := h.Highlight("beep boop", "beep", Options{})
	assert.Contains(t, out, `<span class="tok-keyword">beep</span>`)
	assert.Contains(t, out, "boop")
}
