package highlight

import (
	"html"
	"strings"
)

// Span is one tokenized run of source text.
type Span struct {
	Text  string
	Scope Scope
}

// Tokenize splits code into scoped spans using the grammar's rules. Text not
// matched by any rule is emitted as plain spans. Adjacent plain characters are
// coalesced.
func Tokenize(g *Grammar, code string) []Span {
	var spans []Span
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String(), Scope: ScopePlain})
			plain.Reset()
		}
	}

	rest := code
	for len(rest) > 0 {
		matched := false
		for _, r := range g.Rules {
			m := r.Pattern.FindStringSubmatchIndex(rest)
			if m == nil {
				continue
			}
			end := m[1]
			if len(m) > 2 && m[2] >= 0 {
				end = m[3] // consume only group 1
			}
			if end == 0 {
				continue
			}
			flushPlain()
			spans = append(spans, Span{Text: rest[:end], Scope: r.Scope})
			rest = rest[end:]
			matched = true
			break
		}
		if !matched {
			plain.WriteByte(rest[0])
			rest = rest[1:]
		}
	}
	flushPlain()
	return spans
}

// Highlighter renders fenced-code blocks to HTML using a grammar registry.
type Highlighter struct {
	registry *Registry
}

// New returns a Highlighter over the given registry (DefaultRegistry if nil).
func New(registry *Registry) *Highlighter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Highlighter{registry: registry}
}

// Options carries per-block rendering attributes from the fence mini-grammar.
type Options struct {
	Title      string
	Highlights map[int]bool // 1-based line numbers to mark
}

// Highlight renders code as HTML. An unknown languageID degrades to escaped
// plain text; this function never fails.
func (h *Highlighter) Highlight(code, languageID string, opts Options) string {
	var sb strings.Builder
	sb.WriteString(`<div class="codeblock">`)
	if opts.Title != "" {
		sb.WriteString(`<div class="codeblock-title">`)
		sb.WriteString(html.EscapeString(opts.Title))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`<pre><code`)
	if languageID != "" {
		sb.WriteString(` class="language-`)
		sb.WriteString(html.EscapeString(languageID))
		sb.WriteString(`"`)
	}
	sb.WriteString(`>`)

	grammar := h.registry.Lookup(languageID)
	for i, line := range strings.Split(code, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		hl := opts.Highlights[i+1]
		if hl {
			sb.WriteString(`<span class="hl">`)
		}
		if grammar == nil {
			sb.WriteString(html.EscapeString(line))
		} else {
			writeSpans(&sb, Tokenize(grammar, line))
		}
		if hl {
			sb.WriteString(`</span>`)
		}
	}

	sb.WriteString(`</code></pre></div>`)
	return sb.String()
}

func writeSpans(sb *strings.Builder, spans []Span) {
	for _, s := range spans {
		if s.Scope == ScopePlain {
			sb.WriteString(html.EscapeString(s.Text))
			continue
		}
		sb.WriteString(`<span class="tok-`)
		sb.WriteString(string(s.Scope))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(s.Text))
		sb.WriteString(`</span>`)
	}
}
