// Package highlight tokenizes fenced-code source by declarative grammar rules
// and emits syntax-highlighted HTML. Grammars are data: a named, ordered list
// of pattern rules mapping matched spans to scope tags. The registry is built
// once at startup and read concurrently without synchronization.
//
// An unknown language never fails a render; it falls back to escaped plain
// text.
package highlight

import (
	"regexp"
	"sort"
)

// Scope tags a token span with its lexical role. Scopes become CSS class
// suffixes in the rendered output (tok-keyword, tok-string, ...).
type Scope string

const (
	ScopeComment  Scope = "comment"
	ScopeKeyword  Scope = "keyword"
	ScopeString   Scope = "string"
	ScopeNumber   Scope = "number"
	ScopeFunction Scope = "function"
	ScopeVariable Scope = "variable"
	ScopeOperator Scope = "operator"
	ScopeDelim    Scope = "delimiter"
	ScopePlain    Scope = ""
)

// Rule matches a token at the current scan position. Patterns are applied in
// declaration order; the first match wins. If the pattern contains a capture
// group, only the group-1 text is consumed and tagged — the rest of the match
// acts as trailing context (RE2 has no lookahead).
type Rule struct {
	Pattern *regexp.Regexp
	Scope   Scope
}

// Grammar is an immutable tokenization ruleset for one language.
type Grammar struct {
	Name    string
	Aliases []string
	Rules   []Rule
}

// rule compiles pattern anchored at the scan position.
func rule(pattern string, scope Scope) Rule {
	return Rule{Pattern: regexp.MustCompile(`^(?:` + pattern + `)`), Scope: scope}
}

// Registry maps language identifiers to grammars. Immutable after Build.
type Registry struct {
	grammars map[string]*Grammar
}

// NewRegistry builds a registry from the given grammars, indexing each under
// its name and all aliases. Later grammars do not override earlier names.
func NewRegistry(grammars ...*Grammar) *Registry {
	idx := make(map[string]*Grammar)
	for _, g := range grammars {
		if _, exists := idx[g.Name]; !exists {
			idx[g.Name] = g
		}
		for _, alias := range g.Aliases {
			if _, exists := idx[alias]; !exists {
				idx[alias] = g
			}
		}
	}
	return &Registry{grammars: idx}
}

// DefaultRegistry returns the registry with all built-in grammars.
func DefaultRegistry() *Registry {
	return NewRegistry(
		goGrammar(),
		jsonGrammar(),
		shellGrammar(),
		dotenvGrammar(),
		goTemplateGrammar(),
	)
}

// Lookup returns the grammar for a language identifier, or nil if unknown.
func (r *Registry) Lookup(languageID string) *Grammar {
	return r.grammars[languageID]
}

// Languages lists all registered identifiers, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.grammars))
	for name := range r.grammars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
