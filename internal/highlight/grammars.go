package highlight

// Built-in grammar definitions. Rules are ordered: comments and strings come
// before operators so their contents are never re-tokenized.

func goGrammar() *Grammar {
	return &Grammar{
		Name:    "go",
		Aliases: []string{"golang"},
		Rules: []Rule{
			rule(`//[^\n]*`, ScopeComment),
			rule(`/\*[\s\S]*?\*/`, ScopeComment),
			rule("`[^`]*`", ScopeString),
			rule(`"(?:[^"\\\n]|\\.)*"`, ScopeString),
			rule(`'(?:[^'\\\n]|\\.)*'`, ScopeString),
			rule(`\b(?:break|case|chan|const|continue|default|defer|else|fallthrough|for|func|go|goto|if|import|interface|map|package|range|return|select|struct|switch|type|var)\b`, ScopeKeyword),
			rule(`\b(?:true|false|nil|iota|bool|byte|rune|string|error|int|int8|int16|int32|int64|uint|uint8|uint16|uint32|uint64|float32|float64|complex64|complex128|any)\b`, ScopeKeyword),
			rule(`\b\d+(?:\.\d+)?(?:e[+-]?\d+)?i?\b`, ScopeNumber),
			rule(`\b([A-Za-z_]\w*)\(`, ScopeFunction),
			rule(`[+\-*/%&|^!=<>:]=?|&&|\|\||<-|\+\+|--`, ScopeOperator),
		},
	}
}

func jsonGrammar() *Grammar {
	return &Grammar{
		Name: "json",
		Rules: []Rule{
			rule(`("(?:[^"\\]|\\.)*")\s*:`, ScopeVariable),
			rule(`"(?:[^"\\]|\\.)*"`, ScopeString),
			rule(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`, ScopeNumber),
			rule(`\b(?:true|false|null)\b`, ScopeKeyword),
			rule(`[{}\[\]:,]`, ScopeDelim),
		},
	}
}

func shellGrammar() *Grammar {
	return &Grammar{
		Name:    "shell",
		Aliases: []string{"sh", "bash", "zsh"},
		Rules: []Rule{
			rule(`#[^\n]*`, ScopeComment),
			rule(`"(?:[^"\\]|\\.)*"`, ScopeString),
			rule(`'[^']*'`, ScopeString),
			rule(`\$\{[^}]*\}|\$\w+`, ScopeVariable),
			rule(`\b(?:if|then|else|elif|fi|for|while|until|do|done|case|esac|function|in|export|local|return|exit|set|source)\b`, ScopeKeyword),
			rule(`\b\d+\b`, ScopeNumber),
			rule(`[|&;<>()]`, ScopeOperator),
		},
	}
}

func dotenvGrammar() *Grammar {
	return &Grammar{
		Name:    "dotenv",
		Aliases: []string{"env"},
		Rules: []Rule{
			rule(`#[^\n]*`, ScopeComment),
			rule(`([A-Za-z_][A-Za-z0-9_]*)=`, ScopeVariable),
			rule(`"(?:[^"\\]|\\.)*"`, ScopeString),
			rule(`'[^']*'`, ScopeString),
			rule(`=`, ScopeOperator),
		},
	}
}

// goTemplateGrammar covers the template actions used by the page shell the
// renderer emits ({{ .Title }}, {{ range ... }}, and friends).
func goTemplateGrammar() *Grammar {
	return &Grammar{
		Name:    "gotemplate",
		Aliases: []string{"go-template", "tmpl"},
		Rules: []Rule{
			rule(`\{\{-?|-?\}\}`, ScopeDelim),
			rule(`/\*[\s\S]*?\*/`, ScopeComment),
			rule(`"(?:[^"\\]|\\.)*"`, ScopeString),
			rule(`\b(?:if|else|end|range|with|template|block|define|printf|print|println|len|index|and|or|not|eq|ne|lt|le|gt|ge)\b`, ScopeKeyword),
			rule(`\.\w+(?:\.\w+)*`, ScopeVariable),
			rule(`\$\w*`, ScopeVariable),
			rule(`\b\d+\b`, ScopeNumber),
			rule(`\|`, ScopeOperator),
		},
	}
}
