package zone

import (
	"bytes"
	"encoding/json"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// NavigationTree is the parsed, in-memory form of a zone's menu.json:
// groups of categories of docs, plus a permalink index for O(1) lookup.
type NavigationTree struct {
	Groups []Group

	index map[string]*Doc
}

// ParseMenu parses menu.json content into a NavigationTree. The top-level
// structure may be a single group object or an array of group objects.
//
// Validation is structural only: required fields and permalink uniqueness.
// Whether each contentPath exists on disk is deliberately not checked here —
// a dangling navigation entry fails at render time, not at load time.
func ParseMenu(data []byte) (*NavigationTree, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.ConfigError("menu is empty").Build()
	}

	var groups []Group
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &groups); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "malformed menu").Fatal().Build()
		}
	} else {
		var g Group
		if err := json.Unmarshal(trimmed, &g); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "malformed menu").Fatal().Build()
		}
		groups = []Group{g}
	}

	tree := &NavigationTree{Groups: groups, index: make(map[string]*Doc)}
	for gi := range tree.Groups {
		g := &tree.Groups[gi]
		if g.Name == "" {
			return nil, errors.ConfigError("menu group is missing a name").Build()
		}
		for ci := range g.Categories {
			c := &g.Categories[ci]
			if c.Name == "" {
				return nil, errors.ConfigError("menu category is missing a name").
					WithContext("group", g.Name).Build()
			}
			for di := range c.Docs {
				d := &c.Docs[di]
				if d.Permalink == "" || d.ContentPath == "" {
					return nil, errors.ConfigError("menu doc requires permalink and contentPath").
						WithContext("group", g.Name).
						WithContext("category", c.Name).
						WithContext("title", d.Title).Build()
				}
				if _, dup := tree.index[d.Permalink]; dup {
					return nil, errors.ConfigError("duplicate permalink in menu").
						WithContext("permalink", d.Permalink).Build()
				}
				tree.index[d.Permalink] = d
			}
		}
	}
	return tree, nil
}

// Lookup returns the doc registered under permalink.
func (t *NavigationTree) Lookup(permalink string) (*Doc, bool) {
	d, ok := t.index[permalink]
	return d, ok
}

// Docs returns all docs in navigation order.
func (t *NavigationTree) Docs() []*Doc {
	var out []*Doc
	for gi := range t.Groups {
		for ci := range t.Groups[gi].Categories {
			for di := range t.Groups[gi].Categories[ci].Docs {
				out = append(out, &t.Groups[gi].Categories[ci].Docs[di])
			}
		}
	}
	return out
}

// Len returns the number of docs in the tree.
func (t *NavigationTree) Len() int { return len(t.index) }
