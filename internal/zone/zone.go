// Package zone models the named content zones of the documentation site and
// their navigation trees. Zones are loaded once at process start and are
// immutable afterwards; concurrent readers need no synchronization.
package zone

import (
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// RootSentinel names a group or category that exists only for structure and
// must not be displayed as a heading.
const RootSentinel = "root"

// Doc maps a stable permalink to a content file within a zone.
type Doc struct {
	Title       string `json:"title"`
	Permalink   string `json:"permalink"`
	ContentPath string `json:"contentPath"`
}

// Category groups docs under a sidebar heading.
type Category struct {
	Name string `json:"name"`
	Docs []Doc  `json:"docs"`
}

// IsRoot reports whether the category is the "not shown" sentinel.
func (c Category) IsRoot() bool { return c.Name == RootSentinel }

// Group is a top-level navigation grouping of categories.
type Group struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// IsRoot reports whether the group is the "ungrouped" sentinel.
func (g Group) IsRoot() bool { return g.Name == RootSentinel }

// Zone is an independently-navigable section of the site.
type Zone struct {
	Name        string
	BaseURL     string
	ContentRoot string
	Nav         *NavigationTree
}

// Registry holds all configured zones in registration order.
type Registry struct {
	zones []*Zone
}

// NewRegistry validates and indexes the given zones. Base URL prefixes are
// normalized to have a leading slash and no trailing slash.
func NewRegistry(zones ...*Zone) (*Registry, error) {
	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		if z.Name == "" {
			return nil, errors.ConfigError("zone is missing a name").Build()
		}
		if seen[z.Name] {
			return nil, errors.ConfigError("duplicate zone name").
				WithContext("zone", z.Name).Build()
		}
		seen[z.Name] = true
		z.BaseURL = normalizeBaseURL(z.BaseURL)
		if z.Nav == nil {
			z.Nav = &NavigationTree{index: map[string]*Doc{}}
		}
	}
	return &Registry{zones: zones}, nil
}

// Zones returns all zones in registration order.
func (r *Registry) Zones() []*Zone { return r.zones }

// ZoneByName returns the named zone, or nil.
func (r *Registry) ZoneByName(name string) *Zone {
	for _, z := range r.zones {
		if z.Name == name {
			return z
		}
	}
	return nil
}

func normalizeBaseURL(base string) string {
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if base != "/" {
		base = strings.TrimSuffix(base, "/")
	}
	return base
}
