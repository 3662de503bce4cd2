// Package resolve maps incoming URLs to (zone, doc) pairs using the zone
// registry's base prefixes and permalink indexes.
package resolve

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/zone"
)

// Match is a successful resolution.
type Match struct {
	Zone *zone.Zone
	Doc  *zone.Doc
}

// Resolver resolves URLs against an immutable zone registry.
//
// When zone prefixes overlap, the longest matching base prefix wins. This is
// deliberate: prefix overlap is usually a latent config defect, and
// longest-match keeps the more specific zone reachable instead of depending
// on registration order.
type Resolver struct {
	zones []*zone.Zone // sorted by descending prefix length
}

// New builds a resolver over the registry's zones.
func New(registry *zone.Registry) *Resolver {
	zones := append([]*zone.Zone(nil), registry.Zones()...)
	sort.SliceStable(zones, func(i, j int) bool {
		return len(zones[i].BaseURL) > len(zones[j].BaseURL)
	})
	return &Resolver{zones: zones}
}

// Resolve maps url to a zone and doc. The boolean result is false when no
// zone prefix matches or the remainder is not a registered permalink; this is
// an expected outcome, not an error.
func (r *Resolver) Resolve(url string) (Match, bool) {
	path := normalizePath(url)
	for _, z := range r.zones {
		remainder, ok := trimZonePrefix(path, z.BaseURL)
		if !ok {
			continue
		}
		if doc, found := z.Nav.Lookup(remainder); found {
			return Match{Zone: z, Doc: doc}, true
		}
	}
	return Match{}, false
}

// normalizePath strips the query string, fragment, and trailing slash.
func normalizePath(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		url = url[:idx]
	}
	if url != "/" {
		url = strings.TrimSuffix(url, "/")
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return url
}

// trimZonePrefix returns the permalink remainder of path under base. A match
// requires a path-segment boundary: /referenced must not match zone /ref.
func trimZonePrefix(path, base string) (string, bool) {
	if base == "/" {
		return strings.TrimPrefix(path, "/"), true
	}
	if !strings.HasPrefix(path, base) {
		return "", false
	}
	rest := path[len(base):]
	if rest == "" {
		return "", true
	}
	if rest[0] != '/' {
		return "", false
	}
	return rest[1:], true
}
