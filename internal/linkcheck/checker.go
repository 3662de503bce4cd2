package linkcheck

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/resolve"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

// Issue is one broken or suspect link.
type Issue struct {
	Zone        string
	Permalink   string
	Destination string
	Reason      string
}

// Report summarizes a link audit.
type Report struct {
	DocsChecked  int
	LinksChecked int
	Issues       []Issue
}

// Checker audits every document of every zone.
type Checker struct {
	site     *site.Site
	reader   source.Reader
	resolver *resolve.Resolver
	verdicts VerdictCache
	client   *http.Client
	external bool

	verdictTTL time.Duration
}

// Option customizes a Checker.
type Option func(*Checker)

// WithExternal enables network verification of external URLs.
func WithExternal(cache VerdictCache) Option {
	return func(c *Checker) {
		c.external = true
		if cache != nil {
			c.verdicts = cache
		}
	}
}

// WithHTTPClient overrides the client used for external checks.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// New builds a Checker over the site's registry.
func New(s *site.Site, reader source.Reader, opts ...Option) *Checker {
	c := &Checker{
		site:       s,
		reader:     reader,
		resolver:   resolve.New(s.Registry()),
		verdicts:   NewMemoryVerdicts(),
		client:     &http.Client{Timeout: 10 * time.Second},
		verdictTTL: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run audits all zones and returns the aggregated report. Per-document read
// or render failures become issues, not errors; the audit always completes.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	anchorCache := make(map[string]map[string]bool)

	for _, z := range c.site.Registry().Zones() {
		for _, d := range z.Nav.Docs() {
			report.DocsChecked++
			src, err := c.reader.ReadSource(ctx, z.ContentRoot, d.ContentPath)
			if err != nil {
				report.Issues = append(report.Issues, Issue{
					Zone: z.Name, Permalink: d.Permalink,
					Reason: "source unreadable: " + err.Error(),
				})
				continue
			}
			for _, link := range ExtractLinks(src) {
				report.LinksChecked++
				c.checkLink(ctx, z, d, link.Destination, anchorCache, report)
			}
		}
	}

	slog.Info("Link audit finished",
		slog.Int("docs", report.DocsChecked),
		slog.Int("links", report.LinksChecked),
		slog.Int("issues", len(report.Issues)))
	return report, nil
}

func (c *Checker) checkLink(ctx context.Context, z *zone.Zone, d *zone.Doc, dest string, anchorCache map[string]map[string]bool, report *Report) {
	switch {
	case dest == "",
		strings.HasPrefix(dest, "mailto:"),
		strings.HasPrefix(dest, "tel:"),
		strings.HasPrefix(dest, "data:"):
		return

	case strings.Contains(dest, "://"):
		if !c.external {
			return
		}
		if reason, ok := c.checkExternal(ctx, dest); !ok {
			report.Issues = append(report.Issues, Issue{
				Zone: z.Name, Permalink: d.Permalink, Destination: dest, Reason: reason,
			})
		}

	case strings.HasPrefix(dest, "#"):
		c.checkFragment(ctx, z, d, d.Permalink, dest, dest[1:], anchorCache, report)

	case strings.HasPrefix(dest, "/"):
		// Absolute site paths must resolve through the registry.
		if _, ok := c.resolver.Resolve(dest); !ok {
			report.Issues = append(report.Issues, Issue{
				Zone: z.Name, Permalink: d.Permalink, Destination: dest,
				Reason: "absolute path does not resolve to a document",
			})
		}

	default:
		// Zone-relative permalink, optionally with a fragment.
		permalink, fragment, _ := strings.Cut(dest, "#")
		target, ok := z.Nav.Lookup(permalink)
		if !ok {
			report.Issues = append(report.Issues, Issue{
				Zone: z.Name, Permalink: d.Permalink, Destination: dest,
				Reason: "permalink not registered in zone",
			})
			return
		}
		if fragment != "" {
			c.checkFragment(ctx, z, d, target.Permalink, dest, fragment, anchorCache, report)
		}
	}
}

// checkFragment renders the target document (through the cache-aware site)
// and verifies the fragment names an element id.
func (c *Checker) checkFragment(ctx context.Context, z *zone.Zone, d *zone.Doc, targetPermalink, dest, fragment string, anchorCache map[string]map[string]bool, report *Report) {
	key := z.Name + "\x00" + targetPermalink
	anchors, ok := anchorCache[key]
	if !ok {
		page, err := c.site.Render(ctx, docURL(z, targetPermalink))
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Zone: z.Name, Permalink: d.Permalink, Destination: dest,
				Reason: "fragment target failed to render: " + err.Error(),
			})
			return
		}
		anchors, err = CollectAnchors(page.HTML)
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Zone: z.Name, Permalink: d.Permalink, Destination: dest,
				Reason: "fragment target produced unparsable HTML",
			})
			return
		}
		anchorCache[key] = anchors
	}
	if !anchors[fragment] {
		report.Issues = append(report.Issues, Issue{
			Zone: z.Name, Permalink: d.Permalink, Destination: dest,
			Reason: "fragment does not match any anchor",
		})
	}
}

// checkExternal verifies an external URL, consulting the verdict cache first.
func (c *Checker) checkExternal(ctx context.Context, url string) (reason string, ok bool) {
	if v, found, err := c.verdicts.Get(ctx, url); err == nil && found &&
		time.Since(v.LastChecked) < c.verdictTTL {
		if v.OK {
			return "", true
		}
		return v.Error, false
	}

	v := &Verdict{URL: url, LastChecked: time.Now()}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		v.Error = "invalid URL: " + err.Error()
	} else {
		resp, err := c.client.Do(req)
		switch {
		case err != nil:
			v.Error = err.Error()
		case resp.StatusCode == http.StatusMethodNotAllowed:
			resp.Body.Close()
			v = c.checkExternalGet(ctx, url)
		default:
			resp.Body.Close()
			v.Status = resp.StatusCode
			v.OK = resp.StatusCode < 400
			if !v.OK {
				v.Error = resp.Status
			}
		}
	}

	if err := c.verdicts.Put(ctx, v); err != nil {
		slog.Debug("Failed to cache link verdict", logfields.URL(url), logfields.Error(err))
	}
	return v.Error, v.OK
}

// checkExternalGet retries with GET for servers that reject HEAD.
func (c *Checker) checkExternalGet(ctx context.Context, url string) *Verdict {
	v := &Verdict{URL: url, LastChecked: time.Now()}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		v.Error = "invalid URL: " + err.Error()
		return v
	}
	resp, err := c.client.Do(req)
	if err != nil {
		v.Error = err.Error()
		return v
	}
	resp.Body.Close()
	v.Status = resp.StatusCode
	v.OK = resp.StatusCode < 400
	if !v.OK {
		v.Error = resp.Status
	}
	return v
}

func docURL(z *zone.Zone, permalink string) string {
	if z.BaseURL == "/" {
		return "/" + permalink
	}
	return z.BaseURL + "/" + permalink
}
