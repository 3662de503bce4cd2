// Package site orchestrates the full URL-to-HTML pipeline: resolution,
// source reading, parsing, rendering, and caching. It is the single entry
// point callers use to turn an incoming URL into a compiled page.
package site

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/highlight"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/rendercache"
	"git.home.luguber.info/inful/docsite/internal/resolve"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

// Site wires the pipeline stages over an immutable zone registry. All
// per-request failures come back as classified errors; nothing a single
// document does can halt the process.
type Site struct {
	registry *zone.Registry
	resolver *resolve.Resolver
	cache    *rendercache.Cache
	parser   *markdown.Parser
	renderer *render.Renderer
	reader   source.Reader
	recorder metrics.Recorder
}

// Option customizes Site construction.
type Option func(*Site)

// WithReader overrides the content source (default: local filesystem).
func WithReader(r source.Reader) Option {
	return func(s *Site) { s.reader = r }
}

// WithRecorder attaches a metrics recorder (default: no-op).
func WithRecorder(rec metrics.Recorder) Option {
	return func(s *Site) { s.recorder = rec }
}

// WithHighlighter overrides the code highlighter used by the renderer.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(s *Site) { s.renderer = render.New(h) }
}

// New builds a Site over the given registry.
func New(registry *zone.Registry, opts ...Option) *Site {
	s := &Site{
		registry: registry,
		resolver: resolve.New(registry),
		cache:    rendercache.New(),
		parser:   markdown.New(),
		renderer: render.New(nil),
		reader:   source.NewFSReader(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the zone registry the site serves.
func (s *Site) Registry() *zone.Registry { return s.registry }

// Cache exposes the render cache for invalidation by the daemon.
func (s *Site) Cache() *rendercache.Cache { return s.cache }

// Render resolves url and returns the compiled page for its document,
// serving from cache when the content has not changed. Every error return
// is classified: not_found for unresolvable URLs and missing files, parse
// for malformed Markdown, render for renderer failures.
func (s *Site) Render(ctx context.Context, url string) (*rendercache.Page, error) {
	start := time.Now()

	match, ok := s.resolver.Resolve(url)
	if !ok {
		s.recorder.IncRenderResult("unknown", metrics.ResultNotFound)
		return nil, errors.NotFoundError("no document registered for URL").
			WithContext("url", url).Build()
	}
	zoneName := match.Zone.Name

	src, err := s.reader.ReadSource(ctx, match.Zone.ContentRoot, match.Doc.ContentPath)
	if err != nil {
		s.recorder.IncRenderResult(zoneName, resultFor(err))
		slog.Warn("Failed to read document source",
			logfields.Zone(zoneName),
			logfields.ContentPath(match.Doc.ContentPath),
			logfields.Error(err))
		return nil, err
	}

	fp := rendercache.Compute(zoneName, match.Doc.ContentPath, src)
	page, hit, err := s.cache.GetOrRender(fp, func() (*rendercache.Page, error) {
		return s.compile(match, src, fp)
	})
	if hit {
		s.recorder.IncCacheHit(zoneName)
	} else {
		s.recorder.IncCacheMiss(zoneName)
	}
	if err != nil {
		s.recorder.IncRenderResult(zoneName, resultFor(err))
		return nil, err
	}

	elapsed := time.Since(start)
	s.recorder.ObserveRenderDuration(zoneName, elapsed)
	s.recorder.IncRenderResult(zoneName, metrics.ResultSuccess)
	s.recorder.IncRenderWarnings(zoneName, len(page.Warnings))

	slog.Debug("Rendered document",
		logfields.Zone(zoneName),
		logfields.Permalink(match.Doc.Permalink),
		logfields.Fingerprint(fp.Short()),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		logfields.WarningCount(len(page.Warnings)),
		slog.Bool("cache_hit", hit))
	return page, nil
}

// compile parses and renders one document. Called under the cache's
// per-fingerprint gate, so at most one compile per content version runs.
func (s *Site) compile(match resolve.Match, src []byte, fp rendercache.Fingerprint) (*rendercache.Page, error) {
	doc, err := s.parser.Parse(string(src))
	if err != nil {
		return nil, classifyParseError(err, match)
	}

	rctx := render.NewContext(match.Zone, match.Doc)
	html, err := s.renderer.Render(doc, rctx)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render document").
			WithContext("zone", match.Zone.Name).
			WithContext("permalink", match.Doc.Permalink).Build()
	}

	for _, w := range rctx.Warnings() {
		slog.Warn("Render degradation",
			logfields.Zone(match.Zone.Name),
			logfields.Permalink(match.Doc.Permalink),
			slog.String("message", w.Message),
			slog.Int("line", w.Pos.Line))
	}

	return &rendercache.Page{
		HTML:        html,
		TOC:         rctx.TOC(),
		Warnings:    rctx.Warnings(),
		Fingerprint: fp,
	}, nil
}

// classifyParseError lifts the parser's positioned error into a classified
// error carrying the document identity and source position.
func classifyParseError(err error, match resolve.Match) error {
	b := errors.WrapError(err, errors.CategoryParse, "failed to parse document").
		WithContext("zone", match.Zone.Name).
		WithContext("content_path", match.Doc.ContentPath)
	var pe *markdown.ParseError
	if stderrors.As(err, &pe) {
		b = b.WithContext("line", pe.Line).WithContext("column", pe.Column)
	}
	return b.Build()
}

// resultFor maps a classified error to its metrics result label.
func resultFor(err error) metrics.ResultLabel {
	switch errors.CategoryOf(err) {
	case errors.CategoryNotFound:
		return metrics.ResultNotFound
	case errors.CategoryParse:
		return metrics.ResultParse
	case errors.CategoryRender:
		return metrics.ResultRender
	default:
		return metrics.ResultSource
	}
}
