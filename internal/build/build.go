// Package build pre-renders every document in every zone to static HTML
// files, with a bounded worker pool and per-document failure isolation. An
// incremental build skips documents whose content fingerprint matches the
// manifest from the previous run.
package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/rendercache"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

// Outcome classifies one document's build result.
type Outcome string

const (
	OutcomeBuilt   Outcome = "built"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// DocResult is the per-document build record.
type DocResult struct {
	Zone       string
	Permalink  string
	Outcome    Outcome
	OutputPath string
	Err        error
}

// Summary aggregates one build run.
type Summary struct {
	BuildID  string
	Built    int
	Skipped  int
	Failed   int
	Duration time.Duration
	Results  []DocResult
}

// Options control a build run.
type Options struct {
	OutputDir   string
	Workers     int
	Clean       bool
	Incremental bool
}

// Builder walks the zone registry and writes one HTML file per document.
type Builder struct {
	site     *site.Site
	reader   source.Reader
	store    *manifest.Store
	recorder metrics.Recorder
	opts     Options
}

// New constructs a Builder. store may be nil, which disables incremental
// skipping; recorder may be nil for no metrics.
func New(s *site.Site, reader source.Reader, store *manifest.Store, recorder metrics.Recorder, opts Options) *Builder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Builder{site: s, reader: reader, store: store, recorder: recorder, opts: opts}
}

type job struct {
	zone *zone.Zone
	doc  *zone.Doc
}

// Run executes the build. A document that fails to render is recorded and
// skipped; only infrastructure failures (output directory, manifest) abort
// the run.
func (b *Builder) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	buildID := uuid.NewString()
	log := slog.With(logfields.BuildID(buildID))

	if b.opts.Clean {
		if err := os.RemoveAll(b.opts.OutputDir); err != nil {
			return nil, errors.WrapError(err, errors.CategoryBuild, "failed to clean output directory").
				WithContext("path", b.opts.OutputDir).Build()
		}
	}
	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryBuild, "failed to create output directory").
			WithContext("path", b.opts.OutputDir).Build()
	}

	var jobs []job
	for _, z := range b.site.Registry().Zones() {
		for _, d := range z.Nav.Docs() {
			jobs = append(jobs, job{zone: z, doc: d})
		}
	}
	log.Info("Build started",
		slog.Int("docs", len(jobs)),
		slog.Int("workers", b.opts.Workers),
		slog.Bool("incremental", b.opts.Incremental))

	jobCh := make(chan job)
	resultCh := make(chan DocResult)
	var wg sync.WaitGroup
	for i := 0; i < b.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				resultCh <- b.buildDoc(ctx, j)
			}
		}()
	}
	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	summary := &Summary{BuildID: buildID}
	for r := range resultCh {
		summary.Results = append(summary.Results, r)
		switch r.Outcome {
		case OutcomeBuilt:
			summary.Built++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
			log.Warn("Document build failed",
				logfields.Zone(r.Zone),
				logfields.Permalink(r.Permalink),
				logfields.Error(r.Err))
		}
		b.recorder.IncBuildDocOutcome(string(r.Outcome))
	}

	if b.store != nil {
		for _, z := range b.site.Registry().Zones() {
			keep := make(map[string]bool, z.Nav.Len())
			for _, d := range z.Nav.Docs() {
				keep[d.Permalink] = true
			}
			if err := b.store.Prune(ctx, z.Name, keep); err != nil {
				return nil, err
			}
		}
	}

	summary.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(summary.Duration)
	log.Info("Build finished",
		slog.Int("built", summary.Built),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		logfields.DurationMS(float64(summary.Duration.Microseconds())/1000))
	return summary, nil
}

// buildDoc renders one document and writes its HTML file. Every failure is
// folded into the DocResult so one bad page never stops the batch.
func (b *Builder) buildDoc(ctx context.Context, j job) DocResult {
	res := DocResult{Zone: j.zone.Name, Permalink: j.doc.Permalink}

	src, err := b.reader.ReadSource(ctx, j.zone.ContentRoot, j.doc.ContentPath)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	fp := rendercache.Compute(j.zone.Name, j.doc.ContentPath, src)

	outPath := b.outputPath(j)
	if b.opts.Incremental && b.store != nil {
		prev, found, err := b.store.Fingerprint(ctx, j.zone.Name, j.doc.Permalink)
		if err == nil && found && prev == string(fp) {
			if _, statErr := os.Stat(outPath); statErr == nil {
				res.Outcome = OutcomeSkipped
				res.OutputPath = outPath
				return res
			}
		}
	}

	page, err := b.site.Render(ctx, docURL(j.zone, j.doc))
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.WrapError(err, errors.CategoryBuild, "failed to create output subdirectory").Build()
		return res
	}
	if err := os.WriteFile(outPath, []byte(page.HTML), 0o644); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.WrapError(err, errors.CategoryBuild, "failed to write output file").
			WithContext("path", outPath).Build()
		return res
	}

	if b.store != nil {
		if err := b.store.Record(ctx, j.zone.Name, j.doc.Permalink, string(page.Fingerprint), outPath); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
			return res
		}
	}

	res.Outcome = OutcomeBuilt
	res.OutputPath = outPath
	return res
}

func (b *Builder) outputPath(j job) string {
	return filepath.Join(b.opts.OutputDir, j.zone.Name, filepath.FromSlash(j.doc.Permalink)+".html")
}

// docURL reconstructs the public URL a doc is served under.
func docURL(z *zone.Zone, d *zone.Doc) string {
	if z.BaseURL == "/" {
		return "/" + d.Permalink
	}
	return z.BaseURL + "/" + d.Permalink
}
