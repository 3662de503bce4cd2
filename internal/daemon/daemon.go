// Package daemon runs the site in watch mode: local content changes trigger
// debounced incremental rebuilds, and an optional cron schedule forces full
// rebuilds to pick up git-backed zones.
package daemon

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Options configure the daemon.
type Options struct {
	Debounce        time.Duration
	RebuildSchedule string // cron expression; empty disables scheduled rebuilds
}

// Daemon owns the watcher and scheduler and serializes rebuilds.
type Daemon struct {
	site    *site.Site
	builder *build.Builder
	opts    Options

	watcher   *ContentWatcher
	scheduler *Scheduler

	rebuildMu sync.Mutex
}

// New assembles a daemon over the site and builder.
func New(s *site.Site, b *build.Builder, opts Options) *Daemon {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	return &Daemon{site: s, builder: b, opts: opts}
}

// Run builds once, then watches until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.rebuild(ctx, "startup")

	roots := d.localContentRoots()
	if len(roots) > 0 {
		watcher, err := NewContentWatcher(roots, d.opts.Debounce, func(ctx context.Context) {
			d.rebuild(ctx, "content change")
		})
		if err != nil {
			return err
		}
		d.watcher = watcher
		d.watcher.Start(ctx)
		defer d.watcher.Stop()
	}

	if d.opts.RebuildSchedule != "" {
		scheduler, err := NewScheduler()
		if err != nil {
			return err
		}
		if err := scheduler.ScheduleRebuild(d.opts.RebuildSchedule, func(ctx context.Context) {
			d.rebuild(ctx, "schedule")
		}); err != nil {
			return err
		}
		d.scheduler = scheduler
		d.scheduler.Start()
		defer d.scheduler.Stop()
	}

	slog.Info("Daemon running",
		slog.Int("watched_roots", len(roots)),
		slog.String("schedule", d.opts.RebuildSchedule))
	<-ctx.Done()
	slog.Info("Daemon stopping")
	return nil
}

// rebuild runs one build pass. Changed files produce new fingerprints, so
// the render cache needs no explicit invalidation; stale entries are just
// unreferenced.
func (d *Daemon) rebuild(ctx context.Context, reason string) {
	d.rebuildMu.Lock()
	defer d.rebuildMu.Unlock()

	slog.Info("Rebuild triggered", slog.String("reason", reason))
	summary, err := d.builder.Run(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild complete",
		logfields.BuildID(summary.BuildID),
		slog.Int("built", summary.Built),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
}

// localContentRoots returns the zone roots that live on the filesystem.
func (d *Daemon) localContentRoots() []string {
	var roots []string
	for _, z := range d.site.Registry().Zones() {
		if strings.Contains(z.ContentRoot, "://") || strings.HasPrefix(z.ContentRoot, "git@") {
			continue
		}
		roots = append(roots, z.ContentRoot)
	}
	return roots
}
