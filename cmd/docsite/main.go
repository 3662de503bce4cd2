package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/daemon"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/linkcheck"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docsite.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Render struct {
		URL string `arg:"" help:"Site URL to render (e.g. /reference/db/raw-query)"`
	} `cmd:"" help:"Render a single document to HTML on stdout"`

	Build struct {
		Output      string `short:"o" help:"Output directory (overrides config)"`
		Incremental bool   `short:"i" help:"Skip documents whose content is unchanged"`
	} `cmd:"" help:"Pre-render every document of every zone to static HTML"`

	Check struct {
		External bool `help:"Also verify external URLs over the network"`
	} `cmd:"" help:"Audit document links against zones, anchors, and the web"`

	Daemon struct {
		Metrics string `help:"Address for the Prometheus metrics endpoint (empty disables)" default:""`
	} `cmd:"" help:"Watch content and rebuild continuously"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "render <url>":
		err = runRender(CLI.Render.URL)
	case "build":
		err = runBuild(CLI.Build.Output, CLI.Build.Incremental)
	case "check":
		err = runCheck(CLI.Check.External)
	case "daemon":
		err = runDaemon(CLI.Daemon.Metrics)
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "version":
		fmt.Printf("docsite %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

// loadSite loads configuration and assembles the rendering pipeline.
func loadSite(opts ...site.Option) (*config.Config, *site.Site, source.Reader, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	reader := config.BuildReader(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	registry, err := config.LoadZones(ctx, cfg, reader)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append([]site.Option{site.WithReader(reader)}, opts...)
	return cfg, site.New(registry, opts...), reader, nil
}

func runRender(url string) error {
	_, s, _, err := loadSite()
	if err != nil {
		return err
	}

	page, err := s.Render(context.Background(), url)
	if err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			fmt.Fprintf(os.Stderr, "not found: %s\n", url)
			os.Exit(2)
		}
		return err
	}
	fmt.Println(page.HTML)
	return nil
}

func runBuild(outputDir string, incremental bool) error {
	cfg, s, reader, err := loadSite()
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}

	store, err := openManifest(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	b := build.New(s, reader, store, nil, build.Options{
		OutputDir:   outputDir,
		Workers:     cfg.Output.Workers,
		Clean:       cfg.Output.Clean && !incremental,
		Incremental: incremental,
	})
	summary, err := b.Run(context.Background())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return errors.NewError(errors.CategoryBuild, "build completed with failures").
			WithContext("failed", summary.Failed).Build()
	}
	return nil
}

func runCheck(external bool) error {
	cfg, s, reader, err := loadSite()
	if err != nil {
		return err
	}

	var opts []linkcheck.Option
	if external {
		var verdicts linkcheck.VerdictCache
		if cfg.LinkCheck.NATSURL != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			nv, err := linkcheck.NewNATSVerdicts(ctx, cfg.LinkCheck.NATSURL, cfg.LinkCheck.Bucket)
			cancel()
			if err != nil {
				slog.Warn("Verdict cache unavailable, using in-memory cache", logfields.Error(err))
			} else {
				defer nv.Close()
				verdicts = nv
			}
		}
		opts = append(opts, linkcheck.WithExternal(verdicts))
	}

	report, err := linkcheck.New(s, reader, opts...).Run(context.Background())
	if err != nil {
		return err
	}
	for _, issue := range report.Issues {
		fmt.Printf("%s/%s: %s (%s)\n", issue.Zone, issue.Permalink, issue.Destination, issue.Reason)
	}
	if len(report.Issues) > 0 {
		os.Exit(1)
	}
	fmt.Printf("checked %d links across %d documents, no issues\n", report.LinksChecked, report.DocsChecked)
	return nil
}

func runDaemon(metricsAddr string) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if metricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		go serveMetrics(metricsAddr, reg)
	}

	cfg, s, reader, err := loadSite(site.WithRecorder(recorder))
	if err != nil {
		return err
	}

	store, err := openManifest(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	b := build.New(s, reader, store, recorder, build.Options{
		OutputDir:   cfg.Output.Directory,
		Workers:     cfg.Output.Workers,
		Incremental: true,
	})
	d := daemon.New(s, b, daemon.Options{
		Debounce:        time.Duration(cfg.Daemon.DebounceMS) * time.Millisecond,
		RebuildSchedule: cfg.Daemon.RebuildSchedule,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return d.Run(ctx)
}

func openManifest(cfg *config.Config) (*manifest.Store, error) {
	if dir := filepath.Dir(cfg.Output.Manifest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create manifest directory").
				WithContext("path", dir).Build()
		}
	}
	return manifest.Open(cfg.Output.Manifest)
}

func serveMetrics(addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics server stopped", logfields.Error(err))
	}
}
