// Package config loads the site configuration: the zone list plus build and
// daemon settings. Configuration problems are the only errors allowed to
// halt the process, so everything here fails fast and fatal.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Config is the root configuration, normally loaded from docsite.yaml.
type Config struct {
	Zones     []ZoneConfig    `yaml:"zones"`
	Output    OutputConfig    `yaml:"output"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	LinkCheck LinkCheckConfig `yaml:"linkcheck"`

	// WorkspaceDir holds git checkouts for git-backed zones.
	WorkspaceDir string `yaml:"workspace_dir"`
}

// ZoneConfig declares one content zone.
type ZoneConfig struct {
	Name        string     `yaml:"name"`
	BaseURL     string     `yaml:"base_url"`
	ContentRoot string     `yaml:"content_root"`
	Menu        string     `yaml:"menu,omitempty"` // path relative to content root; defaults to menu.json
	Git         *GitConfig `yaml:"git,omitempty"`
}

// GitConfig marks a zone's content root as a git repository to clone.
type GitConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Token  string `yaml:"token,omitempty"`
}

// OutputConfig controls the batch pre-render target.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
	Workers   int    `yaml:"workers,omitempty"`
	Manifest  string `yaml:"manifest,omitempty"` // sqlite manifest path for incremental builds
}

// DaemonConfig controls watch-and-rebuild mode.
type DaemonConfig struct {
	DebounceMS      int    `yaml:"debounce_ms,omitempty"`
	RebuildSchedule string `yaml:"rebuild_schedule,omitempty"` // cron expression; empty disables
}

// LinkCheckConfig controls the link verifier.
type LinkCheckConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"` // empty disables the shared verdict cache
	Bucket  string `yaml:"bucket,omitempty"`
}

// Load reads and validates configuration from configPath. Environment
// variables referenced as ${VAR} in the file are expanded; a .env or
// .env.local file next to the process is loaded first when present.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration file").
			Fatal().WithContext("path", configPath).Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "malformed configuration file").
			Fatal().WithContext("path", configPath).Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads .env files without overriding the process environment.
// Missing files are not an error.
func loadDotEnv() {
	for _, path := range []string{".env", ".env.local"} {
		_ = godotenv.Load(path)
	}
}

func (c *Config) applyDefaults() {
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = ".docsite/workspace"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
	}
	if c.Output.Workers <= 0 {
		c.Output.Workers = 4
	}
	if c.Output.Manifest == "" {
		c.Output.Manifest = ".docsite/manifest.db"
	}
	if c.Daemon.DebounceMS <= 0 {
		c.Daemon.DebounceMS = 250
	}
	if c.LinkCheck.Bucket == "" {
		c.LinkCheck.Bucket = "docsite-links"
	}
	for i := range c.Zones {
		z := &c.Zones[i]
		if z.Menu == "" {
			z.Menu = "menu.json"
		}
		if z.Git != nil && z.Git.Branch == "" {
			z.Git.Branch = "main"
		}
	}
}

// Validate checks structural requirements. Errors are fatal by contract.
func (c *Config) Validate() error {
	if len(c.Zones) == 0 {
		return errors.ConfigError("no zones configured").Build()
	}
	for i := range c.Zones {
		z := &c.Zones[i]
		if z.Name == "" {
			return errors.ConfigError("zone is missing a name").WithContext("index", i).Build()
		}
		if z.BaseURL == "" {
			return errors.ConfigError("zone is missing a base_url").WithContext("zone", z.Name).Build()
		}
		if z.ContentRoot == "" && z.Git == nil {
			return errors.ConfigError("zone needs a content_root or a git block").
				WithContext("zone", z.Name).Build()
		}
		if z.Git != nil && z.Git.URL == "" {
			return errors.ConfigError("zone git block is missing a url").
				WithContext("zone", z.Name).Build()
		}
	}
	return nil
}
