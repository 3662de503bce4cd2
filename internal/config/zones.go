package config

import (
	"context"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/zone"
)

// BuildReader constructs the content reader for this configuration: a
// filesystem reader routed through a git reader when any zone is git-backed.
func BuildReader(cfg *Config) source.Reader {
	var specs []source.GitSpec
	for i := range cfg.Zones {
		if g := cfg.Zones[i].Git; g != nil {
			specs = append(specs, source.GitSpec{URL: g.URL, Branch: g.Branch, Token: g.Token})
		}
	}
	if len(specs) == 0 {
		return source.NewFSReader()
	}
	return source.NewRouter(source.NewGitReader(cfg.WorkspaceDir, specs...))
}

// LoadZones reads each zone's menu through the given reader and assembles
// the validated registry. For git-backed zones this triggers the initial
// clone, so startup fails loudly when a content repository is unreachable.
func LoadZones(ctx context.Context, cfg *Config, reader source.Reader) (*zone.Registry, error) {
	zones := make([]*zone.Zone, 0, len(cfg.Zones))
	for i := range cfg.Zones {
		zc := &cfg.Zones[i]
		contentRoot := zc.ContentRoot
		if zc.Git != nil {
			contentRoot = zc.Git.URL
		}

		menuData, err := reader.ReadSource(ctx, contentRoot, zc.Menu)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read zone menu").
				Fatal().
				WithContext("zone", zc.Name).
				WithContext("menu", zc.Menu).Build()
		}
		nav, err := zone.ParseMenu(menuData)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid zone menu").
				Fatal().WithContext("zone", zc.Name).Build()
		}

		zones = append(zones, &zone.Zone{
			Name:        zc.Name,
			BaseURL:     zc.BaseURL,
			ContentRoot: contentRoot,
			Nav:         nav,
		})
	}
	return zone.NewRegistry(zones...)
}
