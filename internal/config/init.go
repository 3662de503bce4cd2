package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Init writes an example configuration file to configPath. An existing file
// is only overwritten with force.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Config{
		Zones: []ZoneConfig{
			{
				Name:        "reference",
				BaseURL:     "/reference",
				ContentRoot: "./content/reference",
			},
			{
				Name:    "guides",
				BaseURL: "/guides",
				Git: &GitConfig{
					URL:    "https://git.example.com/docs/guides.git",
					Branch: "main",
					Token:  "${GIT_TOKEN}",
				},
			},
		},
		Output: OutputConfig{Directory: "./public", Clean: true},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to marshal example configuration").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}
