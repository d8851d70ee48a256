// Package config loads the façade's construction parameters from a
// YAML file: the schema registry location, the store connection
// string, the stream label, and the magnitude-derivation placeholder.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lsst-broker/alertworker/enrich"
)

// Config is the on-disk shape consumed by cmd/alertworker.
type Config struct {
	Stream string `yaml:"stream"`

	Registry struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"registry"`

	Store struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"store"`

	Magnitude struct {
		MissingScienceFluxNanojansky float32 `yaml:"missing_science_flux_nanojansky"`
	} `yaml:"magnitude"`

	Crossmatch struct {
		Catalogs []string `yaml:"catalogs"`
	} `yaml:"crossmatch"`
}

// Load reads and parses the YAML file at path, then validates it.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Valid(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Valid fills in unset defaults and rejects a configuration missing a
// required field.
func (c *Config) Valid() error {
	if c.Stream == "" {
		return errors.New("config: stream must not be empty")
	}
	if c.Registry.BaseURL == "" {
		return errors.New("config: registry.base_url must not be empty")
	}
	if c.Store.URI == "" {
		return errors.New("config: store.uri must not be empty")
	}
	if c.Store.Database == "" {
		return errors.New("config: store.database must not be empty")
	}
	if c.Magnitude.MissingScienceFluxNanojansky == 0 {
		c.Magnitude.MissingScienceFluxNanojansky = enrich.DefaultMagnitudeConfig().MissingScienceFluxNanojansky
	}
	return nil
}

// MagnitudeConfig projects the parsed magnitude section onto
// enrich.MagnitudeConfig.
func (c Config) MagnitudeConfig() enrich.MagnitudeConfig {
	return enrich.MagnitudeConfig{MissingScienceFluxNanojansky: c.Magnitude.MissingScienceFluxNanojansky}
}
