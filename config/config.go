package config

import (
	"fmt"

	"github.com/skillsenselab/menustream/fanout"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/observability"
	"github.com/skillsenselab/menustream/provider"
	"github.com/skillsenselab/menustream/server"
	"github.com/skillsenselab/menustream/storage"
	"github.com/skillsenselab/menustream/stream"
)

// Config is the root configuration for the menustream service.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Stream        stream.Config        `yaml:"stream" mapstructure:"stream"`
	Fanout        fanout.Config        `yaml:"fanout" mapstructure:"fanout"`
	Providers     provider.Config      `yaml:"providers" mapstructure:"providers"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in zero-valued fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "menustream"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Debug && c.Logging.Level == "info" {
		c.Logging.Level = "debug"
	}
	c.Server.ApplyDefaults()
	c.Stream.ApplyDefaults()
	c.Fanout.ApplyDefaults()
	c.Providers.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks all sections and returns the first failure.
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads configuration from config.yml and the environment, applies
// defaults, and validates the result.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadInto(&cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
