package provider

import (
	"time"

	"github.com/skillsenselab/menustream/resilience"
)

// Config holds collaborator configuration. Stages without an endpoint get
// no processor: categorize quietly skips, while fan-out stages report the
// absence as item failures.
type Config struct {
	// Endpoints maps stage name (ocr, categorize, translate, describe,
	// image) to its collaborator URL.
	Endpoints map[string]string `yaml:"endpoints" mapstructure:"endpoints"`
	// Timeout bounds each collaborator HTTP call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Retry is the single retry policy applied at the collaborator boundary.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = resilience.DefaultRetryConfig()
	}
}
