package stream

import "time"

// Config holds streaming and liveness timing configuration.
type Config struct {
	// PollInterval is the multiplexer's sleep between empty polls.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// HeartbeatInterval is the idle gap after which a heartbeat is synthesized.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" mapstructure:"heartbeat_interval"`
	// PingInterval is the liveness monitor's ping period.
	PingInterval time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
	// MaxNoPong is the silence window after which degraded connectivity
	// is reported. Informational only; never terminates the session.
	MaxNoPong time.Duration `yaml:"max_no_pong" mapstructure:"max_no_pong"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 150 * time.Millisecond
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.MaxNoPong <= 0 {
		c.MaxNoPong = 60 * time.Second
	}
}
