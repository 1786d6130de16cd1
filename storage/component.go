package storage

import (
	"context"
	"fmt"

	"github.com/skillsenselab/menustream/component"
	"github.com/skillsenselab/menustream/logger"
)

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Component wraps Storage and implements component.Component for
// lifecycle management.
type Component struct {
	storage Storage
	cfg     Config
	log     *logger.Logger
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	return &Component{
		cfg: cfg,
		log: log.WithComponent("storage"),
	}
}

// Storage returns the underlying Storage, or nil if disabled or not started.
func (c *Component) Storage() Storage { return c.storage }

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(_ context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Storage component is disabled, media uploads degrade to empty URLs")
		return nil
	}

	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

// Stop releases the storage backend.
func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health reports storage component health.
func (c *Component) Health(_ context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{
			Name:    "storage",
			Status:  component.StatusDegraded,
			Message: "disabled",
		}
	}
	if c.storage == nil {
		return component.Health{
			Name:    "storage",
			Status:  component.StatusUnhealthy,
			Message: "not initialized",
		}
	}
	return component.Health{Name: "storage", Status: component.StatusHealthy}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	details := c.cfg.BasePath
	if c.cfg.Provider == ProviderS3 {
		details = fmt.Sprintf("s3://%s (%s)", c.cfg.Bucket, c.cfg.Region)
	}
	return component.Description{
		Name:    "Media Storage",
		Type:    "storage",
		Details: details,
	}
}
