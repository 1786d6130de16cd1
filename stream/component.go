package stream

import (
	"context"
	"fmt"

	"github.com/skillsenselab/menustream/component"
	"github.com/skillsenselab/menustream/session"
)

const componentName = "stream"

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Component wraps the streaming subsystem to implement component.Component.
// The subsystem itself is passive (streams are opened per-request), so the
// lifecycle hooks mostly exist for health reporting and a clean shutdown log.
type Component struct {
	reg *session.Registry
	cfg Config
}

// NewComponent returns a component.Component over the streaming subsystem.
func NewComponent(reg *session.Registry, cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{reg: reg, cfg: cfg}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start is a no-op; streams are opened per-request.
func (c *Component) Start(ctx context.Context) error { return nil }

// Stop is a no-op; open streams close with the HTTP server's shutdown.
func (c *Component) Stop(ctx context.Context) error { return nil }

// Health reports the number of live sessions.
func (c *Component) Health(ctx context.Context) component.Health {
	return component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d active sessions", c.reg.Count()),
	}
}

// Describe returns summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name: "SSE Streaming",
		Type: "stream",
		Details: fmt.Sprintf("poll=%s heartbeat=%s ping=%s",
			c.cfg.PollInterval, c.cfg.HeartbeatInterval, c.cfg.PingInterval),
	}
}
