package server

import (
	"context"
	"fmt"

	"github.com/skillsenselab/menustream/component"
)

// ServerComponent adapts Server to the component lifecycle.
type ServerComponent struct {
	server *Server
}

// NewComponent wraps a server for registration in the component registry.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

func (c *ServerComponent) Name() string { return "http-server" }

func (c *ServerComponent) Start(ctx context.Context) error {
	return c.server.Start(ctx)
}

func (c *ServerComponent) Stop(ctx context.Context) error {
	return c.server.Stop(ctx)
}

func (c *ServerComponent) Health(ctx context.Context) component.Health {
	if c.server.listener == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "not listening",
		}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("listening on %s", c.server.Addr()),
	}
}

func (c *ServerComponent) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("gin + h2c on %s:%d", c.server.cfg.Host, c.server.cfg.Port),
		Port:    c.server.cfg.Port,
	}
}
