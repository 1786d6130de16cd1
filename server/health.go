package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/menustream/component"
)

// HealthChecker returns the health of all registered components.
type HealthChecker func() []component.Health

// RegisterHealth mounts GET /health. The endpoint aggregates component
// health: any unhealthy component makes the whole response 503.
func (s *Server) RegisterHealth(check HealthChecker) {
	s.engine.GET("/health", func(c *gin.Context) {
		checks := check()

		status := component.StatusHealthy
		httpStatus := http.StatusOK
		for _, h := range checks {
			if h.Status == component.StatusUnhealthy {
				status = component.StatusUnhealthy
				httpStatus = http.StatusServiceUnavailable
				break
			}
			if h.Status == component.StatusDegraded {
				status = component.StatusDegraded
			}
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"components": checks,
		})
	})
}
