package menu

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/server"
	"github.com/skillsenselab/menustream/session"
)

// Handler exposes menu submission over HTTP.
type Handler struct {
	reg      *session.Registry
	pipeline *Pipeline
	log      *logger.Logger
}

// NewHandler creates the menu HTTP handler.
func NewHandler(reg *session.Registry, pipeline *Pipeline, log *logger.Logger) *Handler {
	return &Handler{
		reg:      reg,
		pipeline: pipeline,
		log:      log.WithComponent("menu-api"),
	}
}

// RegisterRoutes mounts the menu endpoints on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/menus", h.Submit)
}

// Submit validates a menu submission, creates its session, and starts the
// pipeline in the background. The caller follows progress on the stream.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid JSON body").WithCause(err))
		return
	}
	if appErr := req.Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	h.reg.Create(sessionID)

	h.log.Info("Menu submitted", map[string]interface{}{
		logger.FieldSessionID: sessionID,
		"direct_items":        len(req.Items),
		"has_image":           req.ImageData != "",
	})

	// The run outlives the request; only cancellation is detached.
	go h.pipeline.Run(context.WithoutCancel(c.Request.Context()), sessionID, req)

	c.JSON(http.StatusAccepted, gin.H{
		"session_id":  sessionID,
		"total_items": len(req.Items),
	})
}
