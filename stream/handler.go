package stream

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/menustream/errors"
	"github.com/skillsenselab/menustream/logger"
	"github.com/skillsenselab/menustream/server"
	"github.com/skillsenselab/menustream/session"
)

// Handler binds the streaming subsystem to the HTTP surface.
type Handler struct {
	reg *session.Registry
	b   *session.Broadcaster
	mux *Multiplexer
	log *logger.Logger
}

// NewHandler creates the streaming HTTP handler.
func NewHandler(reg *session.Registry, b *session.Broadcaster, mux *Multiplexer, log *logger.Logger) *Handler {
	return &Handler{
		reg: reg,
		b:   b,
		mux: mux,
		log: log.WithComponent("stream-api"),
	}
}

// RegisterRoutes mounts the streaming endpoints on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/progress/:session_id", h.Progress)
	r.POST("/pong/:session_id", h.Pong)
	r.GET("/sessions/:session_id", h.SessionInfo)
	r.DELETE("/sessions/:session_id", h.DeleteSession)
}

// Progress opens the SSE stream for a session. An unknown session gets an
// immediate 404 instead of a stream that hangs forever.
func (h *Handler) Progress(c *gin.Context) {
	sessionID := c.Param("session_id")
	if !h.reg.Exists(sessionID) {
		server.RespondWithError(c, apperrors.NotFound("session", sessionID))
		return
	}
	h.mux.Serve(c.Writer, c.Request, sessionID)
}

// Pong records a client liveness acknowledgment.
func (h *Handler) Pong(c *gin.Context) {
	sessionID := c.Param("session_id")
	if !h.b.HandlePong(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":     "session_not_found",
			"session_id": sessionID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "pong_received",
		"session_id": sessionID,
	})
}

// SessionInfo returns a point-in-time snapshot of session state.
func (h *Handler) SessionInfo(c *gin.Context) {
	sessionID := c.Param("session_id")
	sess, ok := h.reg.Get(sessionID)
	if !ok {
		server.RespondWithError(c, apperrors.NotFound("session", sessionID))
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// DeleteSession tears a session down. Any open stream observes the absence
// on its next poll and closes; late worker results are dropped. Idempotent.
func (h *Handler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	h.reg.Delete(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"status":     "deleted",
		"session_id": sessionID,
	})
}
