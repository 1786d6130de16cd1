package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/skillsenselab/menustream/logger"
)

// Server wraps an HTTP server with a Gin engine and h2c support so that
// SSE streams work over both HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	cfg        Config
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	log        *logger.Logger
}

// New creates a server from configuration. Routes are registered on the
// engine before Start is called.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(Recovery())
	engine.Use(RequestID())
	engine.Use(CORS(cfg.CORS))
	engine.Use(RequestLogger(log))

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	return &Server{
		cfg:    cfg,
		engine: engine,
		log:    log.WithComponent("server"),
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Addr returns the actual listen address. Useful when Port is 0.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Start binds the listener and begins serving in a background goroutine.
// Binding synchronously surfaces port conflicts at startup instead of in
// the serve goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln

	go func() {
		s.log.Info("HTTP server listening", map[string]interface{}{
			"addr": ln.Addr().String(),
		})
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server stopped unexpectedly", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()
	return nil
}

// Stop gracefully shuts the server down, waiting up to 5s for in-flight
// requests. Open SSE streams observe the shutdown through their request
// context and close themselves.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
