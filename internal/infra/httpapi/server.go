package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server wraps the gin engine and the http.Server lifecycle.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger *logrus.Logger
}

// NewServer builds the router with all routes registered.
func NewServer(
	addr string,
	environment string,
	tracking *TrackingHandler,
	admin *AdminHandler,
	logger *logrus.Logger,
) *Server {
	if environment == "production" || environment == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Unauthenticated tracking surface, hit by third-party mail clients.
	engine.GET("/t/:id", tracking.HandlePixel)
	engine.POST("/webhook/reply", tracking.HandleReply)
	engine.POST("/webhook/bounce", tracking.HandleBounce)

	admin.Register(engine.Group("/api"))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
	}
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	s.logger.WithField("addr", s.srv.Addr).Info("http server listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
