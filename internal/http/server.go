// Package http provides the operational HTTP servers: health and readiness
// probes for the service process and the Prometheus metrics endpoint.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// readinessTimeout bounds the database and Redis pings on /ready so a hung
// dependency cannot stall the probe past the orchestrator's own deadline.
const readinessTimeout = 5 * time.Second

// ServerConfig holds the listen address and CORS settings for the
// operational HTTP server.
type ServerConfig struct {
	Host             string
	Port             int
	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server serves the health and readiness endpoints. Readiness reports on the
// database and Redis so the process is only routable once both dependencies
// answer.
type Server struct {
	config            ServerConfig
	db                *sql.DB
	redis             redis.UniversalClient
	metricsMiddleware gin.HandlerFunc
	logger            *slog.Logger
	router            *gin.Engine
	server            *http.Server
}

// NewServer creates the operational HTTP server. The metrics middleware is
// optional; when nil, probe traffic is not instrumented.
func NewServer(
	config ServerConfig,
	db *sql.DB,
	redisClient redis.UniversalClient,
	metricsMiddleware gin.HandlerFunc,
	logger *slog.Logger,
) *Server {
	return &Server{
		config:            config,
		db:                db,
		redis:             redisClient,
		metricsMiddleware: metricsMiddleware,
		logger:            logger,
	}
}

// setupRouter builds the Gin router with recovery, request-id tagging,
// structured logging, and the optional metrics and CORS middleware.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.metricsMiddleware != nil {
		router.Use(s.metricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(s.config.CORSEnabled, s.config.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings the database and Redis and reports per-component
// state. Returns 503 until every component answers.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness database ping failed", slog.Any("error", err))
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if s.redis == nil {
		components["redis"] = "error"
		ready = false
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		s.logger.Warn("readiness redis ping failed", slog.Any("error", err))
		components["redis"] = "error"
		ready = false
	} else {
		components["redis"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		s.router = s.setupRouter()
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
