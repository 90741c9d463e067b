// Package http provides the API server, its routing, and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	capabilityHTTP "github.com/biodidseq/bioseq/internal/capability/http"
	identityHTTP "github.com/biodidseq/bioseq/internal/identity/http"
)

// RouterConfig holds the routing-level options for the API server.
type RouterConfig struct {
	// MetricsMiddleware records per-request metrics when non-nil.
	MetricsMiddleware gin.HandlerFunc

	// CORSEnabled turns on CORS handling for the configured origins.
	CORSEnabled      bool
	CORSAllowOrigins string

	// RateLimitEnabled turns on per-user rate limiting of authenticated
	// routes.
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
}

// Server is the API HTTP server.
type Server struct {
	db            *sql.DB
	logger        *slog.Logger
	router        *gin.Engine
	server        *http.Server
	stopRateLimit context.CancelFunc
}

// NewServer creates a new API server. The router starts empty; call
// SetupRouter to register middleware and routes before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin engine with all middleware and routes.
//
// Document and token reads are public. Every mutating route runs behind the
// user identity middleware, and behind the per-user rate limiter when
// enabled.
func (s *Server) SetupRouter(
	cfg RouterConfig,
	documentHandler *identityHTTP.DocumentHandler,
	tokenHandler *capabilityHTTP.TokenHandler,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Middleware chain for routes that act on behalf of a user.
	authenticated := []gin.HandlerFunc{UserIdentityMiddleware(s.logger)}
	if cfg.RateLimitEnabled {
		rlCtx, cancel := context.WithCancel(context.Background())
		s.stopRateLimit = cancel
		authenticated = append(
			authenticated,
			RateLimitMiddleware(rlCtx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger),
		)
	}

	didGroup := router.Group("/api/did")
	{
		didGroup.GET("/:did", documentHandler.GetHandler)
		didGroup.GET("/resolve/:did", documentHandler.ResolveHandler)
		didGroup.POST("", append(chain(authenticated), documentHandler.CreateHandler)...)
		didGroup.PUT("/:did", append(chain(authenticated), documentHandler.UpdateHandler)...)
		didGroup.POST("/:did/dataverse", append(chain(authenticated), documentHandler.LinkDataverseHandler)...)
	}

	ucanGroup := router.Group("/api/ucan")
	{
		ucanGroup.POST("/validate", tokenHandler.ValidateHandler)
		ucanGroup.POST("/issue", append(chain(authenticated), tokenHandler.IssueHandler)...)
		ucanGroup.POST("/revoke", append(chain(authenticated), tokenHandler.RevokeHandler)...)
		ucanGroup.POST("/delegate", append(chain(authenticated), tokenHandler.DelegateHandler)...)
	}

	s.router = router
}

// chain copies a middleware slice so per-route appends don't alias the
// shared backing array.
func chain(middlewares []gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, len(middlewares))
	copy(out, middlewares)
	return out
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured: call SetupRouter before Start")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.stopRateLimit != nil {
		s.stopRateLimit()
	}
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The
// database is the only hard dependency checked; the content store is opened
// lazily and verified on first use.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(pingCtx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
