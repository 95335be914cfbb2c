// Package api provides the HTTP router of the deskmatter local service.
// It implements the data API on the Gin framework.
//
// Example usage:
//
//	st := state.New(store)
//	router := api.NewRouter(st, api.Options{Flasher: flasher})
//	srv := &http.Server{Handler: router}
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deskmatter/internal/api/types"
	v1 "deskmatter/internal/api/v1"
	"deskmatter/internal/api/v1/flash"
	"deskmatter/internal/calendar"
	"deskmatter/internal/metrics"
	"deskmatter/internal/state"
)

// ServerStatus reports the listener state for /health.
type ServerStatus interface {
	Port() int
	Running() bool
}

// EngineStatus reports the background engine state for /health.
type EngineStatus interface {
	IsRunning() bool
	JobCount() int
}

// Options are the optional collaborators of the router. Nil fields disable
// the matching routes or health components.
type Options struct {
	Metrics  *metrics.Metrics
	Flasher  flash.Controller
	Calendar calendar.EventSource
	Status   ServerStatus
	Engine   EngineStatus
}

// NewRouter builds the Gin engine bound to st.
//
// Parameters:
//   - st: Shared state guarding the store
//   - opts: Optional collaborators
//
// Returns:
//   - *gin.Engine: Router ready to be served
func NewRouter(st *state.State, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true

	setupMiddleware(router, opts.Metrics)
	setupRoutes(router, st, opts)

	return router
}

// setupMiddleware configures middleware for the Gin router.
func setupMiddleware(router *gin.Engine, m *metrics.Metrics) {
	// Request ID middleware (should be first)
	router.Use(RequestID())

	// Custom logger middleware
	router.Use(LoggerMiddleware())

	// Metrics by route template
	router.Use(MetricsMiddleware(m))

	// Custom panic recovery middleware
	router.Use(PanicRecovery())
}

// setupRoutes configures API routes.
func setupRoutes(router *gin.Engine, st *state.State, opts Options) {
	baseHandler := NewHandler(st, opts)

	// Base endpoints
	router.GET("/ping", baseHandler.Ping)
	router.GET("/health", baseHandler.Health)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Data routes are served from the root to match the desktop client
	v1.SetupRoutes(&router.RouterGroup, st, opts.Flasher, opts.Calendar)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.Failure(http.StatusNotFound, "route not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, types.Failure(http.StatusBadRequest, "method not allowed"))
	})
}
