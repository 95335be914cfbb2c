// Package api provides public endpoints for service health and connectivity.
//
// These endpoints are lightweight so the desktop client can poll them to
// decide whether the local service is up.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-sqlite3"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// Version is reported by /health; set by the command line at startup.
var Version = "dev"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	Uptime     string          `json:"uptime"`
	Version    string          `json:"version"`
	Components HealthComponent `json:"components"`
}

// HealthComponent groups the per-subsystem reports.
type HealthComponent struct {
	Database DatabaseHealth `json:"database"`
	Server   ServerHealth   `json:"server"`
	Tray     TrayHealth     `json:"tray"`
	Engine   EngineHealth   `json:"engine"`
}

type DatabaseHealth struct {
	Status         string `json:"status"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	SQLiteVersion  string `json:"sqlite_version"`
}

type ServerHealth struct {
	Running bool `json:"running"`
	Port    int  `json:"port"`
}

type TrayHealth struct {
	Flashing    bool `json:"flashing"`
	ActiveTasks int  `json:"active_tasks"`
}

type EngineHealth struct {
	Running bool `json:"running"`
	Jobs    int  `json:"jobs"`
}

// Handler manages public endpoints.
type Handler struct {
	state     *state.State
	opts      Options
	startTime time.Time
}

// NewHandler initializes a new public API handler.
//
// Parameters:
//   - st: Shared state guarding the store
//   - opts: Router collaborators (any may be nil)
//
// Returns a fully initialized handler ready for HTTP routing.
func NewHandler(st *state.State, opts Options) *Handler {
	return &Handler{
		state:     st,
		opts:      opts,
		startTime: time.Now(),
	}
}

// Ping handles GET /ping
//
// Response:
//   - 200 OK with "pong" as data
func (h *Handler) Ping(c *gin.Context) {
	types.OK(c, "pong")
}

// Health handles GET /health
//
// Overall status is "healthy" only when the database answers a ping;
// otherwise it is "degraded". The endpoint always answers 200 so callers
// can read the component details.
func (h *Handler) Health(c *gin.Context) {
	dbStatus, dbResponseTime := h.checkDatabaseHealth(c.Request.Context())

	overallStatus := "healthy"
	if dbStatus != "healthy" {
		overallStatus = "degraded"
	}

	report := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   Version,
		Components: HealthComponent{
			Database: DatabaseHealth{
				Status:         dbStatus,
				ResponseTimeMs: dbResponseTime,
				SQLiteVersion:  sqliteVersion(),
			},
		},
	}

	if h.opts.Status != nil {
		report.Components.Server = ServerHealth{Running: h.opts.Status.Running(), Port: h.opts.Status.Port()}
	}
	if h.opts.Flasher != nil {
		report.Components.Tray = TrayHealth{Flashing: h.opts.Flasher.Running(), ActiveTasks: h.opts.Flasher.ActiveTasks()}
	}
	if h.opts.Engine != nil {
		report.Components.Engine = EngineHealth{Running: h.opts.Engine.IsRunning(), Jobs: h.opts.Engine.JobCount()}
	}

	c.JSON(http.StatusOK, types.Success(report))
}

// checkDatabaseHealth pings the store under the state lock.
//
// Returns:
//   - status: "healthy" or "unhealthy"
//   - response_time_ms: round-trip time in milliseconds
func (h *Handler) checkDatabaseHealth(ctx context.Context) (string, int64) {
	if h.state == nil {
		return "unhealthy", 0
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.state.Do(func(store storage.Store) error {
		if store == nil {
			return storage.ErrNotFound
		}
		return store.Ping(ctx)
	})
	responseTime := time.Since(start).Milliseconds()
	if err != nil {
		return "unhealthy", responseTime
	}

	return "healthy", responseTime
}

func sqliteVersion() string {
	version, _, _ := sqlite3.Version()
	return version
}
