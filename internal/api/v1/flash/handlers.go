// Package flash exposes the tray attention indicator over HTTP.
package flash

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"deskmatter/internal/api/types"
)

// Controller is the tray flasher as seen by the HTTP layer.
type Controller interface {
	Toggle(flash bool) bool
	Running() bool
	ActiveTasks() int
	Interval() time.Duration
}

// StateResponse describes the flasher state.
type StateResponse struct {
	Running     bool  `json:"running"`
	ActiveTasks int   `json:"active_tasks"`
	IntervalMs  int64 `json:"interval_ms"`
}

// Handler manages the tray endpoints.
type Handler struct {
	flasher Controller
}

// NewHandler creates a new tray handler instance.
func NewHandler(flasher Controller) *Handler {
	return &Handler{flasher: flasher}
}

// Get handles GET /tray/flash
func (h *Handler) Get(c *gin.Context) {
	types.OK(c, h.snapshot())
}

// Set handles PUT /tray/flash/:state
//
// state is a boolean; true starts flashing and false stops it.
func (h *Handler) Set(c *gin.Context) {
	flash, err := strconv.ParseBool(c.Param("state"))
	if err != nil {
		types.Abort(c, types.Invalid("invalid flash state: %q", c.Param("state")))
		return
	}

	h.flasher.Toggle(flash)
	types.OK(c, h.snapshot())
}

func (h *Handler) snapshot() StateResponse {
	return StateResponse{
		Running:     h.flasher.Running(),
		ActiveTasks: h.flasher.ActiveTasks(),
		IntervalMs:  h.flasher.Interval().Milliseconds(),
	}
}
