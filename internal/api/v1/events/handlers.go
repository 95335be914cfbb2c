// Package events exposes OS calendar events as matters over HTTP.
package events

import (
	"time"

	"github.com/gin-gonic/gin"

	"deskmatter/internal/api/types"
	"deskmatter/internal/calendar"
)

// PermissionResponse describes the calendar authorization state.
type PermissionResponse struct {
	Status   int    `json:"status"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// Handler manages the calendar endpoints.
type Handler struct {
	source calendar.EventSource
}

// NewHandler creates a new calendar handler instance.
func NewHandler(source calendar.EventSource) *Handler {
	return &Handler{source: source}
}

// List handles GET /calendar/events?start=&end=
//
// Both bounds are RFC 3339 timestamps.
func (h *Handler) List(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		types.Abort(c, types.Invalid("invalid start time: %q", c.Query("start")))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		types.Abort(c, types.Invalid("invalid end time: %q", c.Query("end")))
		return
	}

	events, err := h.source.Events(c.Request.Context(), start, end)
	if err != nil {
		types.Abort(c, &types.ServerError{Kind: types.DatabaseError, Msg: "failed to read calendar", Err: err})
		return
	}

	types.OK(c, events)
}

// Permission handles GET /calendar/permission
func (h *Handler) Permission(c *gin.Context) {
	types.OK(c, h.permission(c))
}

// RequestAccess handles POST /calendar/permission
func (h *Handler) RequestAccess(c *gin.Context) {
	if err := h.source.RequestAccess(c.Request.Context()); err != nil {
		types.Abort(c, &types.ServerError{Kind: types.DatabaseError, Msg: "failed to request calendar access", Err: err})
		return
	}

	types.OK(c, h.permission(c))
}

func (h *Handler) permission(c *gin.Context) PermissionResponse {
	status := h.source.PermissionStatus(c.Request.Context())
	return PermissionResponse{
		Status:   int(status),
		Name:     status.String(),
		Platform: h.source.Platform(),
	}
}
