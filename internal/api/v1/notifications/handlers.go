// Package notifications implements HTTP handlers for in-app notifications.
package notifications

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// Handler manages the notification endpoints.
type Handler struct {
	state *state.State
}

// NewHandler creates a new notification handler instance.
func NewHandler(st *state.State) *Handler {
	return &Handler{state: st}
}

// Create handles POST /notification
func (h *Handler) Create(c *gin.Context) {
	var notification storage.NotificationRecord
	if err := c.ShouldBindJSON(&notification); err != nil {
		types.Abort(c, types.Invalid("invalid notification: %v", err))
		return
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if err := storage.ValidateNotification(&notification); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.Notifications().Create(c.Request.Context(), &notification)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, notification)
}

// Get handles GET /notification/:id
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	notification, err := state.Borrow(h.state, func(store storage.Store) (*storage.NotificationRecord, error) {
		return store.Notifications().GetByID(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, notification)
}

// List handles GET /notification
func (h *Handler) List(c *gin.Context) {
	h.list(c, func(store storage.Store) ([]storage.NotificationRecord, error) {
		return store.Notifications().GetAll(c.Request.Context())
	})
}

// Unread handles GET /notification/unread
func (h *Handler) Unread(c *gin.Context) {
	h.list(c, func(store storage.Store) ([]storage.NotificationRecord, error) {
		return store.Notifications().GetUnread(c.Request.Context())
	})
}

func (h *Handler) list(c *gin.Context, fn func(storage.Store) ([]storage.NotificationRecord, error)) {
	notifications, err := state.Borrow(h.state, fn)
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, notifications)
}

// Update handles PUT /notification/:id
func (h *Handler) Update(c *gin.Context) {
	var notification storage.NotificationRecord
	if err := c.ShouldBindJSON(&notification); err != nil {
		types.Abort(c, types.Invalid("invalid notification: %v", err))
		return
	}
	notification.ID = c.Param("id")
	if err := storage.ValidateNotification(&notification); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.Notifications().Update(c.Request.Context(), notification.ID, &notification)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, notification)
}

// Delete handles DELETE /notification/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.exec(c, func(store storage.Store) error {
		return store.Notifications().Delete(c.Request.Context(), id)
	})
}

// MarkRead handles PUT /notification/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	h.exec(c, func(store storage.Store) error {
		return store.Notifications().MarkAsRead(c.Request.Context(), id)
	})
}

// MarkReadByType handles PUT /notification/read/:type
func (h *Handler) MarkReadByType(c *gin.Context) {
	notificationType, err := strconv.Atoi(c.Param("type"))
	if err != nil {
		types.Abort(c, types.Invalid("invalid notification type: %q", c.Param("type")))
		return
	}
	h.exec(c, func(store storage.Store) error {
		return store.Notifications().MarkAsReadByType(c.Request.Context(), notificationType)
	})
}

// MarkAllRead handles PUT /notification/read-all
func (h *Handler) MarkAllRead(c *gin.Context) {
	h.exec(c, func(store storage.Store) error {
		return store.Notifications().MarkAllAsRead(c.Request.Context())
	})
}

func (h *Handler) exec(c *gin.Context, fn func(storage.Store) error) {
	if err := h.state.Do(fn); err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}
