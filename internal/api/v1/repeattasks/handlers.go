// Package repeattasks implements HTTP handlers for repeat task operations.
package repeattasks

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// Handler manages the repeat task endpoints.
type Handler struct {
	state *state.State
}

// NewHandler creates a new repeat task handler instance.
func NewHandler(st *state.State) *Handler {
	return &Handler{state: st}
}

// Create handles POST /repeat-task
func (h *Handler) Create(c *gin.Context) {
	var task storage.RepeatTask
	if err := c.ShouldBindJSON(&task); err != nil {
		types.Abort(c, types.Invalid("invalid repeat task: %v", err))
		return
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := storage.ValidateRepeatTask(&task); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.RepeatTasks().Create(c.Request.Context(), &task)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, task)
}

// Get handles GET /repeat-task/:id
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	task, err := state.Borrow(h.state, func(store storage.Store) (*storage.RepeatTask, error) {
		return store.RepeatTasks().GetByID(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, task)
}

// List handles GET /repeat-task
func (h *Handler) List(c *gin.Context) {
	tasks, err := state.Borrow(h.state, func(store storage.Store) ([]storage.RepeatTask, error) {
		return store.RepeatTasks().GetAll(c.Request.Context())
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, tasks)
}

// Active handles GET /repeat-task/active
func (h *Handler) Active(c *gin.Context) {
	tasks, err := state.Borrow(h.state, func(store storage.Store) ([]storage.RepeatTask, error) {
		return store.RepeatTasks().GetActive(c.Request.Context())
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, tasks)
}

// Update handles PUT /repeat-task/:id
func (h *Handler) Update(c *gin.Context) {
	var task storage.RepeatTask
	if err := c.ShouldBindJSON(&task); err != nil {
		types.Abort(c, types.Invalid("invalid repeat task: %v", err))
		return
	}
	task.ID = c.Param("id")
	if err := storage.ValidateRepeatTask(&task); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.RepeatTasks().Update(c.Request.Context(), task.ID, &task)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, task)
}

// UpdateStatus handles PUT /repeat-task/:id/status/:status
//
// status is 0 (inactive) or 1 (active).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil {
		types.Abort(c, types.Invalid("invalid status: %q", c.Param("status")))
		return
	}
	if err := storage.ValidateRepeatTaskStatus(status); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err = h.state.Do(func(store storage.Store) error {
		return store.RepeatTasks().UpdateStatus(c.Request.Context(), id, status)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}

// Delete handles DELETE /repeat-task/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.state.Do(func(store storage.Store) error {
		return store.RepeatTasks().Delete(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}
