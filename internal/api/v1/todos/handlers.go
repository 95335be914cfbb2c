// Package todos implements HTTP handlers for todo operations.
package todos

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// Handler manages the todo endpoints.
type Handler struct {
	state *state.State
}

// NewHandler creates a new todo handler instance.
func NewHandler(st *state.State) *Handler {
	return &Handler{state: st}
}

// Create handles POST /todo
func (h *Handler) Create(c *gin.Context) {
	var todo storage.Todo
	if err := c.ShouldBindJSON(&todo); err != nil {
		types.Abort(c, types.Invalid("invalid todo: %v", err))
		return
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if err := storage.ValidateTodo(&todo); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.Todos().Create(c.Request.Context(), &todo)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, todo)
}

// Get handles GET /todo/:id
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	todo, err := state.Borrow(h.state, func(store storage.Store) (*storage.Todo, error) {
		return store.Todos().GetByID(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, todo)
}

// List handles GET /todo
func (h *Handler) List(c *gin.Context) {
	todos, err := state.Borrow(h.state, func(store storage.Store) ([]storage.Todo, error) {
		return store.Todos().GetAll(c.Request.Context())
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, todos)
}

// Update handles PUT /todo/:id
func (h *Handler) Update(c *gin.Context) {
	var todo storage.Todo
	if err := c.ShouldBindJSON(&todo); err != nil {
		types.Abort(c, types.Invalid("invalid todo: %v", err))
		return
	}
	todo.ID = c.Param("id")
	if err := storage.ValidateTodo(&todo); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.Todos().Update(c.Request.Context(), todo.ID, &todo)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, todo)
}

// Delete handles DELETE /todo/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.state.Do(func(store storage.Store) error {
		return store.Todos().Delete(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}
