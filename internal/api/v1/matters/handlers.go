// Package matters implements HTTP handlers for matter operations.
//
// Every handler borrows the shared state for exactly one store call and
// answers with the uniform envelope.
package matters

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// Handler manages all matter-related HTTP endpoints.
type Handler struct {
	state *state.State
}

// NewHandler creates a new matter handler instance.
//
// Parameters:
//   - st: Shared state guarding the store
//
// Returns:
//   - Pointer to initialized Handler
func NewHandler(st *state.State) *Handler {
	return &Handler{state: st}
}

// Create handles POST /matter
//
// The id is generated when the body leaves it empty.
//
// Returns:
//   - 200 OK with the created matter
//   - 400 Bad Request for malformed or invalid input
//   - 500 Internal Server Error on storage failure
func (h *Handler) Create(c *gin.Context) {
	var matter storage.Matter
	if err := c.ShouldBindJSON(&matter); err != nil {
		types.Abort(c, types.Invalid("invalid matter: %v", err))
		return
	}
	if matter.ID == "" {
		matter.ID = uuid.NewString()
	}
	if err := storage.ValidateMatter(&matter); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.Matters().Create(c.Request.Context(), &matter)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, matter)
}

// Get handles GET /matter/:id
//
// Returns:
//   - 200 OK with the matter
//   - 404 Not Found when no matter has the id
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	matter, err := state.Borrow(h.state, func(store storage.Store) (*storage.Matter, error) {
		return store.Matters().GetByID(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, matter)
}

// List handles GET /matter
func (h *Handler) List(c *gin.Context) {
	matters, err := state.Borrow(h.state, func(store storage.Store) ([]storage.Matter, error) {
		return store.Matters().GetAll(c.Request.Context())
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, matters)
}

// Update handles PUT /matter/:id
//
// The whole matter is replaced; the id in the path wins over the body.
func (h *Handler) Update(c *gin.Context) {
	var matter storage.Matter
	if err := c.ShouldBindJSON(&matter); err != nil {
		types.Abort(c, types.Invalid("invalid matter: %v", err))
		return
	}
	matter.ID = c.Param("id")
	if err := storage.ValidateMatter(&matter); err != nil {
		types.Abort(c, types.Invalid("%v", err))
		return
	}

	err := h.state.Do(func(store storage.Store) error {
		return store.Matters().Update(c.Request.Context(), matter.ID, &matter)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, matter)
}

// Delete handles DELETE /matter/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.state.Do(func(store storage.Store) error {
		return store.Matters().Delete(c.Request.Context(), id)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}

// Range handles GET /matter/range?start=&end=
//
// Both bounds are RFC 3339 timestamps. A matter is returned when its time
// window overlaps [start, end].
func (h *Handler) Range(c *gin.Context) {
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
	if end.Before(start) {
		types.Abort(c, types.Invalid("end time must not be before start time"))
		return
	}

	matters, err := state.Borrow(h.state, func(store storage.Store) ([]storage.Matter, error) {
		return store.Matters().GetByTimeRange(c.Request.Context(), start, end)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, matters)
}

// Query handles GET /matter/query?field=&value=&exact_match=
//
// field must be one of storage.MatterQueryFields; anything else is
// rejected before the store is touched. exact_match defaults to false,
// which matches value as a substring.
func (h *Handler) Query(c *gin.Context) {
	field := c.Query("field")
	if !storage.IsMatterQueryField(field) {
		types.Abort(c, types.Invalid("invalid field: %q", field))
		return
	}

	exact := false
	if raw := c.Query("exact_match"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			types.Abort(c, types.Invalid("invalid exact_match: %q", raw))
			return
		}
		exact = parsed
	}
	value := c.Query("value")

	matters, err := state.Borrow(h.state, func(store storage.Store) ([]storage.Matter, error) {
		return store.Matters().QueryByField(c.Request.Context(), field, value, exact)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, matters)
}
