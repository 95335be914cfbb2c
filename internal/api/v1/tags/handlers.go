// Package tags implements HTTP handlers for tag operations, including the
// comma separated batch endpoints.
package tags

import (
	"strings"

	"github.com/gin-gonic/gin"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// CreateRequest is the body of POST /tags.
type CreateRequest struct {
	Names string `json:"names"`
}

// Handler manages the tag endpoints.
type Handler struct {
	state *state.State
}

// NewHandler creates a new tag handler instance.
func NewHandler(st *state.State) *Handler {
	return &Handler{state: st}
}

// ParseNames splits a comma separated list into trimmed, non-empty,
// unique names in first-seen order.
func ParseNames(raw string) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Create handles POST /tags
//
// Body: {"names": "a,b"}. Existing tags are left untouched.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		types.Abort(c, types.Invalid("invalid tag request: %v", err))
		return
	}

	h.batch(c, req.Names, true, func(store storage.Store, name string) error {
		return store.Tags().Create(c.Request.Context(), name)
	})
}

// List handles GET /tags
//
// Tags are ordered by last use, most recent first.
func (h *Handler) List(c *gin.Context) {
	tags, err := state.Borrow(h.state, func(store storage.Store) ([]storage.Tag, error) {
		return store.Tags().GetAll(c.Request.Context())
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, tags)
}

// Delete handles DELETE /tags/:names
func (h *Handler) Delete(c *gin.Context) {
	h.batch(c, c.Param("names"), false, func(store storage.Store, name string) error {
		return store.Tags().Delete(c.Request.Context(), name)
	})
}

// Touch handles PUT /tags/update/:names
//
// Marks every named tag as used now.
func (h *Handler) Touch(c *gin.Context) {
	h.batch(c, c.Param("names"), false, func(store storage.Store, name string) error {
		return store.Tags().UpdateLastUsedAt(c.Request.Context(), name)
	})
}

// batch applies op to each parsed name, one store call per name, and stops
// at the first failure. An empty name set is rejected without any store call.
// Names are checked against ValidateTagName only when validate is set, so
// existing tags can always be deleted or touched.
func (h *Handler) batch(c *gin.Context, raw string, validate bool, op func(storage.Store, string) error) {
	names := ParseNames(raw)
	if len(names) == 0 {
		types.Abort(c, types.Invalid("no tag names given"))
		return
	}
	if validate {
		for _, name := range names {
			if err := storage.ValidateTagName(name); err != nil {
				types.Abort(c, types.Invalid("%v", err))
				return
			}
		}
	}

	for _, name := range names {
		err := h.state.Do(func(store storage.Store) error {
			return op(store, name)
		})
		if err != nil {
			types.Abort(c, types.Database(err))
			return
		}
	}

	types.NoContent(c)
}
