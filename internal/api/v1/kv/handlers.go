// Package kv implements HTTP handlers for key/value settings.
package kv

import (
	"github.com/gin-gonic/gin"

	"deskmatter/internal/api/types"
	"deskmatter/internal/state"
	"deskmatter/internal/storage"
)

// Handler manages the key/value endpoints.
type Handler struct {
	state *state.State
}

// NewHandler creates a new key/value handler instance.
func NewHandler(st *state.State) *Handler {
	return &Handler{state: st}
}

// Get handles GET /kv/:key
//
// An absent key yields an empty string, never 404.
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := state.Borrow(h.state, func(store storage.Store) (string, error) {
		return store.KV().Get(c.Request.Context(), key, "")
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.OK(c, value)
}

// Set handles PUT /kv/:key
//
// The raw request body is stored verbatim as the value.
func (h *Handler) Set(c *gin.Context) {
	key := c.Param("key")
	body, err := c.GetRawData()
	if err != nil {
		types.Abort(c, types.Invalid("failed to read body: %v", err))
		return
	}

	err = h.state.Do(func(store storage.Store) error {
		return store.KV().Set(c.Request.Context(), key, string(body))
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}

// Delete handles DELETE /kv/:key
func (h *Handler) Delete(c *gin.Context) {
	key := c.Param("key")
	err := h.state.Do(func(store storage.Store) error {
		return store.KV().Delete(c.Request.Context(), key)
	})
	if err != nil {
		types.Abort(c, types.Database(err))
		return
	}

	types.NoContent(c)
}
