package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskmatter/internal/storage"
)

func TestEnvelopeJSON(t *testing.T) {
	t.Run("Success carries data", func(t *testing.T) {
		raw, err := json.Marshal(Success("dark"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":200,"msg":"success","data":"dark"}`, string(raw))
	})

	t.Run("Empty success has null data", func(t *testing.T) {
		raw, err := json.Marshal(Empty())
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":200,"msg":"success","data":null}`, string(raw))
	})

	t.Run("Failure has null data", func(t *testing.T) {
		raw, err := json.Marshal(Failure(http.StatusNotFound, "gone"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":404,"msg":"gone","data":null}`, string(raw))
	})
}

func TestDatabaseClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"Not found sentinel", fmt.Errorf("wrapped: %w", storage.ErrNotFound), NotFound},
		{"Generic failure", errors.New("disk full"), DatabaseError},
		{"Already classified", Invalid("bad field"), BadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(Database(tt.err)))
		})
	}

	assert.NoError(t, Database(nil))
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StartupError.Status())
	assert.Equal(t, http.StatusInternalServerError, DatabaseError.Status())
	assert.Equal(t, http.StatusBadRequest, BadRequest.Status())
	assert.Equal(t, http.StatusNotFound, NotFound.Status())
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/matter/x", nil)

	Abort(c, Missing("matter", "x"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"msg":"matter x not found","data":null}`, w.Body.String())
	assert.True(t, c.IsAborted())
}
