package types

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"deskmatter/internal/storage"
)

// Kind classifies failures surfaced to HTTP callers and lifecycle callers.
type Kind int

const (
	// StartupError is reserved for lifecycle failures such as bind errors.
	StartupError Kind = iota
	// DatabaseError means a store operation failed.
	DatabaseError
	// BadRequest means the caller input was invalid; no state changed.
	BadRequest
	// NotFound means the entity is absent.
	NotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case StartupError:
		return "StartupError"
	case DatabaseError:
		return "DatabaseError"
	case BadRequest:
		return "BadRequest"
	case NotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Status returns the fixed HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ServerError is a classified error with a human-readable message.
type ServerError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// Startup creates a StartupError.
func Startup(format string, args ...interface{}) *ServerError {
	return &ServerError{Kind: StartupError, Msg: fmt.Sprintf(format, args...)}
}

// Invalid creates a BadRequest error.
func Invalid(format string, args ...interface{}) *ServerError {
	return &ServerError{Kind: BadRequest, Msg: fmt.Sprintf(format, args...)}
}

// Missing creates a NotFound error for resource id.
func Missing(resource, id string) *ServerError {
	return &ServerError{Kind: NotFound, Msg: fmt.Sprintf("%s %s not found", resource, id)}
}

// Database classifies a store error. storage.ErrNotFound becomes NotFound,
// anything else DatabaseError. A nil error stays nil.
func Database(err error) error {
	if err == nil {
		return nil
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr
	}

	if errors.Is(err, storage.ErrNotFound) {
		return &ServerError{Kind: NotFound, Msg: "record not found", Err: err}
	}
	return &ServerError{Kind: DatabaseError, Msg: "database operation failed", Err: err}
}

// KindOf returns the kind of err, DatabaseError for unclassified errors.
func KindOf(err error) Kind {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Kind
	}
	if errors.Is(err, storage.ErrNotFound) {
		return NotFound
	}
	return DatabaseError
}

// Abort writes the error envelope for err and stops the handler chain.
// The HTTP status mirrors the envelope code.
func Abort(c *gin.Context, err error) {
	kind := KindOf(err)
	status := kind.Status()

	msg := err.Error()
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		msg = serverErr.Msg
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Failure(status, msg))
}
