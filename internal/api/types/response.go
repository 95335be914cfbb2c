package types

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeOK is the envelope code of every successful response.
const CodeOK = http.StatusOK

// Envelope is the uniform response wrapper. Data is null on every error path.
type Envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *T     `json:"data"`
}

// Success creates a successful envelope carrying data.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{
		Code: CodeOK,
		Msg:  "success",
		Data: &data,
	}
}

// Empty creates a successful envelope without data.
func Empty() Envelope[struct{}] {
	return Envelope[struct{}]{
		Code: CodeOK,
		Msg:  "success",
	}
}

// Failure creates an error envelope. The data field is always null.
func Failure(code int, msg string) Envelope[struct{}] {
	return Envelope[struct{}]{
		Code: code,
		Msg:  msg,
	}
}

// OK writes a successful envelope carrying data.
func OK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, Success(data))
}

// NoContent writes a successful envelope with null data.
func NoContent(c *gin.Context) {
	c.JSON(http.StatusOK, Empty())
}
