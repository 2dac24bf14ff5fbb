// Package response writes the JSON error envelope used by the API.
// Catalog reads and ingested events are returned bare so embeds can consume them directly.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 envelope with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// BadRequest sends 400 for an invalid request.
func BadRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg)
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	fail(c, http.StatusNotFound, msg)
}

// ServiceUnavailable sends 503 when a backing service (queue, cache) is down.
func ServiceUnavailable(c *gin.Context, msg string) {
	fail(c, http.StatusServiceUnavailable, msg)
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	fail(c, http.StatusInternalServerError, msg)
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Body{Success: false, Error: msg})
}
