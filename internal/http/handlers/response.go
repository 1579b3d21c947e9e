// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by all endpoints: the error
// envelope, the acknowledgement and creation envelopes used by mutations, and
// small helpers that keep status handling uniform.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting; 5xx responses are
//     logged with the request-scoped logger.
//   - Mutations that may target a missing record answer 200 with
//     AckResponse and report existence through `found`.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "proposal not found"
//	}
//
// Example acknowledgement:
//
//	HTTP/1.1 200 OK
//	{ "status": "success", "found": true }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-groupbuy-backend/internal/http/middleware"
)

const statusSuccess = "success"

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: correlation ID echoed from the X-Request-ID header.
//   - Code: a stable, machine-readable string (see errors.go constants).
//   - Message: a human-readable error description, safe for display.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
}

// AckResponse acknowledges a mutation addressed by id.
type AckResponse struct {
	Status string `json:"status" example:"success"`
	// Found is false when no record had the given id; nothing changed then.
	Found bool `json:"found" example:"true"`
}

// CreatedResponse carries the id assigned to a new resource.
type CreatedResponse struct {
	Status string `json:"status" example:"success"`
	ID     int64  `json:"id" example:"1"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for the router's fallback handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// ack writes the acknowledgement envelope for an id-addressed mutation.
func ack(c *gin.Context, found bool) {
	ok(c, http.StatusOK, AckResponse{Status: statusSuccess, Found: found})
}

// created writes 201 with the new resource id.
func created(c *gin.Context, id int64) {
	ok(c, http.StatusCreated, CreatedResponse{Status: statusSuccess, ID: id})
}

// notModified writes 304 with no body.
func notModified(c *gin.Context) {
	c.Status(http.StatusNotModified)
}
