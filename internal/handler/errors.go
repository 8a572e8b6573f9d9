package handler

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hpn/promptpal/internal/adapter"
)

// statusForError maps a normalized completion failure to the HTTP status returned to the caller.
func statusForError(err *adapter.CompletionError) int {
	switch err.Kind {
	case adapter.KindValidation:
		return http.StatusBadRequest
	case adapter.KindTransport:
		if isTimeout(err) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// errorBody builds the JSON error envelope shared by all endpoints.
func errorBody(message, errType string, upstreamStatus int) gin.H {
	body := gin.H{
		"message": message,
		"type":    errType,
	}
	if upstreamStatus > 0 {
		body["upstream_status"] = upstreamStatus
	}
	return gin.H{"error": body}
}

// sendError writes err as an API error. Anything that is not a CompletionError is a server fault.
func sendError(c *gin.Context, err error) {
	var cerr *adapter.CompletionError
	if errors.As(err, &cerr) {
		c.JSON(statusForError(cerr), errorBody(cerr.Message, string(cerr.Kind), cerr.StatusCode))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorBody("Internal server error", "server_error", 0))
}

func sendBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody(message, "invalid_request_error", 0))
}
