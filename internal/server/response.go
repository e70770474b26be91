package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/engine"
)

// Error codes carried in the envelope.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeRateLimited    = "rate_limited"
	CodeTimeout        = "timeout"
	CodeInternal       = "internal"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code},
	})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// fail maps an engine error to a status and writes the envelope. Internal
// failures are logged and their message is not exposed.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
	case errors.Is(err, engine.ErrNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, CodeTimeout, errors.New("request timed out"))
	default:
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, CodeInternal, errors.New("internal server error"))
	}
}
