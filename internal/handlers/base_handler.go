package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Calcifer04/GGZA-sub001/internal/services"
	"github.com/Calcifer04/GGZA-sub001/internal/validator"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps simple acknowledgement bodies.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler provides shared helpers for all HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a handler entry with the request id attached.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...interface{}) {
	requestID, _ := c.Get("request_id")
	attrs := append([]interface{}{"request_id", requestID, "path", c.FullPath()}, args...)
	h.logger.Info(msg, attrs...)
}

// parseIDParam parses a numeric path parameter. On failure it writes the 400
// response itself and returns 0; callers just return.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// currentUserID pulls the authenticated user id set by the auth middleware.
// Writes the 401 itself when missing.
func (h *BaseHandler) currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid user identity"})
		return 0, false
	}
	return id, true
}

// handleServiceError maps service errors onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: verrs,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrQuizNotLive),
		errors.Is(err, services.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})

	default:
		requestID, _ := c.Get("request_id")
		h.logger.Error("unhandled service error",
			"request_id", requestID,
			"path", c.FullPath(),
			"error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
