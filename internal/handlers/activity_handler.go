package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Calcifer04/GGZA-sub001/internal/services"
)

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
	}
}

// Heartbeat upserts the caller's presence record.
func (h *ActivityHandler) Heartbeat(c *gin.Context) {
	var req services.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.activityService.Heartbeat(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Depart removes the caller's presence record.
func (h *ActivityHandler) Depart(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.activityService.Depart(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Stats returns the live activity snapshot.
func (h *ActivityHandler) Stats(c *gin.Context) {
	stats, err := h.activityService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
