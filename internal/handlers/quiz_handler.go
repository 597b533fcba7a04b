package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Calcifer04/GGZA-sub001/internal/services"
)

type QuizHandler struct {
	BaseHandler
	quizSessionService services.QuizSessionService
}

func NewQuizHandler(quizSessionService services.QuizSessionService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:        NewBaseHandler(logger),
		quizSessionService: quizSessionService,
	}
}

// Resolve returns the caller's view of a quiz: scheduled, completed (with or
// without their score) or live with shuffled questions.
func (h *QuizHandler) Resolve(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Resolving quiz session", "quiz_id", quizID)

	resp, err := h.quizSessionService.Resolve(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Submit scores a full answer set for a live quiz.
func (h *QuizHandler) Submit(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz answers", "quiz_id", quizID)

	result, err := h.quizSessionService.SubmitAnswers(c.Request.Context(), quizID, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
