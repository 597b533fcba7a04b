package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/services"
)

type AdminHandler struct {
	BaseHandler
	adminService  services.AdminService
	exportService services.ExportService
}

func NewAdminHandler(adminService services.AdminService, exportService services.ExportService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   NewBaseHandler(logger),
		adminService:  adminService,
		exportService: exportService,
	}
}

// CreateQuestion creates a quiz question.
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating question", "hub_id", req.HubID)

	question, err := h.adminService.CreateQuestion(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ListQuestions lists questions with filters from query parameters.
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	filters := repositories.QuestionFilters{
		Limit:     parseIntQuery(c, "limit", 50),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("hub_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			hubID := uint(id)
			filters.HubID = &hubID
		}
	}
	if v := c.Query("difficulty"); v != "" {
		difficulty := models.DifficultyLevel(v)
		filters.Difficulty = &difficulty
	}
	if v := c.Query("category"); v != "" {
		filters.Category = &v
	}

	resp, err := h.adminService.ListQuestions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateQuiz creates a quiz session.
func (h *AdminHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating quiz", "hub_id", req.HubID, "title", req.Title)

	quiz, err := h.adminService.CreateQuiz(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes lists quiz sessions with filters from query parameters.
func (h *AdminHandler) ListQuizzes(c *gin.Context) {
	filters := repositories.QuizFilters{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}

	if v := c.Query("hub_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			hubID := uint(id)
			filters.HubID = &hubID
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.QuizStatus(v)
		filters.Status = &status
	}

	resp, err := h.adminService.ListQuizzes(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateQuizStatus moves a quiz through its lifecycle.
func (h *AdminHandler) UpdateQuizStatus(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.QuizStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating quiz status", "quiz_id", quizID, "status", req.Status)

	if err := h.adminService.UpdateQuizStatus(c.Request.Context(), quizID, &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// AssignQuestions attaches questions to a scheduled quiz in order.
func (h *AdminHandler) AssignQuestions(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.AssignQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Assigning quiz questions", "quiz_id", quizID, "count", len(req.QuestionIDs))

	if err := h.adminService.AssignQuestions(c.Request.Context(), quizID, &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ExportQuizResults streams the quiz leaderboard as an Excel download.
func (h *AdminHandler) ExportQuizResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", quizID)

	data, err := h.exportService.ExportQuizResults(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_%d_results.xlsx", quizID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
