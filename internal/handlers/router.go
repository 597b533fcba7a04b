package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
	"github.com/Calcifer04/GGZA-sub001/internal/repositories"
	"github.com/Calcifer04/GGZA-sub001/internal/services"
)

type HandlerManager struct {
	activityHandler *ActivityHandler
	quizHandler     *QuizHandler
	adminHandler    *AdminHandler
	authMiddleware  *JWTAuthMiddleware
	serviceManager  services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger *slog.Logger,
	jwtSecret string,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		activityHandler: NewActivityHandler(serviceManager.Activity(), logger),
		quizHandler:     NewQuizHandler(serviceManager.QuizSession(), logger),
		adminHandler:    NewAdminHandler(serviceManager.Admin(), serviceManager.Export(), logger),
		authMiddleware:  NewJWTAuthMiddleware(jwtSecret, userRepo),
		serviceManager:  serviceManager,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// The stats snapshot is public so landing pages can show live counts
	// before login.
	v1.GET("/activity/stats", hm.activityHandler.Stats)

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		activity := authed.Group("/activity")
		{
			activity.POST("/heartbeat", hm.activityHandler.Heartbeat)
			activity.DELETE("/heartbeat", hm.activityHandler.Depart)
		}

		quiz := authed.Group("/quiz")
		{
			quiz.GET("/:id", hm.quizHandler.Resolve)
			quiz.POST("/:id/submit", hm.quizHandler.Submit)
		}

		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.PrivilegedRoles...))
		{
			admin.POST("/questions", hm.adminHandler.CreateQuestion)
			admin.GET("/questions", hm.adminHandler.ListQuestions)

			admin.POST("/quizzes", hm.adminHandler.CreateQuiz)
			admin.GET("/quizzes", hm.adminHandler.ListQuizzes)
			admin.PUT("/quizzes/:id/status", hm.adminHandler.UpdateQuizStatus)
			admin.POST("/quizzes/:id/questions", hm.adminHandler.AssignQuestions)
			admin.GET("/quizzes/:id/export", hm.adminHandler.ExportQuizResults)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
