package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/quiz-service/internal/services"
	"github.com/quizhub/quiz-service/internal/utils"
	"github.com/quizhub/quiz-service/internal/validator"
)

const serviceName = "quiz-service"

type HandlerManager struct {
	serviceManager     services.ServiceManager
	logger             utils.Logger
	quizHandler        *QuizHandler
	attemptHandler     *AttemptHandler
	leaderboardHandler *LeaderboardHandler
	catalogHandler     *CatalogHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:     serviceManager,
		logger:             logger,
		quizHandler:        NewQuizHandler(serviceManager.Quiz(), logger),
		attemptHandler:     NewAttemptHandler(serviceManager.Attempt(), logger),
		leaderboardHandler: NewLeaderboardHandler(serviceManager.Ranking(), serviceManager.Export(), validator, logger),
		catalogHandler:     NewCatalogHandler(serviceManager.Catalog(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.CreateAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.DELETE("/:id", hm.attemptHandler.DeleteAttempt)
			attempts.PATCH("/:id/score", hm.attemptHandler.UpdateScore)
			attempts.POST("/:id/complete", hm.attemptHandler.CompleteAttempt)
		}

		leaderboard := v1.Group("/leaderboard")
		{
			leaderboard.GET("", hm.leaderboardHandler.GetGeneralLeaderboard)
			leaderboard.GET("/subjects/:subject_id", hm.leaderboardHandler.GetSubjectLeaderboard)
			leaderboard.GET("/users/:user_id", hm.leaderboardHandler.GetUserStats)
			leaderboard.GET("/recent", hm.leaderboardHandler.GetRecentBestScores)
			leaderboard.GET("/export", hm.leaderboardHandler.ExportLeaderboard)
		}

		subjects := v1.Group("/subjects")
		{
			subjects.POST("", hm.catalogHandler.CreateSubject)
			subjects.GET("", hm.catalogHandler.ListSubjects)
			subjects.GET("/:id", hm.catalogHandler.GetSubject)
		}

		categories := v1.Group("/categories")
		{
			categories.POST("", hm.catalogHandler.CreateCategory)
			categories.GET("", hm.catalogHandler.ListCategories)
		}

		users := v1.Group("/users")
		{
			users.POST("", hm.catalogHandler.CreateUser)
			users.GET("", hm.catalogHandler.ListUsers)
			users.GET("/:id", hm.catalogHandler.GetUser)
		}
	}

	router.GET("/health", hm.HealthCheck)
}

// HealthCheck reports whether the database is reachable
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	body := gin.H{
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.LoggerFromContext(c, hm.logger).Error("Health check failed", "error", err)
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "healthy"
	c.JSON(http.StatusOK, body)
}
