package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smartcram/smartcram-backend/internal/handlers"
	"github.com/smartcram/smartcram-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins   []string
	AuthHandler      *handlers.AuthHandler
	FlashcardHandler *handlers.FlashcardHandler
	QuizHandler      *handlers.QuizHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		handlers.RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api/v1")

	// Public
	auth := api.Group("/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	// Protected
	authProtected := api.Group("/auth")
	authProtected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		authProtected.GET("/verify-token", cfg.AuthHandler.VerifyToken)
		authProtected.GET("/me", cfg.AuthHandler.GetMe)
		authProtected.PUT("/me", cfg.AuthHandler.UpdateMe)
		authProtected.PUT("/change-password", cfg.AuthHandler.ChangePassword)
		authProtected.DELETE("/me", cfg.AuthHandler.Deactivate)
	}

	flashcards := api.Group("/flashcards")
	flashcards.Use(cfg.AuthMiddleware.RequireAuth())
	{
		flashcards.POST("/generate", cfg.FlashcardHandler.Generate)
		flashcards.POST("/import", cfg.FlashcardHandler.Import)
		flashcards.GET("", cfg.FlashcardHandler.List)
		flashcards.GET("/:id", cfg.FlashcardHandler.Get)
		flashcards.PUT("/:id", cfg.FlashcardHandler.Update)
		flashcards.DELETE("/:id", cfg.FlashcardHandler.Delete)
		flashcards.GET("/:id/export", cfg.FlashcardHandler.Export)
	}

	quiz := api.Group("/quiz")
	quiz.Use(cfg.AuthMiddleware.RequireAuth())
	{
		quiz.POST("/generate", cfg.QuizHandler.Generate)
		quiz.POST("/import", cfg.QuizHandler.Import)
		quiz.GET("", cfg.QuizHandler.List)
		quiz.GET("/:id", cfg.QuizHandler.Get)
		quiz.PUT("/:id", cfg.QuizHandler.Update)
		quiz.DELETE("/:id", cfg.QuizHandler.Delete)
		quiz.POST("/:id/submit", cfg.QuizHandler.Submit)
		quiz.GET("/:id/export", cfg.QuizHandler.Export)
	}

	return router
}
