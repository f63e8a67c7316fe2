package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartcram/smartcram-backend/internal/db"
	"github.com/smartcram/smartcram-backend/internal/handlers"
	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/middleware"
	"github.com/smartcram/smartcram-backend/internal/repos"
	"github.com/smartcram/smartcram-backend/internal/server"
	"github.com/smartcram/smartcram-backend/internal/services"
	"github.com/smartcram/smartcram-backend/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	log, err := logger.New(logMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to initialize postgres", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to migrate postgres tables", "error", err)
	}
	gormDB := postgresService.DB()

	userRepo := repos.NewUserRepo(gormDB, log)
	setRepo := repos.NewFlashcardSetRepo(gormDB, log)
	cardRepo := repos.NewFlashcardRepo(gormDB, log)
	quizRepo := repos.NewQuizRepo(gormDB, log)
	questionRepo := repos.NewQuizQuestionRepo(gormDB, log)

	aiClient, err := services.NewAIClient(log)
	if err != nil {
		log.Fatal("Failed to initialize AI client", "error", err)
	}
	generatorService := services.NewGeneratorService(log, aiClient)

	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTTLMinutes := utils.GetEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 720, log)
	authService := services.NewAuthService(log, userRepo, jwtSecretKey, time.Duration(accessTTLMinutes)*time.Minute)
	userService := services.NewUserService(log, userRepo)
	flashcardService := services.NewFlashcardService(gormDB, log, setRepo, cardRepo, generatorService)
	quizService := services.NewQuizService(gormDB, log, quizRepo, questionRepo, generatorService)

	authHandler := handlers.NewAuthHandler(log, authService, userService)
	flashcardHandler := handlers.NewFlashcardHandler(log, flashcardService)
	quizHandler := handlers.NewQuizHandler(log, quizService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	allowedOrigins := utils.GetEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}, log)
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:   allowedOrigins,
		AuthHandler:      authHandler,
		FlashcardHandler: flashcardHandler,
		QuizHandler:      quizHandler,
		AuthMiddleware:   authMiddleware,
	})

	port := utils.GetEnv("PORT", "8000", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
