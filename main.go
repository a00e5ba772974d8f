package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quiz-session-service/internal/config"
	"quiz-session-service/internal/db"
	"quiz-session-service/internal/event"
	"quiz-session-service/internal/handlers"
	"quiz-session-service/internal/logger"
	"quiz-session-service/internal/monitoring"
	"quiz-session-service/internal/quizclient"
	"quiz-session-service/internal/repository"
	"quiz-session-service/internal/service"
)

func main() {
	// Load env; a missing .env just means system env is used
	_ = godotenv.Load()
	cfg := config.Load()

	logger.Init(cfg)
	defer logger.Log.Sync()

	metrics := monitoring.New(cfg.Server.ServiceName, nil)

	if err := db.InitMongo(&cfg.MongoDB); err != nil {
		logger.Log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer db.CloseMongo()

	// RabbitMQ event publisher, optional
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		logger.Log.Info("RabbitMQ not configured, session events will not be published")
	}

	sessionRepo := repository.NewSessionRepository(db.Database)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := sessionRepo.EnsureIndexes(ctx); err != nil {
			logger.Log.Warn("failed to create session indexes", zap.Error(err))
		}
		cancel()
	}

	quizClient := quizclient.NewClient(cfg.QuizCatalog.BaseURL, cfg.QuizCatalog.Timeout)
	sessionService := service.NewSessionService(sessionRepo, quizClient)

	sessionHandler := handlers.NewSessionHandler(sessionService, publisher)
	quizHandler := handlers.NewQuizHandler(quizClient)
	healthHandler := handlers.NewHealthHandler(quizClient, cfg.Server.ServiceName)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		quiz := api.Group("/quiz")
		{
			quiz.GET("/available/:bookId", quizHandler.ListAvailable)
			quiz.GET("/:quizId", quizHandler.GetQuiz)
		}

		session := api.Group("/session")
		{
			session.POST("/start", sessionHandler.StartSession)
			session.GET("/:id", sessionHandler.GetSessionStatus)
			session.POST("/:id/answer", sessionHandler.SubmitAnswer)
			session.POST("/:id/complete", sessionHandler.CompleteSession)
		}

		api.GET("/user/:userId/sessions", sessionHandler.GetUserSessions)
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Info("starting server",
			zap.String("service", cfg.Server.ServiceName),
			zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
