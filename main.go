// File: medichat/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medichat/config"
	"medichat/cron"
	"medichat/database"
	slotRepo "medichat/database/repository/slot"
	"medichat/handlers"
	"medichat/middleware"
	"medichat/routes"
	"medichat/services/assistant"
	"medichat/services/intelligence"
	"medichat/services/notification"
	"medichat/services/tasks"
	"medichat/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()

	// session context store.
	ttl := time.Duration(config.AppConfig.ContextTTLMinutes) * time.Minute
	ctxStore := assistant.NewRedisContextStore(utils.GetContextCacheClient(), ttl)

	// Chat fallback is optional: without an API key the assistant answers
	// unrecognized utterances with the static help text.
	var chat intelligence.ChatModel
	if config.AppConfig.GeminiAPIKey != "" {
		gc, err := intelligence.NewGeminiClient(
			context.Background(),
			config.AppConfig.GeminiAPIKey,
			config.AppConfig.GeminiModel,
			config.AppConfig.GeminiFallbackModel,
		)
		if err != nil {
			logger.Sugar().Warnf("main: gemini client unavailable, using static fallback: %v", err)
		} else {
			chat = gc
		}
	}

	// Reminder pipeline.
	sender := &notification.LogSender{Logger: logger}
	cron.InitReminderWorker(sender)
	reminders := tasks.NewAsynqReminderScheduler()

	assistantService := &assistant.DefaultAssistantService{
		Slots:     slots,
		Contexts:  ctxStore,
		Chat:      chat,
		Reminders: reminders,
		Logger:    logger,
	}

	assistantHandler := handlers.NewAssistantHandler(assistantService)
	routes.RegisterRoutes(router, assistantHandler)

	utils.StartHealthMonitor([]*redis.Client{utils.GetContextCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
