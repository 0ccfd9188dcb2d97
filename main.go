package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"radbook/config"
	"radbook/cron"
	"radbook/database"
	referencesRepo "radbook/database/repository/references"
	schedulerRepo "radbook/database/repository/scheduler"
	"radbook/handlers"
	"radbook/routes"
	"radbook/services/agent"
	"radbook/services/booking"
	"radbook/services/notification"
	"radbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitAuthCache()
	utils.InitAgentCache()

	utils.StartHealthMonitor(
		[]*redis.Client{
			utils.SessionCacheClient,
			utils.AuthCacheClient,
			utils.AgentCacheClient,
		},
		database.MongoClient,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	schedRepo := schedulerRepo.NewMongoSchedulerRepo()
	refsRepo := referencesRepo.NewMongoReferencesRepo()

	// services.
	notificationService := notification.NewHTTPNotificationService()

	bookingService := &booking.DefaultBookingSessionService{
		Repo:         schedRepo,
		Refs:         refsRepo,
		Notification: notificationService,
	}

	ctxStore := agent.NewRedisContextStore(utils.GetAgentCacheClient(), 30*time.Minute)
	agentService := &agent.DefaultAgentService{
		CtxStore: ctxStore,
		Gemini:   agent.NewGeminiClient(config.AppConfig.GeminiAPIKey),
		BookSvc:  bookingService,
	}

	// handlers.
	handlers.BookingService = bookingService
	handlers.ReferencesRepo = refsRepo
	handlers.AgentSvc = agentService

	routes.RegisterRoutes(router)

	// Background maintenance: draft sweep and reminder scan.
	cron.InitMaintenanceWorker(schedRepo, notificationService)

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
