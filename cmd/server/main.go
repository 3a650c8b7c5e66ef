package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pullboard/pullboard/internal/cache"
	"github.com/pullboard/pullboard/internal/handlers"
	"github.com/pullboard/pullboard/internal/middleware"
	"github.com/pullboard/pullboard/internal/models"
	"github.com/pullboard/pullboard/internal/services"
	"github.com/pullboard/pullboard/pkg/config"
	"github.com/pullboard/pullboard/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()
	gin.SetMode(config.AppConfig.Server.Mode)

	cfg := config.AppConfig
	requestTimeout := time.Duration(cfg.GitHub.RequestTimeout) * time.Second
	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	// Caches are injectable components, one per value type
	fetchCache := cache.New[string, models.FetchResult]()
	repoCache := cache.New[string, []models.RepositorySummary]()

	// Initialize services
	fetchService := services.NewPullRequestFetchService(cfg.GitHub.APIBaseURL, cfg.GitHub.PerPage, requestTimeout)
	pullRequestService := services.NewPullRequestService(fetchService, fetchCache, cacheTTL)
	repositoryService := services.NewGitHubRepositoryService(cfg.GitHub.APIBaseURL, requestTimeout, repoCache)
	summaryService := services.NewSummaryService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	exportService := services.NewExportService()

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())

	setupRoutes(router, pullRequestService, repositoryService, summaryService, exportService)

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shut down: %v", err)
	}
	logger.Info("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	pullRequestService *services.PullRequestService,
	repositoryService *services.GitHubRepositoryService,
	summaryService *services.SummaryService,
	exportService *services.ExportService,
) {
	cfg := config.AppConfig

	// Initialize handlers
	pullRequestHandler := handlers.NewPullRequestHandler(pullRequestService, exportService, cfg.GitHub.MaxPages, cfg.GitHub.Token)
	repositoryHandler := handlers.NewRepositoryHandler(repositoryService, cfg.GitHub.Token)
	summaryHandler := handlers.NewSummaryHandler(pullRequestService, summaryService, cfg.GitHub.MaxPages, cfg.GitHub.Token)
	toolsHandler := handlers.NewToolsHandler()
	healthHandler := handlers.NewHealthHandler()
	notFoundHandler := handlers.NewNotFoundHandler()

	api := router.Group("/api")
	{
		api.GET("/pull-requests", pullRequestHandler.ListOpenPullRequests)
		api.GET("/pull-requests/export", pullRequestHandler.ExportOpenPullRequests)
		api.GET("/user/repos", repositoryHandler.ListUserRepositories)
		api.GET("/pr/:number/summary", summaryHandler.SummarizePullRequest)
		api.GET("/agent/tools", toolsHandler.ListTools)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
	router.NoRoute(notFoundHandler.NotFound)
}
