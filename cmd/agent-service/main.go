package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"competiscope-agent/internal/agent/config"
	delivery "competiscope-agent/internal/agent/delivery/http"
	_ "competiscope-agent/internal/agent/docs"
	"competiscope-agent/internal/agent/dto"
	"competiscope-agent/internal/agent/repository"
	"competiscope-agent/internal/agent/service"
	"competiscope-agent/pkg/cache"
	"competiscope-agent/pkg/logger"
	"competiscope-agent/pkg/telegram"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the agent service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Agent Service", logger.Field("name", cfg.App.Name))

	// Initialize Gemini client
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
	}

	// Initialize collectors. They share one short-lived raw-data cache.
	dataCache := gocache.New(cfg.Collectors.DataTTL, 0)
	companyInfoRepo := repository.NewCompanyInfoRepository(cfg, appLogger, dataCache)
	newsRepo := repository.NewNewsRepository(cfg, appLogger, dataCache)
	marketDataRepo := repository.NewMarketDataRepository(cfg, appLogger, dataCache)

	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
	}

	// Initialize services. The analysis cache lives for the process lifetime.
	analysisCache := cache.New[dto.CompetitorIntelligence]()
	analyzerSvc := service.NewAnalyzerService(cfg, appLogger, companyInfoRepo, newsRepo, marketDataRepo, aiRepo, analysisCache)

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	watchlistSvc := service.NewWatchlistService(cfg, appLogger, analyzerSvc, telegramNotifier)
	if err := watchlistSvc.Start(); err != nil {
		appLogger.Fatal("Failed to start watchlist digest", logger.ErrorField(err))
	}
	defer watchlistSvc.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Validator = delivery.NewValidator()

	// Initialize handlers and routes
	delivery.NewAnalyzeHandler(analyzerSvc, appLogger).RegisterRoutes(e)
	delivery.NewWebhookHandler(analyzerSvc, appLogger).RegisterRoutes(e)
	delivery.NewHealthHandler(cfg, analyzerSvc).RegisterRoutes(e)

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title CompetiScope Agent API
// @version 1.0
// @description Intelligent Competitor Intelligence Agent
// @BasePath /
func main() {
	rootCmd := &cobra.Command{Use: "agent-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-agent.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing agent-service CLI: %s\n", err)
		os.Exit(1)
	}
}
