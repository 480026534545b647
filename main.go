package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diabetesmx/ada-advisor/internal/bot"
	"github.com/diabetesmx/ada-advisor/internal/bot/state"
	"github.com/diabetesmx/ada-advisor/internal/catalog"
	"github.com/diabetesmx/ada-advisor/internal/config"
	"github.com/diabetesmx/ada-advisor/internal/domain"
	"github.com/diabetesmx/ada-advisor/internal/logger"
	"github.com/diabetesmx/ada-advisor/internal/server"
	"github.com/diabetesmx/ada-advisor/internal/services"
	"github.com/diabetesmx/ada-advisor/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatalf("Failed to init logger: %v", err)
	}
	logger.Info("Starting ADA advisor", "http_port", cfg.HTTPPort, "storage", cfg.Storage.Backend)

	cat := catalog.Load(cfg.Catalog.Path).WithInstitution(cfg.Catalog.Institution)

	var store domain.ProfileStore
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pg, err := storage.NewPostgresStore(cfg.Storage.DB)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		store = pg
	default:
		csvStore, err := storage.NewCSVStore(cfg.Storage.CSVPath)
		if err != nil {
			logger.Fatalf("Failed to open profile store: %v", err)
		}
		store = csvStore
	}
	logger.Info("Profile store ready", "backend", cfg.Storage.Backend)

	profiles := services.NewProfileService(store)
	evals := services.NewEvaluationService(cat)
	bolusSvc := services.NewBolusService()
	reports := services.NewReportService(evals)

	srv := server.New(store, cat, profiles, evals, bolusSvc, reports)
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cfg.TelegramToken != "" {
		states, err := newStateManager(cfg.State)
		if err != nil {
			logger.Fatalf("Failed to init state manager: %v", err)
		}
		telegramBot, err := bot.NewBot(cfg.TelegramToken, states, profiles, evals, bolusSvc)
		if err != nil {
			logger.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Bot stopped with error: %v", err)
			}
		}()
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, bot surface disabled")
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	logger.Info("Shutdown complete")
}

func newStateManager(cfg config.StateConfig) (state.StateManager, error) {
	if cfg.Backend == config.StateRedis {
		return state.NewRedisManager(cfg.RedisHost, cfg.RedisPort)
	}
	return state.NewManager(), nil
}
