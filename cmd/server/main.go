package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/racemap/cell-service-go/internal/api"
	"github.com/racemap/cell-service-go/internal/cache"
	"github.com/racemap/cell-service-go/internal/config"
	"github.com/racemap/cell-service-go/internal/database"
	"github.com/racemap/cell-service-go/internal/handler"
	"github.com/racemap/cell-service-go/internal/ingest"
	"github.com/racemap/cell-service-go/internal/logger"
	"github.com/racemap/cell-service-go/internal/repository"
	"github.com/racemap/cell-service-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	cellRepo := repository.NewCellRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	lookupCache := cache.New(cfg.LookupCacheSize, cfg.LookupCacheTTL)

	cellService := service.NewCellService(cellRepo, lookupCache)
	cellHandler := handler.NewCellHandler(cellService)

	updater := ingest.NewUpdater(
		cfg,
		updateRepo,
		ingest.NewFetcher(cfg.TempFolder, cfg.DownloadTimeout),
		ingest.NewLoader(cellRepo, lookupCache),
	)
	if cfg.UpdateDisabled {
		slog.Info("periodic updates disabled")
	} else {
		updater.Start()
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(cellHandler)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	// Stop after the server so an in-flight update cycle can finish without
	// new requests piling up behind it.
	updater.Stop()

	slog.Info("server stopped")
}
