package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"

	"github.com/nemopss/fin-ng/backend/api"
	"github.com/nemopss/fin-ng/backend/app"
	"github.com/nemopss/fin-ng/backend/config"
	_ "github.com/nemopss/fin-ng/backend/docs"
	"github.com/nemopss/fin-ng/backend/logging"
)

// @title Fin Dash API
// @version 1.0
// @description Financial transactions dashboard: authentication, transactions and aggregate statistics.
// @BasePath /
// @SecurityDefinitions.apikey ApiKeyAuth
// @In header
// @Name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Конфигурация из окружения и .env
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StoreBackend, err)
	}
	defer storage.Close()
	logger.Info("Storage ready", "backend", cfg.StoreBackend)

	publisher, err := app.NewPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer publisher.Close()

	handler := app.NewHandler(cfg, storage, publisher, logger)
	r := api.NewRouter(handler, logger)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return app.NewServer(":"+cfg.Port, r, logger, cfg.ShutdownTimeout).Run(ctx)
}
