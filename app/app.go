// Package app собирает сервер из конфигурации: хранилище, издатель событий
// и HTTP-сервер с корректной остановкой. Используется main и утилитами из cmd/.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nemopss/fin-ng/backend/api"
	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/config"
	"github.com/nemopss/fin-ng/backend/db"
	"github.com/nemopss/fin-ng/backend/events"
	"github.com/nemopss/fin-ng/backend/mongostore"
)

// OpenStorage открывает хранилище, выбранное STORE_BACKEND. Реляционные
// хранилища применяют миграции, Mongo создаёт индексы.
func OpenStorage(ctx context.Context, cfg *config.Config) (api.Storage, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		s, err := db.NewStorage(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := db.NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMongo:
		s, err := mongostore.NewStorage(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// NewPublisher returns an AMQP publisher when AMQP_URL is set and events.Nop otherwise.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL is not set, transaction events are disabled")
		return events.Nop{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange)
	return p, nil
}

func NewHandler(cfg *config.Config, storage api.Storage, publisher events.Publisher, logger *slog.Logger) *api.Handler {
	return api.NewHandler(storage, auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		api.WithPublisher(publisher),
		api.WithLogger(logger),
		api.WithPerUserScope(cfg.PerUserScope()),
		api.WithStatsWindow(cfg.StatsWindow),
	)
}
