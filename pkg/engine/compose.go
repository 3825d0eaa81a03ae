package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openclawco/recall/pkg/config"
	"github.com/openclawco/recall/pkg/eventstream"
	"github.com/openclawco/recall/pkg/eventstream/kafka"
	"github.com/openclawco/recall/pkg/eventstream/nop"
	"github.com/openclawco/recall/pkg/logger"
	"github.com/openclawco/recall/pkg/storage"
	"github.com/openclawco/recall/pkg/storage/inmemory"
	"github.com/openclawco/recall/pkg/storage/postgres"
	"github.com/openclawco/recall/pkg/storage/sqlite"
)

// NewFromConfig composes an engine from a loaded configuration: the
// storage driver, eventstream provider, and logger format/level are all
// selected here. A nil config gets NewDefaultConfig(). The engine owns
// the constructed store and publisher; release them with Close.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		store.Close()
		return nil, err
	}

	return New(Config{
		Store:     store,
		Publisher: publisher,
		Logger:    newLogger(cfg.Log),
	})
}

func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite store: %w", err)
		}
		return store, nil

	case "postgres":
		store, err := postgres.NewStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("creating postgres store: %w", err)
		}
		return store, nil

	case "inmemory":
		return inmemory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}

func newPublisher(cfg config.EventsConfig) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil

	case "kafka":
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return publisher, nil

	default:
		return nil, fmt.Errorf("unsupported events provider: %q", cfg.Provider)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	return logger.New(
		logger.WithDebug(cfg.Level == "debug"),
		logger.WithJSON(cfg.Format == "json"),
		logger.WithPretty(cfg.Format == "pretty"),
	)
}
