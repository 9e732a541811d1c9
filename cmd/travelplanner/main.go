package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/neexbeast/travel-planner/internal/audit"
	"github.com/neexbeast/travel-planner/internal/cli"
	"github.com/neexbeast/travel-planner/internal/config"
	"github.com/neexbeast/travel-planner/internal/provider"
	"github.com/neexbeast/travel-planner/internal/storage"
	"github.com/neexbeast/travel-planner/internal/travel"
)

func main() {
	// stdout belongs to the prompt loop.
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := run(log); err != nil {
		log.Error("travel planner exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		log.Warn("provider keys not set; those lookups will fail", "keys", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openHistory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing %s history: %w", cfg.HistoryBackend, err)
	}
	log.Info("history store ready", "backend", cfg.HistoryBackend)

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := audit.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("audit publishing disabled", "err", err)
		} else {
			defer func() {
				if err := pub.Close(); err != nil {
					log.Error("closing audit publisher", "err", err)
				}
			}()
			store = audit.NewStore(store, pub, log)
			log.Info("audit publishing enabled", "topic", cfg.KafkaTopic)
		}
	}

	planner := travel.NewPlanner(travel.Clients{
		Weather: provider.NewWeatherClient(cfg.Weather()),
		Places:  provider.NewPlacesClient(cfg.Places()),
		Rates:   provider.NewCurrencyClient(cfg.Currency()),
		Images:  provider.NewImageryClient(cfg.Imagery()),
	}, store, cfg.BaseCurrency, log)

	session := cli.NewSession(planner, store, os.Stdin, os.Stdout, log)
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("running session: %w", err)
	}

	log.Info("session ended")
	return nil
}

// openHistory connects the configured backend. The returned func releases it.
func openHistory(ctx context.Context, cfg config.Config, log *slog.Logger) (travel.HistoryStore, func(), error) {
	switch cfg.HistoryBackend {
	case "postgres":
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return storage.NewHistoryRepository(pool), pool.Close, nil

	case "redis":
		client, err := storage.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return storage.NewRedisHistory(client), closer(client, log), nil

	case "memory":
		log.Warn("history is kept in memory and lost on exit")
		return storage.NewMemoryHistory(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
}

func closer(c io.Closer, log *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Error("closing history connection", "err", err)
		}
	}
}
