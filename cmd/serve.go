package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"

	"stockwatch/internal/app/db"
	"stockwatch/internal/app/events"
	"stockwatch/internal/app/quote"
	"stockwatch/internal/app/session"
	"stockwatch/internal/app/user"
	"stockwatch/internal/app/view"
	"stockwatch/internal/configs"
	"stockwatch/internal/handler"
	"stockwatch/internal/pkg/logx"
)

// sessionSweepInterval is how often the in-memory session store drops expired records.
const sessionSweepInterval = 5 * time.Minute

type serveCmd struct {
	migrate bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "start the HTTP server" }
func (*serveCmd) Usage() string {
	return `serve [-migrate=false]

Starts the watchlist web server and blocks until SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.migrate, "migrate", true, "apply pending database migrations before serving")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, ok := loadConfig()
	if !ok {
		return subcommands.ExitFailure
	}

	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("session_backend", cfg.Session.Backend).
		Str("quote_format", cfg.Quote.Format).
		Bool("events_enabled", len(cfg.Kafka.Brokers) > 0).
		Msg("Configuration loaded successfully")

	if err := c.run(ctx, cfg); err != nil {
		logx.Error(err, "Server stopped with error")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context, cfg *configs.AppConfig) error {
	pool, err := db.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := db.OpenDB(pool)
	defer sqlDB.Close()

	if c.migrate {
		if err := db.Migrate(ctx, sqlDB); err != nil {
			return err
		}
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	views, err := view.New()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logx.Error(err, "Failed to close event publisher")
		}
	}()

	deps := &handler.AppDeps{
		Config: cfg,
		Users:  user.NewPostgresStore(sqlDB),
		Sessions: session.NewManager(sessions, session.Options{
			Secret:       cfg.Session.Secret,
			TTL:          cfg.Session.TTL,
			SecureCookie: cfg.Session.SecureCookie,
		}),
		Quotes: fetcher,
		Views:  views,
		Events: publisher,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler.Router(ctx, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// the dashboard fetches every symbol before it writes
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logx.Info("Stockwatch server starting", "addr", "http://localhost"+serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logx.Info("Server gracefully stopped.")
	return nil
}

func newSessionStore(ctx context.Context, cfg *configs.AppConfig) (session.Store, func(), error) {
	if cfg.Session.Backend != configs.SessionBackendRedis {
		return session.NewMemoryStore(ctx, sessionSweepInterval), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := session.NewRedisStore(rdb)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logx.Error(err, "Failed to close redis client")
		}
	}
	return store, closeFn, nil
}

func newFetcher(cfg *configs.AppConfig) (*quote.Fetcher, error) {
	return quote.NewFromConfig(quote.Config{
		URLTemplate: cfg.Quote.URLTemplate,
		Format:      cfg.Quote.Format,
		Selectors: quote.Selectors{
			Name:   cfg.Quote.NameSelector,
			Price:  cfg.Quote.PriceSelector,
			Change: cfg.Quote.ChangeSelector,
		},
		Timeout:   cfg.Quote.Timeout,
		UserAgent: cfg.Quote.UserAgent,
	})
}

func newPublisher(cfg *configs.AppConfig) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
}
