// Newsdesk is a news aggregation API.
//
// It periodically pulls articles from the external news providers it
// knows about, normalizes them into one local table, and serves them
// back through filterable, paginated endpoints with per-user
// preference-based personalization.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/run"
	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-retry"
	_ "golang.org/x/crypto/x509roots/fallback"
	_ "modernc.org/sqlite"

	"github.com/newsdeskhq/newsdesk/internal/api"
	"github.com/newsdeskhq/newsdesk/internal/fetch"
	"github.com/newsdeskhq/newsdesk/internal/logger"
	"github.com/newsdeskhq/newsdesk/internal/migrations"
	"github.com/newsdeskhq/newsdesk/internal/sqlite"
)

type config struct {
	Port     int    `env:"PORT, default=4444"`
	Database string `env:"DATABASE, required"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	CorsOrigin string `env:"CORS_ORIGIN, default=*"`

	// How often to pull from the providers on our own. Zero leaves
	// ingestion entirely to the POST /api/fetch trigger.
	FetchInterval time.Duration `env:"FETCH_INTERVAL, default=0"`
	// Deadline for one provider's fetch within a run.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT, default=10s"`

	NewsAPIKey     string `env:"NEWS_API_KEY"`
	GuardianAPIKey string `env:"GUARDIAN_API_KEY"`
	NYTimesAPIKey  string `env:"NYT_API_KEY"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	// Determine which logger format to use
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.LoggerFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	l := slog.New(logger.NewContextHandler(handler))
	slog.SetDefault(l)

	// Start the application
	if err := runApp(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func runApp(ctx context.Context, cfg config) error {
	slog.Info("running", "port", cfg.Port, "database", cfg.Database, "fetch_interval", cfg.FetchInterval)

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Retry until the database file is actually reachable (another
	// process may hold the lock during a deploy)
	if err := retry.Fibonacci(ctx, 1*time.Second, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("error pinging database: %s", err)
	}

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	repo := sqlite.New(dbx)
	coordinator := fetch.NewCoordinator(repo, cfg.FetchTimeout,
		fetch.NewNewsAPI(cfg.NewsAPIKey),
		fetch.NewGuardian(cfg.GuardianAPIKey),
		fetch.NewBBC(cfg.NewsAPIKey),
		fetch.NewNYTimes(cfg.NYTimesAPIKey),
	)
	s := api.NewServer(api.ServerConfig{
		Port:       cfg.Port,
		CorsOrigin: cfg.CorsOrigin,
	}, repo, repo, coordinator)

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	// The API server
	g.Add(func() error {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}
		return nil
	}, func(error) {
		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}
	})

	// The periodic fetch loop, when one is configured
	if cfg.FetchInterval > 0 {
		loopCtx, loopCancel := context.WithCancel(ctx)
		g.Add(func() error {
			ticker := time.NewTicker(cfg.FetchInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.RunFetch(loopCtx)
				case <-loopCtx.Done():
					return nil
				}
			}
		}, func(error) {
			loopCancel()
		})
	}

	err = g.Run()
	if errors.As(err, &run.SignalError{}) {
		slog.Info("shutting down", "signal", err)
		return nil
	}

	return err
}
