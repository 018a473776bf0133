// Package app contains the main entrypoint for the server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/starquake/trivia/internal/cache"
	"github.com/starquake/trivia/internal/config"
	"github.com/starquake/trivia/internal/db"
	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/metrics"
	"github.com/starquake/trivia/internal/seed"
	"github.com/starquake/trivia/internal/server"
	"github.com/starquake/trivia/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Run starts the application server, connects to the database, runs migrations, and listens for incoming requests.
func Run(
	ctx context.Context,
	getenv func(string) string,
	stdout io.Writer,
) error {
	var err error
	mainCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var cfg *config.Config
	if cfg, err = config.Parse(getenv); err != nil {
		logger := logging.New(stdout, false, config.LogLevelDefault)
		msg := "error parsing config"
		logger.ErrorContext(ctx, msg, logging.ErrAttr(err))

		return fmt.Errorf("%s: %w", msg, err)
	}

	logger := logging.New(stdout, cfg.IsProduction(), cfg.LogLevel)

	_, dialect, err := db.Resolve(cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("error resolving database driver: %w", err)
	}

	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DBURI, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		return fmt.Errorf("error opening database connection: %w", err)
	}
	defer func() {
		conErr := conn.Close()
		if conErr != nil {
			logger.ErrorContext(ctx, "error closing database connection", logging.ErrAttr(conErr))
		}
	}()

	if err = db.Migrate(ctx, conn, dialect); err != nil {
		msg := "error migrating database"
		logger.ErrorContext(ctx, msg, logging.ErrAttr(err))

		return fmt.Errorf("%s: %w", msg, err)
	}

	questions := store.NewQuestionStore(conn, dialect, logger)
	stores := &store.Stores{
		Questions:  questions,
		Categories: store.NewCategoryStore(conn, logger),
	}

	if cfg.SeedDemoData {
		if _, err = seed.Load(ctx, questions, logger); err != nil {
			msg := "error seeding demo data"
			logger.ErrorContext(ctx, msg, logging.ErrAttr(err))

			return fmt.Errorf("%s: %w", msg, err)
		}
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.ErrorContext(ctx, "error closing redis client", logging.ErrAttr(closeErr))
			}
		}()

		categoryCache := cache.NewCategoryCache(client, stores.Categories, cfg.CategoryCacheTTL, logger)
		// Migrations may have changed the categories since the cache was filled.
		if invErr := categoryCache.Invalidate(ctx); invErr != nil {
			logger.WarnContext(ctx, "error invalidating category cache", logging.ErrAttr(invErr))
		}
		stores.Categories = categoryCache
		logger.InfoContext(ctx, "category cache enabled", slog.String("redis", cfg.RedisAddr))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(conn, string(dialect)))

	srv, err := server.NewServer(cfg, logger, stores, metrics.New(reg))
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	listenConfig := &net.ListenConfig{}
	ln, err := listenConfig.Listen(mainCtx, "tcp", net.JoinHostPort(cfg.Host, cfg.Port))
	if err != nil {
		return fmt.Errorf("error listening on %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	httpServer := &http.Server{
		ReadHeaderTimeout: readHeaderTimeout,
		Handler:           srv,
	}
	go func() {
		logger.InfoContext(ctx, "listening on "+ln.Addr().String(), slog.String("addr", ln.Addr().String()))
		httpErr := httpServer.Serve(ln)
		if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "error listening and serving", logging.ErrAttr(httpErr))
		}
	}()
	var wg sync.WaitGroup
	wg.Go(func() {
		<-mainCtx.Done()
		// make a new context for the Shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer shutdownCancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.ErrorContext(shutdownCtx, "error shutting down server", logging.ErrAttr(shutdownErr))
		}
	})
	wg.Wait()

	return nil
}
