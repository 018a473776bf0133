// Command seed migrates the database and loads the demo questions into an empty question table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/starquake/trivia/internal/config"
	"github.com/starquake/trivia/internal/db"
	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/seed"
	"github.com/starquake/trivia/internal/store"
)

func run(ctx context.Context, args []string, getenv func(string) string, stdout io.Writer) error {
	cfg, err := config.Parse(getenv)
	if err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}

	fset := flag.NewFlagSet("seed", flag.ContinueOnError)
	fset.SetOutput(stdout)
	driver := fset.String("driver", cfg.DBDriver, "database driver: sqlite or postgres")
	uri := fset.String("uri", cfg.DBURI, "database URI")
	if err = fset.Parse(args); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	logger := logging.New(stdout, cfg.IsProduction(), cfg.LogLevel)

	_, dialect, err := db.Resolve(*driver)
	if err != nil {
		return fmt.Errorf("error resolving database driver: %w", err)
	}

	conn, err := db.Open(ctx, *driver, *uri, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		return fmt.Errorf("error opening database connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "error closing database connection", logging.ErrAttr(closeErr))
		}
	}()

	if err = db.Migrate(ctx, conn, dialect); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	n, err := seed.Load(ctx, store.NewQuestionStore(conn, dialect, logger), logger)
	if err != nil {
		return fmt.Errorf("error seeding database: %w", err)
	}
	logger.InfoContext(ctx, "seed finished", slog.Int("inserted", n), slog.String("driver", *driver))

	return nil
}

func main() {
	if os.Getenv("APP_ENV") != config.AppEnvironmentProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(context.Background(), os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
