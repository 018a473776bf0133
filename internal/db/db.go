// Package db provides database access.
package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"github.com/starquake/trivia/internal/migrations"
)

// ErrUnsupportedDriver is returned when the database driver is not supported. We support sqlite and postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Dialect is the SQL flavour spoken by a driver.
type Dialect string

const (
	// DialectSQLite uses ? placeholders.
	DialectSQLite Dialect = "sqlite3"
	// DialectPostgres uses $n placeholders.
	DialectPostgres Dialect = "postgres"
)

//nolint:gochecknoinits // functions must be registered before the first sqlite connection opens
func init() {
	// SQLite's built-in lower only folds ASCII. Overriding it keeps LOWER consistent with postgres.
	sqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Resolve maps a configured driver name to the registered database/sql driver and its dialect.
func Resolve(driver string) (string, Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return "sqlite", DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return "pgx", DialectPostgres, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
}

// Open opens a database connection and verifies it with a ping.
func Open(
	ctx context.Context,
	driver, uri string,
	dbMaxOpenConns, dbMaxIdleConns int,
	dbConnMaxLifetime time.Duration,
) (*sql.DB, error) {
	driverName, _, err := Resolve(driver)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	conn, err = sql.Open(driverName, uri)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	conn.SetMaxOpenConns(dbMaxOpenConns)
	conn.SetMaxIdleConns(dbMaxIdleConns)
	conn.SetConnMaxLifetime(dbConnMaxLifetime)

	return conn, nil
}

// Migrate runs database migrations for the given dialect.
// A goose Provider is used instead of the package level goose state so parallel tests don't race.
func Migrate(ctx context.Context, conn *sql.DB, dialect Dialect) error {
	var gooseDialect goose.Dialect
	switch dialect {
	case DialectSQLite:
		gooseDialect = goose.DialectSQLite3
	case DialectPostgres:
		gooseDialect = goose.DialectPostgres
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, dialect)
	}

	fsys, err := fs.Sub(migrations.FS, string(dialect))
	if err != nil {
		return fmt.Errorf("error opening migrations for %s: %w", dialect, err)
	}

	provider, err := goose.NewProvider(gooseDialect, conn, fsys)
	if err != nil {
		return fmt.Errorf("error creating migration provider: %w", err)
	}

	if _, err = provider.Up(ctx); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}

// Rebind rewrites ? placeholders into the dialect's placeholder syntax.
// Queries are written with ? and must not contain a literal question mark.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)

			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

// ExecTx runs fn within a transaction. The transaction is rolled back if fn returns an error.
func ExecTx(ctx context.Context, conn *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %w)", err, rbErr)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
