package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"modernc.org/sqlite" // SQLite driver, registered as "sqlite"

	"minisocial/internal/config"
)

func init() {
	// sqlx only knows "sqlite3" as a question-mark driver.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	// SQLite's built-in lower() folds ASCII only. Replace it on every
	// connection so LOWER(...) LIKE matches Go's strings.ToLower.
	if err := sqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register sqlite lower: %v", err))
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Connect opens the configured database. Repositories write portable SQL with
// "?" placeholders and Rebind it, so both drivers share one code path.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return connectPostgres(cfg.DatabaseURL)
	case config.DriverSQLite:
		return ConnectSQLite(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func connectPostgres(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	log.Println("Connected to postgres successfully")
	return db, nil
}

// ConnectSQLite opens a file-backed SQLite database. A single connection
// serializes writers, so services must not query through the pool while
// holding a transaction. Timestamps are stored as UTC text in a fixed layout,
// which keeps ORDER BY created_at chronological.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	log.Printf("Connected to sqlite database at %s", path)
	return db, nil
}
