// Package database provides connection helpers for the database input module.
// The runtime stays driver-agnostic through database/sql; postgres and sqlite
// drivers are registered by the blank imports below.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"      // postgres driver
	_ "modernc.org/sqlite"     // sqlite driver (pure Go)
)

// Config holds database connection configuration.
type Config struct {
	// ConnectionString is the driver-specific DSN
	ConnectionString string
	// Driver overrides the driver inferred from the connection string
	Driver string
	// ConnectTimeout bounds the initial connectivity check
	ConnectTimeout time.Duration
}

// Open opens a database connection and verifies connectivity.
// Returns the connection and the resolved driver name.
func Open(cfg Config) (*sql.DB, string, error) {
	if cfg.ConnectionString == "" {
		return nil, "", fmt.Errorf("connection string is required")
	}

	driver := cfg.Driver
	if driver == "" {
		driver = InferDriver(cfg.ConnectionString)
	}
	if driver == "" {
		return nil, "", fmt.Errorf("unable to infer driver from connection string; set 'driver' explicitly")
	}

	db, err := sql.Open(driver, cfg.ConnectionString)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s connection: %w", driver, err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("pinging %s database: %w", driver, err)
	}

	return db, driver, nil
}

// InferDriver infers the sql driver name from a connection string.
// Returns "" when the format is not recognized.
func InferDriver(connStr string) string {
	lower := strings.ToLower(connStr)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return "postgres"
	case strings.HasPrefix(lower, "file:"),
		strings.HasSuffix(lower, ".db"),
		strings.HasSuffix(lower, ".sqlite"),
		strings.HasSuffix(lower, ".sqlite3"),
		lower == ":memory:":
		return "sqlite"
	default:
		return ""
	}
}
