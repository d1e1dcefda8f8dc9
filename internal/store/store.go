package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Driver names a database/sql driver.
type Driver string

const (
	MySQL  Driver = "mysql"
	SQLite Driver = "sqlite3"
)

// Config holds connection settings for a Magento database.
type Config struct {
	Driver      Driver
	DSN         string
	TablePrefix string

	// Secure selects web/secure/base_url instead of web/unsecure/base_url.
	Secure bool
}

// Store provides read-only access to Magento store configuration.
type Store struct {
	db     *sql.DB
	prefix string
	secure bool
}

// Open connects to the database described by cfg and verifies the
// connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case MySQL, SQLite:
	case "":
		cfg.Driver = MySQL
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A run issues a few dozen sequential queries; one connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, prefix: cfg.TablePrefix, secure: cfg.Secure}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// table returns the prefixed name of a Magento table.
func (s *Store) table(name string) string {
	return s.prefix + name
}
