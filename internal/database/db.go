// Package database provides SQLite connection handling for CapScope.
//
// The application uses a 2-database layout:
//   - data.db:  ingested observations (durable, rebuilt from group CSVs)
//   - cache.db: computed metric snapshots (ephemeral, safe to delete)
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Profile selects the PRAGMA set for a database.
type Profile string

const (
	// ProfileStandard - balanced configuration for durable data
	ProfileStandard Profile = "standard"
	// ProfileCache - maximum speed for ephemeral data
	ProfileCache Profile = "cache"
)

// DB wraps a SQLite connection with its profile and name.
type DB struct {
	conn    *sql.DB
	path    string
	profile Profile
	name    string
}

// Config holds database configuration.
type Config struct {
	Path    string
	Profile Profile
	Name    string // Friendly name for logging (e.g. "data", "cache")
}

// New opens a SQLite database with profile-specific PRAGMAs applied.
func New(cfg Config) (*DB, error) {
	// file: URIs (in-memory test databases) skip path resolution
	if !strings.HasPrefix(cfg.Path, "file:") {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}

	conn, err := sql.Open("sqlite", connectionString(cfg.Path, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configurePool(conn, cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, path: cfg.Path, profile: cfg.Profile, name: cfg.Name}, nil
}

// connectionString builds the SQLite DSN with profile-specific PRAGMAs.
func connectionString(path string, profile Profile) string {
	connStr := path + "?_pragma=journal_mode(WAL)"

	switch profile {
	case ProfileCache:
		connStr += "&_pragma=synchronous(OFF)"
		connStr += "&_pragma=auto_vacuum(FULL)"
		connStr += "&_pragma=temp_store(MEMORY)"
	default:
		connStr += "&_pragma=synchronous(NORMAL)"
		connStr += "&_pragma=auto_vacuum(INCREMENTAL)"
		connStr += "&_pragma=temp_store(MEMORY)"
	}

	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=cache_size(-64000)" // 64MB (negative = KB)

	return connStr
}

func configurePool(conn *sql.DB, profile Profile) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	if profile == ProfileCache {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB, used by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging.
func (db *DB) Name() string {
	return db.name
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
