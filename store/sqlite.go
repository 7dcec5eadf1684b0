package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/brunoscheufler/pim/util"
	_ "modernc.org/sqlite"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	ConnMaxLifetime time.Duration
	EnableWAL       bool
}

// DefaultDatabaseConfig returns sensible defaults for database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		ConnMaxLifetime: 5 * time.Minute,
		EnableWAL:       true,
	}
}

// SQLiteOptions configures a SQLite-backed collection
type SQLiteOptions struct {
	// Name of the database file without extension
	Name string
	// BasePath is the directory holding the .data folder. Defaults to the working directory.
	BasePath string
	// Table holding the collection
	Table  string
	Config DatabaseConfig
}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SQLitePersister stores a collection as ordered rows of JSON records.
// Every Save replaces the whole table inside one transaction.
type SQLitePersister[T any] struct {
	db    *sql.DB
	table string
}

var _ Persister[Note] = (*SQLitePersister[Note])(nil)

func NewSQLitePersister[T any](opts SQLiteOptions) (*SQLitePersister[T], error) {
	if !tableNamePattern.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}

	db, err := createSQLiteDatabaseWithPath(opts.Name, opts.BasePath, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("could not create sqlite db: %w", err)
	}

	if err := createCollectionTable(db, opts.Table); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create %s table: %w", opts.Table, err)
	}

	return &SQLitePersister[T]{db: db, table: opts.Table}, nil
}

func (s *SQLitePersister[T]) Load(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT record FROM %s ORDER BY position`, s.table)

	var rows *sql.Rows
	err := util.Retry(ctx, defaultRetryConfig, func() error {
		var queryErr error
		rows, queryErr = s.db.QueryContext(ctx, query)
		return queryErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		var record T
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (s *SQLitePersister[T]) Save(ctx context.Context, records []T) error {
	encoded := make([]string, 0, len(records))
	for _, record := range records {
		b, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		encoded = append(encoded, string(b))
	}

	err := util.Retry(ctx, defaultRetryConfig, func() error {
		return s.replaceAll(ctx, encoded)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLitePersister[T]) replaceAll(ctx context.Context, encoded []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (position, record) VALUES (?, ?)`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, raw := range encoded {
		if _, err := stmt.ExecContext(ctx, i, raw); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLitePersister[T]) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLitePersister[T]) Close() error {
	return s.db.Close()
}

func createCollectionTable(db *sql.DB, table string) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		position INTEGER PRIMARY KEY,
		record TEXT NOT NULL
	);`, table)

	_, err := db.Exec(query)
	return err
}

func createSQLiteDatabaseWithPath(name, basePath string, config DatabaseConfig) (*sql.DB, error) {
	var dir string
	if basePath != "" {
		dir = filepath.Join(basePath, ".data")
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get working directory: %w", err)
		}
		dir = filepath.Join(wd, ".data")
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("could not create data dir: %w", err)
	}

	file := filepath.Join(dir, fmt.Sprintf("%s.db", name))

	dsn := fmt.Sprintf("file:%s", file)
	if config.EnableWAL {
		// https://www.sqlite.org/pragma.html#pragma_journal_mode
		// https://www.sqlite.org/pragma.html#pragma_busy_timeout
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite db: %w", err)
	}

	// One writer per process; both collections share the file.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	return db, nil
}

// isSQLiteBusyError checks if an error is a SQLite BUSY error that should be retried
func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	errorStr := err.Error()
	return strings.Contains(errorStr, "database is locked") ||
		strings.Contains(errorStr, "SQLITE_BUSY")
}

var defaultRetryConfig = util.RetryConfig{
	MaxRetries:      5,
	BaseDelay:       10 * time.Millisecond,
	MaxDelay:        1 * time.Second,
	ShouldRetryFunc: isSQLiteBusyError,
}
