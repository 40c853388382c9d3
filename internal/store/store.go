// Package store provides SQLite persistence for the email corpus.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store provides database operations over the persisted corpus.
// It is safe for concurrent readers; the corpus is never mutated during
// serving, so searches need no coordination.
type Store struct {
	db     *sql.DB
	dbPath string
}

const defaultSQLiteParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"

// sqlDateFormat is how UTC timestamps are rendered in the date column.
const sqlDateFormat = "2006-01-02 15:04:05"

// Open opens or creates the corpus database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + defaultSQLiteParams
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InitSchema creates the corpus tables and indexes if they don't exist.
func (s *Store) InitSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("execute schema.sql: %w", err)
	}
	return nil
}

// withTx executes fn within a database transaction. If fn returns an
// error, the transaction is rolled back; otherwise it is committed.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// insertInChunks executes a multi-value INSERT in chunks to stay within
// SQLite's parameter limit (999). valuesPerRow is how many parameters
// each VALUES tuple carries; valueBuilder generates the placeholders and
// args for each chunk of row indices.
func insertInChunks(tx *sql.Tx, totalRows, valuesPerRow int, queryPrefix string, valueBuilder func(start, end int) ([]string, []interface{})) error {
	const maxParams = 900
	chunkSize := maxParams / valuesPerRow
	if chunkSize < 1 {
		chunkSize = 1
	}

	for i := 0; i < totalRows; i += chunkSize {
		end := i + chunkSize
		if end > totalRows {
			end = totalRows
		}

		values, args := valueBuilder(i, end)
		query := queryPrefix + strings.Join(values, ",")
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

// Stats holds corpus-level statistics.
type Stats struct {
	EmailCount   int64
	FirstDate    string // UTC, YYYY-MM-DD HH:MM:SS; empty when corpus is empty
	LastDate     string
	DatabaseSize int64
}

// GetStats returns statistics about the persisted corpus.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM emails").Scan(&stats.EmailCount); err != nil {
		return nil, fmt.Errorf("count emails: %w", err)
	}

	if stats.EmailCount > 0 {
		var first, last sql.NullString
		err := s.db.QueryRow("SELECT MIN(date), MAX(date) FROM emails").Scan(&first, &last)
		if err != nil {
			return nil, fmt.Errorf("date range: %w", err)
		}
		stats.FirstDate = first.String
		stats.LastDate = last.String
	}

	if info, err := os.Stat(s.dbPath); err == nil {
		stats.DatabaseSize = info.Size()
	}

	return stats, nil
}
