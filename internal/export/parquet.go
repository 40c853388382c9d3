// Package export writes the corpus out as a Parquet file for columnar
// analysis. It attaches the SQLite database to an in-memory DuckDB
// session and lets DuckDB do the conversion.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// WriteParquet copies every row of the emails table from the SQLite
// database at dbPath into a Parquet file at outPath. Returns the number
// of rows written.
func WriteParquet(ctx context.Context, dbPath, outPath string) (int64, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return 0, fmt.Errorf("corpus database: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return 0, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	// Session settings (SET, ATTACH) don't propagate across pooled
	// connections, so pin to one.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("SET threads = %d", runtime.GOMAXPROCS(0))); err != nil {
		return 0, fmt.Errorf("set threads: %w", err)
	}
	if _, err := db.ExecContext(ctx, "INSTALL sqlite; LOAD sqlite;"); err != nil {
		return 0, fmt.Errorf("load sqlite extension: %w", err)
	}

	attach := fmt.Sprintf("ATTACH '%s' AS corpus (TYPE sqlite, READ_ONLY)", escapeSQL(dbPath))
	if _, err := db.ExecContext(ctx, attach); err != nil {
		return 0, fmt.Errorf("attach corpus database: %w", err)
	}

	copySQL := fmt.Sprintf(`
		COPY (
			SELECT path,
			       CAST(date AS TIMESTAMP) AS date,
			       tz_offset, sender, recipient, subject, body
			FROM corpus.emails
			ORDER BY date, path
		) TO '%s' (FORMAT PARQUET, COMPRESSION ZSTD)`, escapeSQL(outPath))
	if _, err := db.ExecContext(ctx, copySQL); err != nil {
		return 0, fmt.Errorf("writing parquet: %w", err)
	}

	var rows int64
	err = db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT count(*) FROM read_parquet('%s')", escapeSQL(outPath)),
	).Scan(&rows)
	if err != nil {
		return 0, fmt.Errorf("verifying parquet: %w", err)
	}
	return rows, nil
}

// escapeSQL doubles single quotes for embedding a path in a literal.
func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
