// Package dupes analyzes and removes duplicate messages in the corpus.
// Two messages are duplicates when their subject and body are identical;
// the Enron maildir contains many copies of the same message filed in
// several folders.
package dupes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mprosk/enronvault/internal/store"
)

// KeepPolicy selects which copy of a duplicate group survives a Dedupe.
type KeepPolicy string

const (
	// KeepFirst keeps the copy that was ingested first.
	KeepFirst KeepPolicy = "first"
	// KeepEarliest keeps the copy with the oldest date.
	KeepEarliest KeepPolicy = "earliest"
	// KeepLatest keeps the copy with the newest date.
	KeepLatest KeepPolicy = "latest"
)

func (p KeepPolicy) orderBy() (string, error) {
	switch p {
	case KeepFirst:
		return "rowid ASC", nil
	case KeepEarliest:
		return "date ASC, path ASC", nil
	case KeepLatest:
		return "date DESC, path ASC", nil
	default:
		return "", fmt.Errorf("unknown keep policy %q", p)
	}
}

// Stats summarizes duplication across the whole corpus.
type Stats struct {
	TotalEmails     int64
	UniqueEmails    int64 // distinct (subject, body) pairs
	DuplicateEmails int64 // copies beyond the first in each group
	DuplicateGroups int64 // groups with 2 or more copies
	DuplicationRate float64
}

// Group is one set of identical messages.
type Group struct {
	Subject string
	Count   int64
	First   time.Time // oldest copy, UTC
	Last    time.Time // newest copy, UTC
	Paths   []string  // date-ascending
}

// Analyze computes corpus-wide duplication statistics.
func Analyze(ctx context.Context, s *store.Store) (*Stats, error) {
	db := s.DB()
	stats := &Stats{}

	err := db.QueryRowContext(ctx, `
		SELECT count(*),
		       (SELECT count(*) FROM (SELECT 1 FROM emails GROUP BY subject, body)),
		       (SELECT count(*) FROM (SELECT 1 FROM emails GROUP BY subject, body HAVING count(*) >= 2))
		FROM emails`,
	).Scan(&stats.TotalEmails, &stats.UniqueEmails, &stats.DuplicateGroups)
	if err != nil {
		return nil, fmt.Errorf("computing duplication stats: %w", err)
	}

	stats.DuplicateEmails = stats.TotalEmails - stats.UniqueEmails
	if stats.TotalEmails > 0 {
		stats.DuplicationRate = float64(stats.DuplicateEmails) / float64(stats.TotalEmails)
	}
	return stats, nil
}

// LargeGroups returns duplicate groups with at least minSize copies,
// largest first. Paths within a group are date-ascending.
func LargeGroups(ctx context.Context, s *store.Store, minSize int64) ([]Group, error) {
	if minSize < 2 {
		minSize = 2
	}
	rows, err := s.DB().QueryContext(ctx, `
		SELECT subject, count(*) AS copies, min(date), max(date),
		       group_concat(path, char(10))
		FROM (SELECT subject, body, date, path FROM emails ORDER BY date ASC, path ASC)
		GROUP BY subject, body
		HAVING copies >= ?
		ORDER BY copies DESC, subject ASC`, minSize)
	if err != nil {
		return nil, fmt.Errorf("querying duplicate groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		var first, last, paths string
		if err := rows.Scan(&g.Subject, &g.Count, &first, &last, &paths); err != nil {
			return nil, err
		}
		if g.First, err = parseStoredDate(first); err != nil {
			return nil, err
		}
		if g.Last, err = parseStoredDate(last); err != nil {
			return nil, err
		}
		g.Paths = splitLines(paths)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Dedupe deletes all but one copy of every duplicate group, choosing
// the survivor per policy. Returns the number of rows removed.
func Dedupe(ctx context.Context, s *store.Store, policy KeepPolicy) (int64, error) {
	orderBy, err := policy.orderBy()
	if err != nil {
		return 0, err
	}

	// row_number is stable over the ORDER BY, so exactly one row per
	// (subject, body) group has rn = 1.
	res, err := s.DB().ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM emails WHERE path NOT IN (
			SELECT path FROM (
				SELECT path,
				       row_number() OVER (PARTITION BY subject, body ORDER BY %s) AS rn
				FROM emails
			) WHERE rn = 1
		)`, orderBy))
	if err != nil {
		return 0, fmt.Errorf("removing duplicates: %w", err)
	}
	return res.RowsAffected()
}

func parseStoredDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date %q: %w", s, err)
	}
	return t, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
