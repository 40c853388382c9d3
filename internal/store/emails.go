package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mprosk/enronvault/internal/email"
)

// ErrNotFound indicates a point lookup or sample matched no record.
var ErrNotFound = errors.New("email not found")

const emailColumns = "path, date, tz_offset, sender, recipient, subject, body"

// UpsertEmail inserts a record, replacing any existing row with the
// same path. The second write's field values win.
func (s *Store) UpsertEmail(rec *email.Record) error {
	dateUTC, offset := splitDate(rec.Date)
	_, err := s.db.Exec(`
		INSERT INTO emails (`+emailColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			date = excluded.date,
			tz_offset = excluded.tz_offset,
			sender = excluded.sender,
			recipient = excluded.recipient,
			subject = excluded.subject,
			body = excluded.body
	`, rec.Path, dateUTC, offset, rec.Sender, rec.Recipient, rec.Subject, bodyArg(rec.Body))
	if err != nil {
		return fmt.Errorf("upsert email %s: %w", rec.Path, err)
	}
	return nil
}

// ReplaceAll atomically replaces the entire corpus with the given
// records. Either every record is written or none of them is: any
// failure rolls the transaction back, leaving the previous corpus
// intact.
func (s *Store) ReplaceAll(records []email.Record) error {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM emails"); err != nil {
			return fmt.Errorf("clear emails: %w", err)
		}

		const valuesPerRow = 7
		prefix := "INSERT OR REPLACE INTO emails (" + emailColumns + ") VALUES "
		return insertInChunks(tx, len(records), valuesPerRow, prefix,
			func(start, end int) ([]string, []interface{}) {
				values := make([]string, 0, end-start)
				args := make([]interface{}, 0, (end-start)*valuesPerRow)
				for i := start; i < end; i++ {
					rec := &records[i]
					dateUTC, offset := splitDate(rec.Date)
					values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
					args = append(args, rec.Path, dateUTC, offset,
						rec.Sender, rec.Recipient, rec.Subject, bodyArg(rec.Body))
				}
				return values, args
			})
	})
	if err != nil {
		return fmt.Errorf("replace corpus: %w", err)
	}
	return nil
}

// Get returns the record stored under exactly the given path, or
// ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (*email.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+emailColumns+" FROM emails WHERE path = ?", path)
	rec, err := scanEmail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return rec, nil
}

// Scan returns every record matching the predicate, ordered by date
// descending (path ascending breaks ties deterministically). A nil
// predicate matches the whole corpus.
func (s *Store) Scan(ctx context.Context, p *Predicate) ([]email.Record, error) {
	conditions, args := p.toSQL()
	query := fmt.Sprintf(
		"SELECT %s FROM emails %s ORDER BY date DESC, path ASC",
		emailColumns, whereClause(conditions))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan emails: %w", err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

// Count returns the number of records matching the predicate.
func (s *Store) Count(ctx context.Context, p *Predicate) (int64, error) {
	conditions, args := p.toSQL()
	query := "SELECT COUNT(*) FROM emails " + whereClause(conditions)

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	return n, nil
}

// Sample returns up to n uniformly random records matching the
// predicate. A nil predicate samples the whole corpus.
func (s *Store) Sample(ctx context.Context, n int, p *Predicate) ([]email.Record, error) {
	conditions, args := p.toSQL()
	query := fmt.Sprintf(
		"SELECT %s FROM emails %s ORDER BY RANDOM() LIMIT ?",
		emailColumns, whereClause(conditions))
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sample emails: %w", err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

// SampleMonthDay returns up to n random records whose date falls on the
// given month and day, regardless of year.
func (s *Store) SampleMonthDay(ctx context.Context, n int, month time.Month, day int) ([]email.Record, error) {
	mmdd := fmt.Sprintf("%02d-%02d", int(month), day)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+emailColumns+" FROM emails WHERE strftime('%m-%d', date) = ? ORDER BY RANDOM() LIMIT ?",
		mmdd, n)
	if err != nil {
		return nil, fmt.Errorf("sample emails for %s: %w", mmdd, err)
	}
	defer rows.Close()

	return collectEmails(rows)
}

// splitDate renders a timestamp as its UTC wall time plus the original
// zone offset in seconds east of UTC.
func splitDate(t time.Time) (string, int) {
	_, offset := t.Zone()
	return t.UTC().Format(sqlDateFormat), offset
}

// joinDate reconstructs the original zoned timestamp from the stored
// UTC wall time and offset.
func joinDate(dateUTC string, offset int) (time.Time, error) {
	t, err := time.ParseInLocation(sqlDateFormat, dateUTC, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.FixedZone("", offset)), nil
}

func bodyArg(body *string) interface{} {
	if body == nil {
		return nil
	}
	return *body
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmail(row rowScanner) (*email.Record, error) {
	var (
		rec     email.Record
		dateUTC string
		offset  int
		body    sql.NullString
	)
	if err := row.Scan(&rec.Path, &dateUTC, &offset,
		&rec.Sender, &rec.Recipient, &rec.Subject, &body); err != nil {
		return nil, err
	}

	date, err := joinDate(dateUTC, offset)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", dateUTC, err)
	}
	rec.Date = date

	if body.Valid {
		rec.Body = &body.String
	}
	return &rec, nil
}

func collectEmails(rows *sql.Rows) ([]email.Record, error) {
	var records []email.Record
	for rows.Next() {
		rec, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
