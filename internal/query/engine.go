package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/store"
)

// ErrNoCriteria is returned by Search when the request has no filters.
// An unfiltered scan of the whole corpus is never what the caller wants.
var ErrNoCriteria = errors.New("search requires at least one criterion")

// ErrInvalidDate is returned by Search when a date bound doesn't parse
// as RequestDateFormat.
var ErrInvalidDate = errors.New("invalid date")

// Engine executes searches against a corpus store.
type Engine struct {
	store *store.Store
}

func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Search runs the request against the corpus. Matching rows are read in
// date-descending order, duplicates (same subject and body) are
// collapsed keeping the most recent copy, and the first MaxResults
// survivors form the page. Total counts all survivors.
func (e *Engine) Search(ctx context.Context, req *Request) (*ResultSet, error) {
	if req == nil || req.IsEmpty() {
		return nil, ErrNoCriteria
	}

	pred, err := compile(req)
	if err != nil {
		return nil, err
	}

	records, err := e.store.Scan(ctx, pred)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	deduped := collapseDuplicates(records)
	total := len(deduped)
	if len(deduped) > MaxResults {
		deduped = deduped[:MaxResults]
	}
	return &ResultSet{Records: deduped, Total: total}, nil
}

// GetEmail fetches a single record by corpus path. Stored paths carry
// the maildir trailing dot, so one is appended when the caller omitted
// it. Returns store.ErrNotFound when no such record exists.
func (e *Engine) GetEmail(ctx context.Context, path string) (*email.Record, error) {
	if !strings.HasSuffix(path, ".") {
		path += "."
	}
	return e.store.Get(ctx, path)
}

// RandomEmail returns one uniformly sampled record, or store.ErrNotFound
// when the corpus is empty.
func (e *Engine) RandomEmail(ctx context.Context) (*email.Record, error) {
	recs, err := e.store.Sample(ctx, 1, nil)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	return &recs[0], nil
}

// RandomToday returns one random record whose month and day match now,
// from any year. Returns store.ErrNotFound when no message in the
// corpus was sent on that calendar date.
func (e *Engine) RandomToday(ctx context.Context, now time.Time) (*email.Record, error) {
	recs, err := e.store.SampleMonthDay(ctx, 1, now.Month(), now.Day())
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	return &recs[0], nil
}

// compile translates the request into a store predicate, expanding the
// inclusive calendar-day bounds into half-open instants.
func compile(req *Request) (*store.Predicate, error) {
	pred := &store.Predicate{
		Text:        req.Query,
		Sender:      req.Sender,
		Recipient:   req.Recipient,
		Participant: req.Participant,
		Subject:     req.Subject,
		Body:        req.Body,
		Path:        req.Path,
	}

	if req.StartDate != "" {
		t, err := time.ParseInLocation(RequestDateFormat, req.StartDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidDate, req.StartDate)
		}
		pred.Start = &t
	}
	if req.EndDate != "" {
		t, err := time.ParseInLocation(RequestDateFormat, req.EndDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidDate, req.EndDate)
		}
		// Inclusive end day: match everything before the next midnight.
		end := t.AddDate(0, 0, 1)
		pred.End = &end
	}
	return pred, nil
}

// dedupKey identifies duplicate messages. A nil body (metadata-only
// ingest) never collapses with an empty one.
type dedupKey struct {
	subject string
	body    string
	hasBody bool
}

func keyOf(rec *email.Record) dedupKey {
	k := dedupKey{subject: rec.Subject}
	if rec.Body != nil {
		k.body = *rec.Body
		k.hasBody = true
	}
	return k
}

// collapseDuplicates keeps the first occurrence of each (subject, body)
// pair. Input is date-descending, so the kept copy is the most recent
// and the output stays sorted.
func collapseDuplicates(records []email.Record) []email.Record {
	seen := make(map[dedupKey]struct{}, len(records))
	out := records[:0:0]
	for i := range records {
		k := keyOf(&records[i])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, records[i])
	}
	return out
}
