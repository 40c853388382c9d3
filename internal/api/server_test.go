package api

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mprosk/enronvault/internal/config"
	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/query"
	"github.com/mprosk/enronvault/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockEngine serves canned records keyed by path.
type mockEngine struct {
	records   map[string]*email.Record
	searchRes *query.ResultSet
	searchErr error
}

func (m *mockEngine) Search(ctx context.Context, req *query.Request) (*query.ResultSet, error) {
	if req == nil || req.IsEmpty() {
		return nil, query.ErrNoCriteria
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchRes, nil
}

func (m *mockEngine) GetEmail(ctx context.Context, path string) (*email.Record, error) {
	if rec, ok := m.records[path]; ok {
		return rec, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockEngine) RandomEmail(ctx context.Context) (*email.Record, error) {
	for _, rec := range m.records {
		return rec, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockEngine) RandomToday(ctx context.Context, now time.Time) (*email.Record, error) {
	for _, rec := range m.records {
		if rec.Date.Month() == now.Month() && rec.Date.Day() == now.Day() {
			return rec, nil
		}
	}
	return nil, store.ErrNotFound
}

type mockStats struct {
	stats *store.Stats
	err   error
}

func (m *mockStats) GetStats() (*store.Stats, error) {
	return m.stats, m.err
}

func testRecord() *email.Record {
	body := "i'll be out of the office\n"
	return &email.Record{
		Path:      "maildir/allen-p/inbox/1.",
		Date:      time.Date(2001, 4, 10, 9, 30, 0, 0, time.FixedZone("", -7*3600)),
		Sender:    "phillip.allen@enron.com",
		Recipient: "tim.belden@enron.com",
		Subject:   "out of office",
		Body:      &body,
	}
}

func newTestServer(t *testing.T, apiKey string) (*Server, *mockEngine) {
	t.Helper()

	rec := testRecord()
	eng := &mockEngine{
		records:   map[string]*email.Record{rec.Path: rec},
		searchRes: &query.ResultSet{Records: []email.Record{*rec}, Total: 1},
	}
	stats := &mockStats{stats: &store.Stats{
		EmailCount:   10,
		FirstDate:    "2000-01-01 00:00:00",
		LastDate:     "2002-06-01 00:00:00",
		DatabaseSize: 4096,
	}}
	cfg := &config.Config{
		Server: config.ServerConfig{APIPort: 8080, BindAddr: "127.0.0.1", APIKey: apiKey},
	}
	return NewServer(cfg, eng, stats, testLogger()), eng
}
