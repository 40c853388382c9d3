package dupes

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/store"
	"github.com/mprosk/enronvault/internal/testutil"
)

func newTestStore(t *testing.T, records []email.Record) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if err := s.ReplaceAll(records); err != nil {
		t.Fatalf("load records: %v", err)
	}
	return s
}

func rec(path, subject, body string, date time.Time) email.Record {
	return email.Record{
		Path:      path,
		Date:      date,
		Sender:    "sender@enron.com",
		Recipient: "recipient@enron.com",
		Subject:   subject,
		Body:      &body,
	}
}

// fixture: "dup" has three copies, "pair" has two, "solo" has one.
func fixtureRecords() []email.Record {
	return []email.Record{
		rec("dup1.", "dup", "same", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)),
		rec("dup2.", "dup", "same", time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)),
		rec("dup3.", "dup", "same", time.Date(2001, 1, 3, 0, 0, 0, 0, time.UTC)),
		rec("pair1.", "pair", "x", time.Date(2001, 2, 1, 0, 0, 0, 0, time.UTC)),
		rec("pair2.", "pair", "x", time.Date(2001, 2, 2, 0, 0, 0, 0, time.UTC)),
		rec("solo.", "solo", "y", time.Date(2001, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestAnalyze(t *testing.T) {
	s := newTestStore(t, fixtureRecords())

	stats, err := Analyze(context.Background(), s)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if stats.TotalEmails != 6 {
		t.Errorf("total = %d, want 6", stats.TotalEmails)
	}
	if stats.UniqueEmails != 3 {
		t.Errorf("unique = %d, want 3", stats.UniqueEmails)
	}
	if stats.DuplicateEmails != 3 {
		t.Errorf("duplicates = %d, want 3", stats.DuplicateEmails)
	}
	if stats.DuplicateGroups != 2 {
		t.Errorf("groups = %d, want 2", stats.DuplicateGroups)
	}
	if got, want := stats.DuplicationRate, 0.5; got != want {
		t.Errorf("rate = %v, want %v", got, want)
	}
}

func TestAnalyze_EmptyCorpus(t *testing.T) {
	s := newTestStore(t, nil)
	stats, err := Analyze(context.Background(), s)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if stats.TotalEmails != 0 || stats.DuplicationRate != 0 {
		t.Errorf("empty corpus stats = %+v", stats)
	}
}

func TestLargeGroups(t *testing.T) {
	s := newTestStore(t, fixtureRecords())

	groups, err := LargeGroups(context.Background(), s, 3)
	if err != nil {
		t.Fatalf("large groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Subject != "dup" || g.Count != 3 {
		t.Errorf("group = %+v", g)
	}
	if g.First.Day() != 1 || g.Last.Day() != 3 {
		t.Errorf("date span = %v to %v", g.First, g.Last)
	}
	if len(g.Paths) != 3 || g.Paths[0] != "dup1." {
		t.Errorf("paths = %v, want date-ascending starting at dup1.", g.Paths)
	}

	// Threshold 2 also picks up the pair, largest group first.
	groups, err = LargeGroups(context.Background(), s, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].Subject != "dup" || groups[1].Subject != "pair" {
		t.Errorf("groups = %+v", groups)
	}
}

func TestDedupe(t *testing.T) {
	cases := []struct {
		policy   KeepPolicy
		survivor string // of the "dup" group
	}{
		{KeepFirst, "dup1."},
		{KeepEarliest, "dup1."},
		{KeepLatest, "dup3."},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			s := newTestStore(t, fixtureRecords())
			ctx := context.Background()

			removed, err := Dedupe(ctx, s, tc.policy)
			if err != nil {
				t.Fatalf("dedupe: %v", err)
			}
			if removed != 3 {
				t.Errorf("removed = %d, want 3", removed)
			}

			if _, err := s.Get(ctx, tc.survivor); err != nil {
				t.Errorf("survivor %s missing: %v", tc.survivor, err)
			}
			if _, err := s.Get(ctx, "solo."); err != nil {
				t.Errorf("unique record removed: %v", err)
			}
			n, err := s.Count(ctx, nil)
			if err != nil {
				t.Fatal(err)
			}
			if n != 3 {
				t.Errorf("count after dedupe = %d, want 3", n)
			}
		})
	}
}

func TestDedupe_UnknownPolicy(t *testing.T) {
	s := newTestStore(t, nil)
	if _, err := Dedupe(context.Background(), s, KeepPolicy("newest")); err == nil {
		t.Error("expected an error for an unknown policy")
	}
}

func TestWriteReport(t *testing.T) {
	s := newTestStore(t, fixtureRecords())
	ctx := context.Background()

	stats, err := Analyze(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	groups, err := LargeGroups(ctx, s, 2)
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := WriteReport(&buf, stats, groups); err != nil {
		t.Fatalf("write report: %v", err)
	}
	testutil.AssertContainsAll(t, buf.String(), []string{
		"# Duplicate Message Report",
		"| Total messages | 6 |",
		"### dup",
		"3 copies",
		"`dup2.`",
	})
}
