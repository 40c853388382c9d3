package query

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/store"
)

func newTestEngine(t *testing.T, records []email.Record) *Engine {
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
	return New(s)
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

func TestSearch_NoCriteria(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Search(context.Background(), &Request{}); !errors.Is(err, ErrNoCriteria) {
		t.Errorf("err = %v, want ErrNoCriteria", err)
	}
	if _, err := e.Search(context.Background(), nil); !errors.Is(err, ErrNoCriteria) {
		t.Errorf("nil request: err = %v, want ErrNoCriteria", err)
	}
}

func TestSearch_CollapsesDuplicatesKeepingNewest(t *testing.T) {
	dup1 := rec("a.", "same", "same body", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))
	dup2 := rec("b.", "same", "same body", time.Date(2001, 1, 5, 0, 0, 0, 0, time.UTC))
	distinct := rec("c.", "same", "different body", time.Date(2001, 1, 3, 0, 0, 0, 0, time.UTC))
	e := newTestEngine(t, []email.Record{dup1, dup2, distinct})

	rs, err := e.Search(context.Background(), &Request{Subject: "same"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if rs.Total != 2 {
		t.Errorf("total = %d, want 2 (after collapsing)", rs.Total)
	}
	if len(rs.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(rs.Records))
	}
	// Newest copy of the duplicate pair survives; order stays date-descending.
	if rs.Records[0].Path != "b." || rs.Records[1].Path != "c." {
		t.Errorf("paths = %s, %s; want b., c.", rs.Records[0].Path, rs.Records[1].Path)
	}
}

func TestSearch_TotalCountsBeyondPageCap(t *testing.T) {
	var records []email.Record
	for i := 0; i < MaxResults+50; i++ {
		records = append(records, rec(
			fmt.Sprintf("%d.", i),
			fmt.Sprintf("memo %d", i),
			fmt.Sprintf("body %d", i),
			time.Date(2001, 1, 1, 0, 0, i, 0, time.UTC),
		))
	}
	e := newTestEngine(t, records)

	rs, err := e.Search(context.Background(), &Request{Subject: "memo"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if rs.Total != MaxResults+50 {
		t.Errorf("total = %d, want %d", rs.Total, MaxResults+50)
	}
	if len(rs.Records) != MaxResults {
		t.Errorf("page = %d records, want %d", len(rs.Records), MaxResults)
	}
}

func TestSearch_InclusiveDateWindow(t *testing.T) {
	before := rec("before.", "x", "1", time.Date(2001, 5, 31, 23, 59, 59, 0, time.UTC))
	onStart := rec("start.", "x", "2", time.Date(2001, 6, 1, 0, 0, 0, 0, time.UTC))
	onEnd := rec("end.", "x", "3", time.Date(2001, 6, 30, 23, 59, 59, 0, time.UTC))
	after := rec("after.", "x", "4", time.Date(2001, 7, 1, 0, 0, 0, 0, time.UTC))
	e := newTestEngine(t, []email.Record{before, onStart, onEnd, after})

	rs, err := e.Search(context.Background(), &Request{StartDate: "2001-06-01", EndDate: "2001-06-30"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rs.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(rs.Records))
	}
	if rs.Records[0].Path != "end." || rs.Records[1].Path != "start." {
		t.Errorf("paths = %s, %s", rs.Records[0].Path, rs.Records[1].Path)
	}
}

func TestSearch_InvalidDate(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Search(context.Background(), &Request{StartDate: "06/01/2001"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("malformed start date: err = %v, want ErrInvalidDate", err)
	}
	if _, err := e.Search(context.Background(), &Request{EndDate: "not-a-date"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("malformed end date: err = %v, want ErrInvalidDate", err)
	}
}

func TestSearch_ConjunctiveFilters(t *testing.T) {
	both := rec("both.", "gas pipeline", "b1", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))
	both.Sender = "phillip.allen@enron.com"
	subjectOnly := rec("subj.", "gas pipeline", "b2", time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC))
	subjectOnly.Sender = "tim.belden@enron.com"
	senderOnly := rec("send.", "lunch", "b3", time.Date(2001, 1, 3, 0, 0, 0, 0, time.UTC))
	senderOnly.Sender = "phillip.allen@enron.com"
	e := newTestEngine(t, []email.Record{both, subjectOnly, senderOnly})

	rs, err := e.Search(context.Background(), &Request{Subject: "pipeline", Sender: "allen"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rs.Records) != 1 || rs.Records[0].Path != "both." {
		t.Errorf("got %v, want only both.", rs.Records)
	}
}

func TestGetEmail_TrailingDot(t *testing.T) {
	stored := rec("maildir/allen-p/inbox/42.", "hi", "b", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))
	e := newTestEngine(t, []email.Record{stored})
	ctx := context.Background()

	for _, path := range []string{"maildir/allen-p/inbox/42.", "maildir/allen-p/inbox/42"} {
		got, err := e.GetEmail(ctx, path)
		if err != nil {
			t.Fatalf("GetEmail(%q): %v", path, err)
		}
		if got.Subject != "hi" {
			t.Errorf("GetEmail(%q) subject = %q", path, got.Subject)
		}
	}

	if _, err := e.GetEmail(ctx, "maildir/nobody/1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing path: err = %v, want ErrNotFound", err)
	}
}

func TestRandomEmail(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.RandomEmail(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("empty corpus: err = %v, want ErrNotFound", err)
	}

	e = newTestEngine(t, []email.Record{
		rec("a.", "s", "b", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	got, err := e.RandomEmail(context.Background())
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if got.Path != "a." {
		t.Errorf("path = %q", got.Path)
	}
}

func TestRandomToday_MatchesAnyYear(t *testing.T) {
	e := newTestEngine(t, []email.Record{
		rec("y2000.", "s", "1", time.Date(2000, 3, 14, 12, 0, 0, 0, time.UTC)),
		rec("y2001.", "s", "2", time.Date(2001, 3, 14, 12, 0, 0, 0, time.UTC)),
		rec("other.", "s", "3", time.Date(2001, 3, 15, 12, 0, 0, 0, time.UTC)),
	})
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	got, err := e.RandomToday(ctx, now)
	if err != nil {
		t.Fatalf("random today: %v", err)
	}
	if got.Path == "other." {
		t.Errorf("march 15 record returned for march 14")
	}

	if _, err := e.RandomToday(ctx, time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("no match date: err = %v, want ErrNotFound", err)
	}
}

func TestCollapseDuplicates_NilBodyDistinctFromEmpty(t *testing.T) {
	empty := ""
	withEmpty := email.Record{Path: "a.", Subject: "s", Body: &empty}
	withNil := email.Record{Path: "b.", Subject: "s", Body: nil}

	out := collapseDuplicates([]email.Record{withEmpty, withNil})
	if len(out) != 2 {
		t.Errorf("got %d records, want 2: nil body must not collapse with empty body", len(out))
	}
}
