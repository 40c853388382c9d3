// Package query implements searching over the ingested corpus:
// conjunctive substring filters, date windows, duplicate collapsing,
// and random sampling.
package query

import "github.com/mprosk/enronvault/internal/email"

// MaxResults caps how many records a search returns. The reported
// Total still reflects the full deduplicated match count.
const MaxResults = 1000

// RequestDateFormat is the wire format for search date bounds.
const RequestDateFormat = "2006-01-02"

// Request describes one search. All string filters are case-insensitive
// substring matches and combine conjunctively. Query matches any of
// subject, sender, recipient, or body; Participant matches sender or
// recipient. StartDate and EndDate are calendar days (RequestDateFormat),
// both inclusive.
type Request struct {
	Query       string
	Sender      string
	Recipient   string
	Participant string
	Subject     string
	Body        string
	Path        string
	StartDate   string
	EndDate     string
}

// IsEmpty reports whether the request carries no criteria at all.
func (r *Request) IsEmpty() bool {
	return r.Query == "" &&
		r.Sender == "" &&
		r.Recipient == "" &&
		r.Participant == "" &&
		r.Subject == "" &&
		r.Body == "" &&
		r.Path == "" &&
		r.StartDate == "" &&
		r.EndDate == ""
}

// ResultSet is a page of search results. Records holds at most
// MaxResults entries in date-descending order; Total is the number of
// distinct matches after duplicate collapsing, which may be larger.
type ResultSet struct {
	Records []email.Record
	Total   int
}
