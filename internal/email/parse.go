// Package email parses individual message files from the Enron maildir
// corpus into structured records.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/mprosk/enronvault/internal/textutil"
)

// DateFormat is the single accepted Date header layout: abbreviated
// weekday, day, abbreviated month, year, time, numeric UTC offset.
// The corpus is uniform on this format; anything else fails the parse.
const DateFormat = "Mon, 2 Jan 2006 15:04:05 -0700"

const (
	// NoSubject is stored for messages without a Subject header.
	NoSubject = "(no subject)"

	// MissingHeader marks an absent From or To header. Such records are
	// still usable; the marker keeps them taggable in queries.
	MissingHeader = "[ERR]"
)

// ErrMissingDate indicates a message without a usable Date header.
// Records without a valid date are rejected, never stored.
var ErrMissingDate = errors.New("missing Date header")

// ParseError describes a failure to parse a single corpus file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Record is one structured email from the corpus.
type Record struct {
	Path      string    // corpus-relative file path, primary key
	Date      time.Time // retains the header's UTC offset
	Sender    string    // raw From header, or MissingHeader
	Recipient string    // raw To header, or MissingHeader
	Subject   string    // NoSubject when absent
	Body      *string   // nil for metadata-only parses
}

// Parse extracts a Record from the raw bytes of one message file.
// The returned Record has no Path; callers set it. When loadBody is
// false the payload is not decoded, which is considerably faster for
// metadata-only passes over the corpus.
func Parse(raw []byte, loadBody bool) (*Record, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}

	dateStr := env.GetHeader("Date")
	if dateStr == "" {
		return nil, ErrMissingDate
	}
	date, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("date header %q: %w", dateStr, ErrMissingDate)
	}

	subject := env.GetHeader("Subject")
	if subject == "" {
		subject = NoSubject
	}

	sender := env.GetHeader("From")
	if sender == "" {
		sender = MissingHeader
	}
	recipient := env.GetHeader("To")
	if recipient == "" {
		recipient = MissingHeader
	}

	rec := &Record{
		Date:      date,
		Sender:    sender,
		Recipient: recipient,
		Subject:   textutil.EnsureUTF8(subject),
	}

	if loadBody {
		body := env.Text
		if env.HTML != "" {
			// Keep the HTML source; the presentation layer decides
			// how to render it.
			body = env.HTML
		}
		body = textutil.EnsureUTF8(body)
		rec.Body = &body
	}

	return rec, nil
}

// ParseFile reads and parses one corpus file. Failures are wrapped in a
// *ParseError carrying the path. The record's Path is set to path.
func ParseFile(path string, loadBody bool) (*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	rec, err := Parse(raw, loadBody)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	rec.Path = path
	return rec, nil
}
