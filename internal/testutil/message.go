package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MessageBuilder constructs raw corpus message files with a fluent API.
// Defaults produce a well-formed message in the corpus's single-part,
// LF-terminated layout.
type MessageBuilder struct {
	from    string
	to      string
	subject string
	date    string
	body    string

	noFrom    bool
	noTo      bool
	noSubject bool
	noDate    bool
}

// NewMessage creates a MessageBuilder with well-formed defaults.
func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		from:    "phillip.allen@enron.com",
		to:      "tim.belden@enron.com",
		subject: "Test Message",
		date:    "Mon, 2 Jan 2001 10:15:00 -0800",
		body:    "This is a test message body.\n",
	}
}

// From sets the From header. Use NoFrom() to omit it.
func (b *MessageBuilder) From(v string) *MessageBuilder { b.from = v; b.noFrom = false; return b }

// To sets the To header. Use NoTo() to omit it.
func (b *MessageBuilder) To(v string) *MessageBuilder { b.to = v; b.noTo = false; return b }

// Subject sets the Subject header. Use NoSubject() to omit it.
func (b *MessageBuilder) Subject(v string) *MessageBuilder {
	b.subject = v
	b.noSubject = false
	return b
}

// Date sets the Date header value. Use NoDate() to omit it.
func (b *MessageBuilder) Date(v string) *MessageBuilder { b.date = v; b.noDate = false; return b }

// Body sets the message body text.
func (b *MessageBuilder) Body(v string) *MessageBuilder { b.body = v; return b }

// NoFrom omits the From header.
func (b *MessageBuilder) NoFrom() *MessageBuilder { b.noFrom = true; return b }

// NoTo omits the To header.
func (b *MessageBuilder) NoTo() *MessageBuilder { b.noTo = true; return b }

// NoSubject omits the Subject header.
func (b *MessageBuilder) NoSubject() *MessageBuilder { b.noSubject = true; return b }

// NoDate omits the Date header.
func (b *MessageBuilder) NoDate() *MessageBuilder { b.noDate = true; return b }

// Bytes builds the complete message.
func (b *MessageBuilder) Bytes() []byte {
	var s strings.Builder
	s.WriteString("Message-ID: <1234567.JavaMail.evans@thyme>\n")
	if !b.noDate {
		s.WriteString("Date: " + b.date + "\n")
	}
	if !b.noFrom {
		s.WriteString("From: " + b.from + "\n")
	}
	if !b.noTo {
		s.WriteString("To: " + b.to + "\n")
	}
	if !b.noSubject {
		s.WriteString("Subject: " + b.subject + "\n")
	}
	s.WriteString("Mime-Version: 1.0\n")
	s.WriteString("Content-Type: text/plain; charset=us-ascii\n")
	s.WriteString("Content-Transfer-Encoding: 7bit\n")
	s.WriteString("\n")
	s.WriteString(b.body)
	return []byte(s.String())
}

// WriteTo writes the message to dir under name and returns the full path.
func (b *MessageBuilder) WriteTo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
