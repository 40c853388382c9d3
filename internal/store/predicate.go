package store

import (
	"strings"
	"time"
)

// Predicate is a conjunction of case-insensitive substring tests over
// record fields plus date-range bounds. Zero-value fields add no
// condition. The Text and Participant clauses are internally
// disjunctive (any-of); everything else is ANDed together.
type Predicate struct {
	// Text matches when ANY of subject, sender, recipient, or body
	// contains it.
	Text string

	Sender    string
	Recipient string

	// Participant matches sender OR recipient.
	Participant string

	Subject string
	Body    string
	Path    string

	// Start is inclusive, End exclusive. Both compare against the
	// stored UTC timestamp.
	Start *time.Time
	End   *time.Time
}

// IsEmpty reports whether the predicate has no conditions at all.
func (p *Predicate) IsEmpty() bool {
	return p.Text == "" &&
		p.Sender == "" &&
		p.Recipient == "" &&
		p.Participant == "" &&
		p.Subject == "" &&
		p.Body == "" &&
		p.Path == "" &&
		p.Start == nil &&
		p.End == nil
}

// escapeLike escapes LIKE metacharacters so a search term is matched
// literally. Patterns built from it must use ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func containsCond(col, term string) (string, interface{}) {
	return "lower(" + col + `) LIKE ? ESCAPE '\'`, "%" + escapeLike(strings.ToLower(term)) + "%"
}

// toSQL compiles the predicate into WHERE conditions and args.
// A nil or empty predicate compiles to no conditions (match all);
// rejecting criteria-less searches is the query engine's job.
func (p *Predicate) toSQL() ([]string, []interface{}) {
	if p == nil {
		return nil, nil
	}

	var conditions []string
	var args []interface{}

	if p.Text != "" {
		var ors []string
		for _, col := range []string{"subject", "sender", "recipient", "body"} {
			cond, arg := containsCond(col, p.Text)
			ors = append(ors, cond)
			args = append(args, arg)
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	if p.Sender != "" {
		cond, arg := containsCond("sender", p.Sender)
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if p.Recipient != "" {
		cond, arg := containsCond("recipient", p.Recipient)
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if p.Participant != "" {
		sc, sa := containsCond("sender", p.Participant)
		rc, ra := containsCond("recipient", p.Participant)
		conditions = append(conditions, "("+sc+" OR "+rc+")")
		args = append(args, sa, ra)
	}
	if p.Subject != "" {
		cond, arg := containsCond("subject", p.Subject)
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if p.Body != "" {
		cond, arg := containsCond("body", p.Body)
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if p.Path != "" {
		cond, arg := containsCond("path", p.Path)
		conditions = append(conditions, cond)
		args = append(args, arg)
	}

	if p.Start != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, p.Start.UTC().Format(sqlDateFormat))
	}
	if p.End != nil {
		conditions = append(conditions, "date < ?")
		args = append(args, p.End.UTC().Format(sqlDateFormat))
	}

	return conditions, args
}

// whereClause renders conditions into a WHERE clause, or "" when empty.
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}
