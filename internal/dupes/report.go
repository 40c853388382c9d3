package dupes

import (
	"fmt"
	"io"
	"time"
)

// ReportMinGroupSize is the smallest group included in the markdown
// report. Smaller groups dominate the corpus and add nothing but noise.
const ReportMinGroupSize = 10

// WriteReport renders duplication stats and the large groups as markdown.
func WriteReport(w io.Writer, stats *Stats, groups []Group) error {
	now := time.Now().UTC().Format("2006-01-02 15:04")
	_, err := fmt.Fprintf(w, `# Duplicate Message Report

Generated %s UTC.

| Metric | Value |
|---|---|
| Total messages | %d |
| Unique messages | %d |
| Duplicate copies | %d |
| Duplicate groups | %d |
| Duplication rate | %.1f%% |

## Groups with %d+ copies

`, now, stats.TotalEmails, stats.UniqueEmails, stats.DuplicateEmails,
		stats.DuplicateGroups, stats.DuplicationRate*100, ReportMinGroupSize)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		_, err = fmt.Fprintln(w, "None.")
		return err
	}

	for _, g := range groups {
		subject := g.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		_, err = fmt.Fprintf(w, "### %s\n\n%d copies, %s to %s\n\n",
			subject, g.Count,
			g.First.Format("2006-01-02"), g.Last.Format("2006-01-02"))
		if err != nil {
			return err
		}
		for _, p := range g.Paths {
			if _, err = fmt.Fprintf(w, "- `%s`\n", p); err != nil {
				return err
			}
		}
		if _, err = fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
