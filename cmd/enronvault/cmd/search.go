package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/query"
	"github.com/mprosk/enronvault/internal/textutil"
)

var searchReq query.Request

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search the corpus",
	Long: `Search the corpus. All filters are case-insensitive substring matches
and combine with AND. The positional text argument matches any of
subject, sender, recipient, or body. Duplicate messages (same subject
and body) are collapsed, keeping the most recent copy.

Dates are YYYY-MM-DD and both bounds are inclusive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			searchReq.Query = args[0]
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rs, err := query.New(s).Search(cmd.Context(), &searchReq)
		if err != nil {
			return err
		}

		for i := range rs.Records {
			rec := &rs.Records[i]
			fmt.Printf("%s  %-28s  %-40s  %s\n",
				rec.Date.Format("2006-01-02 15:04"),
				textutil.TruncateRunes(rec.Sender, 28),
				textutil.TruncateRunes(textutil.FirstLine(rec.Subject), 40),
				rec.Path)
		}
		if rs.Total > len(rs.Records) {
			fmt.Printf("\n%d distinct matches, showing the %d most recent\n", rs.Total, len(rs.Records))
		} else {
			fmt.Printf("\n%d distinct matches\n", rs.Total)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchReq.Sender, "sender", "", "match sender")
	searchCmd.Flags().StringVar(&searchReq.Recipient, "recipient", "", "match recipient")
	searchCmd.Flags().StringVar(&searchReq.Participant, "participant", "", "match sender or recipient")
	searchCmd.Flags().StringVar(&searchReq.Subject, "subject", "", "match subject")
	searchCmd.Flags().StringVar(&searchReq.Body, "body", "", "match body")
	searchCmd.Flags().StringVar(&searchReq.Path, "path", "", "match corpus path")
	searchCmd.Flags().StringVar(&searchReq.StartDate, "start-date", "", "earliest date (YYYY-MM-DD, inclusive)")
	searchCmd.Flags().StringVar(&searchReq.EndDate, "end-date", "", "latest date (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(searchCmd)
}

// printRecord renders one full message to stdout.
func printRecord(rec *email.Record) {
	fmt.Printf("Path:    %s\n", rec.Path)
	fmt.Printf("Date:    %s\n", rec.Date.Format(email.DateFormat))
	fmt.Printf("From:    %s\n", rec.Sender)
	fmt.Printf("To:      %s\n", rec.Recipient)
	fmt.Printf("Subject: %s\n", rec.Subject)
	if rec.Body != nil {
		fmt.Printf("\n%s\n", *rec.Body)
	}
}
