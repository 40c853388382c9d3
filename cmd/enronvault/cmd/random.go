package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/query"
)

var randomToday bool

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random message from the corpus",
	Long: `Show one uniformly sampled message. With --today, sample only from
messages sent on today's month and day, in any year.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		eng := query.New(s)
		var rec *email.Record
		if randomToday {
			rec, err = eng.RandomToday(cmd.Context(), time.Now())
		} else {
			rec, err = eng.RandomEmail(cmd.Context())
		}
		if err != nil {
			return err
		}
		printRecord(rec)
		return nil
	},
}

func init() {
	randomCmd.Flags().BoolVar(&randomToday, "today", false, "sample from today's month and day across years")
	rootCmd.AddCommand(randomCmd)
}
