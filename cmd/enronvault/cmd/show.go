package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/query"
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Show one message by corpus path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := query.New(s).GetEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRecord(rec)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
