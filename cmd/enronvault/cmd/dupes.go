package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/dupes"
)

var (
	dupesReport string
	dupesRemove bool
	dupesKeep   string
)

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Analyze or remove duplicate messages",
	Long: `Analyze duplication in the corpus. Two messages are duplicates when
their subject and body are identical.

--report writes a markdown report covering groups with 10 or more
copies. --remove deletes all but one copy per group; --keep selects the
survivor: first (ingest order), earliest, or latest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := cmd.Context()

		if dupesRemove {
			removed, err := dupes.Dedupe(ctx, s, dupes.KeepPolicy(dupesKeep))
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d duplicate messages (kept %s copy of each group)\n", removed, dupesKeep)
			return nil
		}

		stats, err := dupes.Analyze(ctx, s)
		if err != nil {
			return err
		}
		fmt.Printf("Messages:         %d\n", stats.TotalEmails)
		fmt.Printf("Unique:           %d\n", stats.UniqueEmails)
		fmt.Printf("Duplicate copies: %d (%.1f%%)\n", stats.DuplicateEmails, stats.DuplicationRate*100)
		fmt.Printf("Duplicate groups: %d\n", stats.DuplicateGroups)

		if dupesReport != "" {
			groups, err := dupes.LargeGroups(ctx, s, dupes.ReportMinGroupSize)
			if err != nil {
				return err
			}
			f, err := os.Create(dupesReport)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			defer f.Close()
			if err := dupes.WriteReport(f, stats, groups); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("\nReport written to %s (%d groups)\n", dupesReport, len(groups))
		}
		return nil
	},
}

func init() {
	dupesCmd.Flags().StringVar(&dupesReport, "report", "", "write a markdown report to this file")
	dupesCmd.Flags().BoolVar(&dupesRemove, "remove", false, "delete duplicate copies")
	dupesCmd.Flags().StringVar(&dupesKeep, "keep", string(dupes.KeepFirst), "which copy survives --remove: first, earliest, latest")
	rootCmd.AddCommand(dupesCmd)
}
