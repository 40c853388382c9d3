package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/ingest"
	"github.com/mprosk/enronvault/internal/maildir"
)

var (
	ingestWorkers      int
	ingestMetadataOnly bool
	ingestMerge        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [maildir-root]",
	Short: "Ingest a maildir corpus into the database",
	Long: `Ingest walks a maildir tree, parses every message file in parallel,
and loads the results into the corpus database.

The default replaces the whole corpus in one transaction; --merge
upserts into the existing corpus instead. Files that fail to parse are
reported and skipped; they never abort the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Data.MaildirRoot
		if len(args) > 0 {
			root = args[0]
		}
		if root == "" {
			return fmt.Errorf("no maildir root: pass one as an argument or set [data] maildir_root in config.toml")
		}

		files, err := maildir.Scan(root, logger)
		if err != nil {
			return fmt.Errorf("scan %s: %w", root, err)
		}
		logger.Info("scanned corpus", "root", root, "files", len(files))

		workers := ingestWorkers
		if workers == 0 {
			workers = cfg.Ingest.Workers
		}
		start := time.Now()
		result, err := ingest.Run(cmd.Context(), files, ingest.Options{
			Workers:       workers,
			LoadBody:      !ingestMetadataOnly && !cfg.Ingest.MetadataOnly,
			ProgressEvery: int64(cfg.Ingest.ProgressEvery),
			Progress: func(done, total int64) {
				logger.Info("ingest progress", "done", done, "total", total)
			},
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if ingestMerge {
			for i := range result.Records {
				if err := s.UpsertEmail(&result.Records[i]); err != nil {
					return fmt.Errorf("upsert %s: %w", result.Records[i].Path, err)
				}
			}
		} else {
			if err := s.ReplaceAll(result.Records); err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}
		}

		fmt.Printf("Ingested %d messages in %s (%d failed)\n",
			len(result.Records), time.Since(start).Round(time.Millisecond), len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  failed: %s: %v\n", f.Path, f.Err)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "parser workers (default min(4, CPUs))")
	ingestCmd.Flags().BoolVar(&ingestMetadataOnly, "metadata-only", false, "skip message bodies")
	ingestCmd.Flags().BoolVar(&ingestMerge, "merge", false, "upsert into the existing corpus instead of replacing it")
	rootCmd.AddCommand(ingestCmd)
}
