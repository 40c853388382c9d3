package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mprosk/enronvault/internal/api"
	"github.com/mprosk/enronvault/internal/query"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the corpus HTTP API in the foreground.

Endpoints: /search, /email, /random, /random_today, /stats, /health.
Set [server] api_key in config.toml to require authentication.

Use Ctrl+C to stop the server gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		srv := api.NewServer(cfg, query.New(s), s, logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return cmd.Context().Err()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
