package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/server"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify Gmail and AI provider connectivity",
		Long: `Check that the configured Gmail credentials and AI provider API key work
by making a minimal request against each service.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			sc, err := server.NewServerContext(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			failed := false

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := sc.GmailClient()
			if err != nil {
				fmt.Printf("Gmail: FAILED (%v)\n", err)
				failed = true
			} else if err := client.TestConnection(ctx); err != nil {
				fmt.Printf("Gmail: FAILED (%v)\n", err)
				failed = true
			} else {
				fmt.Println("Gmail: OK")
			}

			summarizer, err := sc.Summarizer()
			if err != nil {
				fmt.Printf("AI provider: FAILED (%v)\n", err)
				failed = true
			} else if err := summarizer.TestConnection(ctx); err != nil {
				fmt.Printf("AI provider (%s): FAILED (%v)\n", cfg.AIProvider, err)
				failed = true
			} else {
				fmt.Printf("AI provider (%s): OK, model %s\n", cfg.AIProvider, cfg.ModelName())
			}

			if failed {
				return fmt.Errorf("one or more connectivity checks failed")
			}
			return nil
		},
	}

	return cmd
}
