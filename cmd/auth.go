package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/mailbrief/internal/config"
	"github.com/teemow/mailbrief/internal/google"
)

func newAuthCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only Gmail access",
		Long: `Run the Google OAuth authorization flow and store the resulting token.

Requires a Google OAuth client credentials file (downloaded from the Cloud
console) at the path given by GMAIL_CREDENTIALS_FILE. The token is written
to GMAIL_TOKEN_FILE and refreshed automatically afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if google.HasToken(cfg.TokenFile) && !force {
				fmt.Printf("A token already exists at %s. Use --force to re-authorize.\n", cfg.TokenFile)
				return nil
			}

			conf, err := google.LoadConfig(cfg.CredentialsFile)
			if err != nil {
				return err
			}

			fmt.Println("Visit this URL to authorize Gmail access:")
			fmt.Println()
			fmt.Println("  " + google.GetAuthURL(conf))
			fmt.Println()
			fmt.Print("Paste the authorization code here: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := google.SaveToken(cmd.Context(), conf, cfg.TokenFile, code); err != nil {
				return err
			}

			fmt.Printf("Token saved to %s\n", cfg.TokenFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-authorize even if a token already exists")

	return cmd
}
