package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/schedbot/schedbot/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Authenticate schedbot with Google Calendar via OAuth.

Without --code, prints the authorization URL to visit in a browser.
After granting access, run the command again with --code to exchange the
authorization code for tokens, which are stored in the user cache directory.

Client credentials are read from SCHEDBOT_GOOGLE_CLIENT_ID and
SCHEDBOT_GOOGLE_CLIENT_SECRET (a .env file in the working directory is
loaded if present).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			if code == "" {
				if google.HasTokenForAccount(account) {
					fmt.Printf("Account %q is already authenticated. Re-authenticating replaces the stored token.\n\n", account)
				}
				fmt.Println("Visit the following URL to authorize schedbot:")
				fmt.Println()
				fmt.Println("  " + google.GetAuthURLForAccount(account))
				fmt.Println()
				fmt.Println("Then run: schedbot auth --code <authorization-code>")
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Printf("Authentication successful for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code obtained from the authorization URL")

	return cmd
}
