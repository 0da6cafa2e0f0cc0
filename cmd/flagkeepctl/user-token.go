package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flagkeep/flagkeep/pkg/auth"
)

// userTokenCmd represents the user token command
var userTokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Issue a session token for a user",
	Long: `Issue a session token for a user without a password.

The token is signed with FLAGKEEP_AUTH_SECRET and is valid for the
configured session_ttl. It is printed to stdout.

Example:
  flagkeepctl user token admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, expiresAt, err := issueToken(args[0])
		if err != nil {
			fail("Failed to issue token for %s: %v", args[0], err)
		}
		fmt.Fprintf(os.Stderr, "Token expires at %s\n", expiresAt.Format(time.RFC3339))
		fmt.Println(token)
	},
}

func init() {
	userCmd.AddCommand(userTokenCmd)
}

func issueToken(username string) (string, time.Time, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", time.Time{}, err
	}
	issuer, err := auth.NewIssuerFromEnv(cfg.SessionDuration())
	if err != nil {
		return "", time.Time{}, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return "", time.Time{}, err
	}
	database, err := connect(cfg, logger)
	if err != nil {
		return "", time.Time{}, err
	}

	users, err := newUserService(database, issuer, logger)
	if err != nil {
		return "", time.Time{}, err
	}
	return users.Token(context.Background(), username)
}
