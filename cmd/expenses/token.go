package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
)

// newTokenCommand mints access tokens for local testing against a running
// server that shares the same JWT_SECRET.
func newTokenCommand() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			if err := godotenv.Load(); err != nil {
				log.Println("Error loading .env file, continuing with system environment variables")
			}

			jwtManager, err := auth.NewJWTManager(os.Getenv("JWT_SECRET"))
			if err != nil {
				return err
			}
			token, err := jwtManager.GenerateAccessJWT(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the user_id claim")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultJWTDuration, "token lifetime")
	return cmd
}
