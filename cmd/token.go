package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/evently-go/auth"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var userID, clerkID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for local testing",
		Long: `Mint a signed session token for a user id, for use as

  Authorization: Bearer <token>

against a local server. The token is signed with JWT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := primitive.ObjectIDFromHex(userID); err != nil {
				return fmt.Errorf("--user must be a user id: %w", err)
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
			token, err := sessions.Generate(userID, clerkID, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to put in the token")
	cmd.Flags().StringVar(&clerkID, "clerk", "", "identity provider id (optional)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
