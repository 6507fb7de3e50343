package main

import (
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/infrastructure/auth"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func devTokenCmd() *cobra.Command {
	var (
		tenant   string
		user     string
		username string
		secret   string
		issuer   string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Sign an access token for local development",
		Long: `Sign an HS256 access token the way the identity service does.
The secret and issuer come from config.toml or BIZDOCS_JWT_* unless given as flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			userID := uuid.Nil
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}

			jwtCfg := config.JWTConfig{Secret: secret, Issuer: issuer}
			if jwtCfg.Secret == "" || jwtCfg.Issuer == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if jwtCfg.Secret == "" {
					jwtCfg.Secret = cfg.JWT.Secret
				}
				if jwtCfg.Issuer == "" {
					jwtCfg.Issuer = cfg.JWT.Issuer
				}
			}

			token, err := auth.NewTokenVerifier(jwtCfg).Issue(auth.IssueInput{
				TenantID: tenantID,
				UserID:   userID,
				Username: username,
				TTL:      ttl,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "company ID the token acts for")
	cmd.Flags().StringVar(&user, "user", "", "user ID (optional)")
	cmd.Flags().StringVar(&username, "username", "", "username (optional)")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret")
	cmd.Flags().StringVar(&issuer, "issuer", "", "token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
