package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bibbank/fraudscore/internal/infrastructure/config"
	"github.com/bibbank/fraudscore/pkg/auth"
	"github.com/bibbank/fraudscore/pkg/tlsutil"
)

func tokenCmd() *cobra.Command {
	var (
		user  string
		email string
		roles []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token with the service's JWT settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			jwtCfg, err := cfg.JWT()
			if err != nil {
				return err
			}
			svc, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				return err
			}

			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}

			token, err := svc.GenerateToken(userID, email, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID (default: random)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{auth.RoleAnalyst}, "roles claim")
	return cmd
}

func devCertsCmd() *cobra.Command {
	var (
		hosts string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "dev-certs",
		Short: "Write a self-signed CA and server certificate for local TLS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tlsutil.WriteDevCertificates(strings.Split(hosts, ","), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "certificates written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&hosts, "hosts", "localhost,127.0.0.1", "comma separated hosts and IPs")
	cmd.Flags().StringVar(&out, "out", "certs", "output directory")
	return cmd
}
