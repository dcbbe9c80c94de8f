package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"voxcal.io/calendar-assistant/internal/auth"
	"voxcal.io/calendar-assistant/internal/config"
)

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.GenerateJWT(config.AppConfig.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "ui", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
