package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/config"
	"voxcal.io/calendar-assistant/internal/store"
)

func seedPromptsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-prompts",
		Short: "Load prompt definitions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer dbStore.Close()

			res, err := dbStore.SeedPromptsFromFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			logger.Info("prompts seeded",
				zap.String("file", file),
				zap.Int("created", res.Created),
				zap.Int("versioned", res.Versioned),
				zap.Int("unchanged", res.Unchanged))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "prompts.yaml", "seed file path")
	return cmd
}
