package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/config"
	"voxcal.io/calendar-assistant/internal/logging"
)

var logger *zap.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "calendar-assistant",
		Short: "Voice calendar assistant backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadConfig()
			var err error
			logger, err = logging.New(config.AppConfig.LogLevel)
			if err != nil {
				return err
			}
			if !config.AppConfig.EnvFileLoaded {
				logger.Debug("no .env file found, using process environment")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	serve := serveCmd()
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(seedPromptsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
