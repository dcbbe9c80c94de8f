package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/api"
	"voxcal.io/calendar-assistant/internal/config"
	"voxcal.io/calendar-assistant/internal/core"
	"voxcal.io/calendar-assistant/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	cfg := config.AppConfig

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Server-side transcription and titles are only available with a Gemini key.
	var transcriber core.Transcriber
	var titler core.TitleGenerator
	if cfg.GeminiAPIKey != "" {
		llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM service: %w", err)
		}
		defer llmService.Close()
		transcriber, titler = llmService, llmService
	} else {
		logger.Info("GEMINI_API_KEY not set, server-side transcription disabled")
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, realtime sessions will fail")
	}

	mediaService := core.NewMediaService(dbStore, cfg.UploadDir, transcriber, titler, logger)
	defer mediaService.Wait()

	apiHandler := api.NewAPIHandler(api.Services{
		Calendar:      core.NewCalendarService(dbStore, logger),
		Prompts:       core.NewPromptService(dbStore, logger),
		Conversations: core.NewConversationService(dbStore, mediaService, logger),
		Media:         mediaService,
		Realtime: core.NewRealtimeService(core.RealtimeConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Voice:   cfg.RealtimeVoice,
		}, dbStore, logger),
		Health: dbStore.Ping,
	}, cfg.MaxUploadBytes(), logger)

	router := api.NewRouter(apiHandler, api.RouterOptions{
		UploadDir:   cfg.UploadDir,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // uploads
		WriteTimeout: 60 * time.Second, // transcription calls can take time
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", serverAddr), zap.Bool("auth", cfg.JWTSecret != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		return nil
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}
