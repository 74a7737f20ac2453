package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fikir/freetrack/internal/assistant"
	"github.com/fikir/freetrack/internal/config"
	"github.com/fikir/freetrack/internal/httpapi"
	"github.com/fikir/freetrack/internal/llm"
	"github.com/fikir/freetrack/internal/llm/ollama"
	"github.com/fikir/freetrack/internal/llm/openai"
	"github.com/fikir/freetrack/internal/persona"
	"github.com/fikir/freetrack/internal/scheduler"
	"github.com/fikir/freetrack/internal/store"
)

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the FreeTrack HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg, logger)
		},
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqlStore.Close()
	if err := sqlStore.AutoMigrate(ctx); err != nil {
		return err
	}

	responder := newResponder(cfg, logger)
	personaSvc := persona.New(cfg.AssistantPersonaFile, assistant.DefaultPersona, logger)
	chat := assistant.NewChat(logger, responder, sqlStore, personaSvc, assistant.ChatConfig{
		MaxLoopSteps: cfg.AssistantMaxLoopSteps,
		RecentLimit:  cfg.AssistantRecentLimit,
		CallTimeout:  time.Duration(cfg.LLMTimeoutSec) * time.Second,
	})

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config:    cfg,
		Store:     sqlStore,
		Assistant: chat,
		Logger:    logger,
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		return personaSvc.Start(groupCtx)
	})
	if cfg.InvoiceSweepEnabled {
		sweep := scheduler.New(sqlStore, cfg.InvoiceSweepCron, logger)
		group.Go(func() error {
			return sweep.Start(groupCtx)
		})
	}

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func newResponder(cfg config.Config, logger *slog.Logger) llm.Responder {
	timeout := time.Duration(cfg.LLMTimeoutSec) * time.Second
	switch cfg.LLMProvider {
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		}, logger)
	default:
		return ollama.New(ollama.Config{
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		}, logger)
	}
}
