package main

import (
	"briefly/internal/bot"
	"briefly/internal/scheduler"
	"briefly/internal/server"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

//nolint:gochecknoglobals // cobra command tree
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API, the MCP endpoint, the bot and the usage report",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	log := a.log
	cfg := a.cfg

	// A nil *database.Database must not reach the server as a non-nil
	// interface.
	var history server.History
	if a.db != nil {
		history = a.db
	}

	srv := server.New(server.Options{
		Addr:                cfg.HTTPAddr,
		RequestTimeout:      cfg.RequestTimeout,
		TrustProxyHeaders:   cfg.TrustProxyHeaders,
		MinLength:           cfg.MinSummaryLength,
		MaxLength:           cfg.MaxSummaryLength,
		DefaultLength:       cfg.DefaultSummaryLength,
		Styles:              cfg.SummaryStyles,
		TranscriptionModels: cfg.WhisperModels,
	}, a.pipeline, history, log)

	if cfg.EnableAnalytics {
		var counter scheduler.HistoryCounter
		if a.db != nil {
			counter = a.db
		}

		sched := scheduler.New(ctx, cfg.AnalyticsSpec, a.pipeline, counter, log)
		if err = sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	if cfg.TelegramToken != "" {
		botInst, err := bot.New(cfg.TelegramToken, a.pipeline, bot.Options{
			Credential:    cfg.LLMAPIKey,
			AllowedUsers:  cfg.AllowedUsers,
			Styles:        cfg.SummaryStyles,
			UpdateTimeout: cfg.RequestTimeout,
		}, log)
		if err != nil {
			return fmt.Errorf("initialize bot: %w", err)
		}
		log.InfoContext(ctx, "Bot is initialized",
			"allowedUsersCount", len(cfg.AllowedUsers))

		go botInst.Start(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", cfg.HTTPAddr,
		"environment", cfg.Environment,
		"provider", cfg.LLMProvider)

	select {
	case err = <-serveErr:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "Shutdown signal is received",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown http: %w", err)
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}
