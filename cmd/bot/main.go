package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"blackjack-helper/internal/analysis"
	"blackjack-helper/internal/bot"
	"blackjack-helper/internal/config"
	"blackjack-helper/internal/database"
	"blackjack-helper/internal/httpapi"
	"blackjack-helper/internal/metrics"
	"blackjack-helper/internal/player"
	"blackjack-helper/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connected", "path", cfg.DatabasePath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	classifier := vision.New(vision.Config{
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if !classifier.HasDefaultKey() {
		logger.Warn("OPENAI_API_KEY is not set, users must provide their own key")
	}

	analyzer := analysis.New(classifier, m, logger, analysis.WithMaxImageBytes(cfg.MaxImageBytes))
	playerRepo := player.NewRepository(db.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if !cfg.BotDisabled {
		b, err := bot.New(cfg, playerRepo, analyzer, m, logger)
		if err != nil {
			logger.Error("failed to create bot", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return b.Run(ctx) })
	}

	if cfg.HTTPAddr != "" {
		api := httpapi.New(analyzer, logger, cfg.MaxImageBytes, cfg.AnalyzeTimeout)
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(api, reg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("listening", "addr", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("service stopped")
}
