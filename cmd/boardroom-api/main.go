package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardroom/internal/api"
	"boardroom/internal/catalog"
	"boardroom/internal/config"
	"boardroom/internal/game"
	"boardroom/internal/store"
	"boardroom/internal/ws"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cat, problems := catalog.Load()
	for _, p := range problems {
		logger.Error("invalid decision", "decision_id", p.DecisionID, "field", p.Field, "reason", p.Reason)
	}
	if len(problems) > 0 {
		os.Exit(1)
	}

	hub := ws.NewHub(logger)
	listeners := game.MultiListener{hub}

	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		archiver := store.NewArchiver(pool, logger)
		if err := archiver.EnsureSchema(ctx); err != nil {
			logger.Error("schema init failed", "err", err)
			os.Exit(1)
		}
		listeners = append(listeners, archiver)
		logger.Info("results archive enabled")
	}

	g := game.New(game.Config{
		TeamCount:     cfg.TeamCount,
		RoundDuration: cfg.RoundDuration,
		Seed:          cfg.Seed,
		Listener:      listeners,
	}, cat, logger)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.Tick()
			}
		}
	}()

	server := api.New(cfg, logger, g, hub)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("boardroom api listening", "addr", cfg.Addr, "teams", cfg.TeamCount, "round_duration", cfg.RoundDuration.String())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
