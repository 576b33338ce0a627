package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seatpick/copysmith/api"
	"github.com/seatpick/copysmith/competitor"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/llm"
	"github.com/seatpick/copysmith/pipeline"
	"github.com/seatpick/copysmith/serpdata"
	"github.com/seatpick/copysmith/tokens"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("copysmith starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"model", cfg.Generation.Model,
		"generation_configured", cfg.Generation.Configured(),
		"search_data_configured", cfg.SearchData.Configured(),
	)

	// ── 3. Build provider clients ───────────────────────────────────
	searchData := serpdata.NewClient(cfg.SearchData, nil)
	llmClient := llm.NewClient(cfg.Generation, nil)
	generator := llm.NewGenerator(llmClient, tokens.NewEstimator(), cfg.Generation)
	extractor := competitor.NewExtractor(cfg.Competitor)

	// ── 4. Wire the orchestrator ────────────────────────────────────
	orchestrator := pipeline.NewOrchestrator(searchData, extractor, generator, cfg)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orchestrator, searchData, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete. A batch mid-flight
	// gets its context cancelled; pages already generated are lost, which
	// is acceptable for an idempotent content endpoint.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("copysmith stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
