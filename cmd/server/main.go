package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docfind/internal/api"
	"github.com/dgallion1/docfind/internal/config"
	"github.com/dgallion1/docfind/internal/pipeline"
	"github.com/dgallion1/docfind/internal/session"
	"github.com/dgallion1/docfind/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	lang, _ := cfg.Language() // checked by Validate

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	searchStats := stats.NewWindow(15 * time.Minute)
	sessions := session.NewStore(cfg.SessionTTL)
	sessOpts := session.Options{
		Exclude:     cfg.Exclusion(),
		Language:    lang,
		Incremental: cfg.Incremental,
		Stats:       searchStats,
		Logger:      log,
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, sessions, sessOpts, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, searchStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting docfind",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"language", lang.String(),
		"incremental", cfg.Incremental,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
