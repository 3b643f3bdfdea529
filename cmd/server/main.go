package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docfreeze/internal/api"
	"github.com/dgallion1/docfreeze/internal/config"
	"github.com/dgallion1/docfreeze/internal/notify"
	"github.com/dgallion1/docfreeze/internal/pipeline"
	"github.com/dgallion1/docfreeze/internal/vault"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v, closeVault, err := vault.Open(cfg)
	if err != nil {
		log.Error("open vault", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline. Nobody watches a server's screen, so notices go
	// to the log.
	freezer := pipeline.NewFreezer(v, cfg.Settings, log, pipeline.WithNotifier(notify.NewLog(log)))
	orch := pipeline.NewOrchestrator(cfg, freezer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
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
		closeVault()
	}()

	log.Info("starting docfreeze", "port", cfg.Port, "vault", cfg.VaultBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
