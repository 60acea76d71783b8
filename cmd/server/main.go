package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsect/internal/api"
	"github.com/dgallion1/docsect/internal/config"
	"github.com/dgallion1/docsect/internal/pathstore"
	"github.com/dgallion1/docsect/internal/pipeline"
)

func main() {
	cfg := config.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients. Without publishing there is nothing to talk to.
	var ps *pathstore.Client
	if cfg.PublishSections {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	}

	// Initialize pipeline.
	orch, err := pipeline.NewOrchestrator(cfg, ps, log)
	if err != nil {
		log.Error("invalid pipeline configuration", "error", err)
		os.Exit(1)
	}
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting docsect", "port", cfg.Port, "publish", cfg.PublishSections, "workers", cfg.WorkerCount)
	err = serve(httpServer, sigCh, log, func() {
		orch.Stop()
		if ps != nil {
			ps.Close()
		}
	})
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs srv until a signal arrives on stop. The HTTP server shuts down
// first so no handler submits to a stopped pipeline, then drain runs. serve
// returns only after drain has finished.
func serve(srv *http.Server, stop <-chan os.Signal, log *slog.Logger, drain func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		drain()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-done
	return nil
}
