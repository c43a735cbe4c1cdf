package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/seedmix/internal/playlist"
	"github.com/desertthunder/seedmix/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the playlist generation HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}

	generator := playlist.NewGenerator(catalog, r.suggesterService(), r.logger, r.generatorOptions())

	var store server.GenerationStore
	if !cmd.Bool("no-history") {
		repo, db, err := r.openRepository()
		if err != nil {
			// History is a convenience; generation still works without it.
			r.logger.Warn("history disabled", "error", err)
		} else {
			defer db.Close()
			store = repo
		}
	}

	router := server.NewBasicRouter()
	router.Use(server.RecoverMiddleware(r.logger), server.LoggingMiddleware(r.logger))
	router.Handler(server.NewPlaylistHandler(generator, store, r.logger))
	router.Handler(server.NewSearchHandler(catalog, r.logger))
	router.Handler(&server.HealthHandler{})

	host := r.config.Server.Host
	if flagHost := cmd.String("host"); flagHost != "" {
		host = flagHost
	}
	port := r.config.Server.Port
	if flagPort := cmd.Int("port"); flagPort != 0 {
		port = int(flagPort)
	}

	serverAddr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("serving playlist API at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-signalCtx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}
	return nil
}
