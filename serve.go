package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	g, err := open(cmd)
	if err != nil {
		return err
	}
	defer g.Close()

	logger := g.logger

	// A failed connection is not fatal: POST /reconnect retries it
	if err := g.session.Connect(ctx, g.network, g.endpoint); err != nil {
		logger.Error("Failed to connect", "error", err)
	}

	listenCtx, stopListen := context.WithCancel(ctx)
	defer stopListen()
	go func() {
		if err := g.modem.Listen(listenCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Push listener stopped", "error", err)
		}
	}()
	go func() {
		for r := range g.session.Replies(listenCtx) {
			logger.Info("OSC reply", "message", r.Message.String())
		}
	}()

	httpServer := &http.Server{
		Addr:              g.config.BindAddress,
		Handler:           NewServer(logger.With("component", "server"), g.session, g.network, g.endpoint),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		return err
	}
	return nil
}
