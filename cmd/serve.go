package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/movieweb/internal/server"
	"github.com/desertthunder/movieweb/internal/services"
	"github.com/desertthunder/movieweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API until interrupted.
//
// A missing metadata API key is not fatal: the server starts and answers 503 when a title lookup is needed.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	c, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	var metadata services.MetadataService
	if svc, err := r.Metadata(); err == nil {
		metadata = svc
	} else {
		r.logger.Warn("metadata lookups disabled", "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := server.NewHandler(c, metadata, shared.WithLogger(r.logger, "component", "http"))
	if err := server.ListenAndServe(ctx, cfg.Addr(), handler, r.logger); err != nil {
		return fmt.Errorf("serve %s: %w", cfg.Addr(), err)
	}
	return nil
}
