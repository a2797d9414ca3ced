package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OmarSajjad/datavisualiser/internal/config"
	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat, cfg.Environment)

	log := logger.Component("main")
	log.Info("Starting Data Visualiser", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"storage":     cfg.StorageMode,
		"version":     config.GetVersion(),
	})

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx)
}
