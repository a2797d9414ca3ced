// Package server exposes the dashboard and its JSON and download
// endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/OmarSajjad/datavisualiser/internal/charts"
	"github.com/OmarSajjad/datavisualiser/internal/config"
	"github.com/OmarSajjad/datavisualiser/internal/dashboard"
	"github.com/OmarSajjad/datavisualiser/internal/fetchers"
	"github.com/OmarSajjad/datavisualiser/internal/llm"
	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/session"
	"github.com/OmarSajjad/datavisualiser/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

// Server represents the main application server
type Server struct {
	Config    *config.Config
	Storage   storage.StorageClient
	Sessions  *session.Store
	Fetcher   *fetchers.CSVFetcher
	Insights  *llm.InsightsClient
	Charts    *charts.ChartGenerator
	Dashboard *dashboard.Dashboard
	Version   string

	log *logger.Logger
}

// NewServer creates a server backed by the storage selected in cfg
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	client, err := storage.NewStorageClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	srv, err := NewServerWithStorage(cfg, client)
	if err != nil {
		client.Close()
		return nil, err
	}
	return srv, nil
}

// NewServerWithStorage creates a server on top of an existing storage client
func NewServerWithStorage(cfg *config.Config, client storage.StorageClient) (*Server, error) {
	log := logger.Component("server")
	version := config.GetVersion()

	builder, err := dashboard.NewHTMLBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dashboard: %w", err)
	}
	generator := charts.NewChartGenerator(cfg.ChartWidth, cfg.ChartHeight)

	s := &Server{
		Config:   cfg,
		Storage:  client,
		Sessions: session.NewStore(client, cfg.SessionTTL),
		Fetcher:  fetchers.NewCSVFetcher(fetchers.NewHTTPClient(cfg.FetchTimeout), cfg.MaxUploadBytes()),
		Charts:   generator,
		Dashboard: dashboard.New(builder, generator, dashboard.Options{
			PreviewRows:     cfg.PreviewRows,
			InsightsEnabled: cfg.InsightsEnabled(),
			Version:         version,
		}),
		Version: version,
		log:     log,
	}

	if cfg.InsightsEnabled() {
		s.Insights = llm.NewInsightsClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Info("Insights enabled", logger.Fields{"model": cfg.OpenAIModel})
	}
	return s, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/upload", s.HandleUpload)
	mux.HandleFunc("/import", s.HandleImport)
	mux.HandleFunc("/reset", s.HandleReset)
	mux.HandleFunc("/insights", s.HandleInsights)
	mux.HandleFunc("/download", s.HandleDownload)
	mux.HandleFunc("/api/figures", s.HandleFigures)
	mux.HandleFunc("/chart.png", s.HandleChart)
	mux.HandleFunc("/chart.svg", s.HandleChart)
	mux.HandleFunc("/chart.html", s.HandleChart)

	// Handle root path last (catch-all)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept in the background while serving.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         ":" + s.Config.Port,
		Handler:      s.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // insights wait on the model
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.Sessions.Run(sweepCtx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", logger.Fields{"port": s.Config.Port, "version": s.Version})
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}
