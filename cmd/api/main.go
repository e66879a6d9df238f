// Package main starts the agentscope HTTP API: health, agent analysis, dialog
// graph and classification endpoints plus Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agentscope/core/cmd/api/middleware"
	"github.com/agentscope/core/internal/config"
	"github.com/agentscope/core/internal/handlers"
	"github.com/agentscope/core/internal/metrics"
	"github.com/agentscope/core/internal/parser"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("AGENTSCOPE_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	router, err := setupRouter(cfg, logger, metrics.NewRegistry())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupRouter(cfg *config.Config, logger *zap.Logger, registry *metrics.Registry) (http.Handler, error) {
	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, parser.WithLogger(logger), parser.WithRecorder(registry))

	h := handlers.New(parser.NewAnalyzer(opts...), logger, registry, cfg.Server.EnvironmentURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/analyze", h.Analyze)
	mux.HandleFunc("/graph", h.Graph)
	mux.HandleFunc("/classify", h.Classify)
	mux.Handle("/metrics", registry.Handler())

	return middleware.Chain(mux,
		middleware.Cors(cfg.Server.CORSAllowedOrigin),
		middleware.RequestLogger(logger),
		middleware.Metrics(registry),
	), nil
}
