package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/internal/telemetry"
	"github.com/marmos91/dittotape/pkg/api"
	"github.com/marmos91/dittotape/pkg/config"
	"github.com/marmos91/dittotape/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planning API server",
	Long: `Run the planning API server in the foreground.

The server answers POST /api/v1/rao with the recall order of a batch and
exposes the catalogue read-only. Prometheus metrics are served on their own
port when metrics are enabled.

Examples:
  # Serve with the default configuration
  dtape serve

  # Serve with debug logs
  DITTOTAPE_LOGGING_LEVEL=DEBUG dtape serve --config /etc/dittotape/config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := cmdutil.InitLogger(cfg, false); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownObservability, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	// Metrics first: the catalogue picks up its metrics when created.
	metricsServer := config.InitializeMetrics(cfg)
	if metricsServer == nil {
		logger.Info("Metrics collection disabled")
	}

	store, err := config.CreateCatalogue(cfg.Catalogue)
	if err != nil {
		return fmt.Errorf("failed to initialize catalogue: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("catalogue close error", logger.Err(err))
		}
	}()

	params, err := cfg.RAO.ToManagerParams("", "")
	if err != nil {
		return err
	}
	logger.Info("RAO configured",
		"enabled", params.Enabled,
		logger.Algorithm(params.Algorithm),
		"enterprise", params.EnterpriseEnabled,
		"cost_heuristic", params.Options.CostHeuristic,
		"estimator", params.Options.Estimator)

	if !cfg.API.IsEnabled() && metricsServer == nil {
		return errors.New("nothing to serve: the API server and metrics are both disabled")
	}

	// Servers get their own context so an in-flight request can finish
	// within ShutdownTimeout after the signal.
	serveCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(serveCtx)
	if cfg.API.IsEnabled() {
		server := api.NewServer(cfg.API, api.Dependencies{
			Catalogue: store,
			RAO:       params,
			Metrics:   metrics.NewRAOMetrics(),
		})
		g.Go(func() error { return server.Start(gctx) })
	} else {
		logger.Info("API server disabled")
	}
	if metricsServer != nil {
		g.Go(func() error { return metricsServer.Start(gctx) })
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
	}

	select {
	case err := <-done:
		return err
	case <-time.After(cfg.ShutdownTimeout):
		return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
	}
}

// initObservability starts tracing and profiling as configured and returns
// a function stopping both.
func initObservability(ctx context.Context, cfg *config.Config) (func(), error) {
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "dittotape",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "dittotape",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		_ = telemetryShutdown(ctx)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Profiling.Enabled {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	return func() {
		// ctx is cancelled by now; flushing needs a fresh one.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(flushCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}, nil
}
