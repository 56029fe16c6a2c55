package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/turing/internal/config"
	httpAdapter "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds how long outstanding requests may take once ctx is done.
const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP API on cfg.Listen until ctx is cancelled.
// If ready is not nil it receives the bound address once the listener is open.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger, ready chan<- string) error {
	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	svc, closeStores, err := NewService(cfg, logger, registerer)
	if err != nil {
		return err
	}
	defer closeStores()

	if cfg.MachinesDir != "" {
		if _, err := svc.LoadLibrary(ctx, cfg.MachinesDir); err != nil {
			return fmt.Errorf("error loading machines: %w", err)
		}
	}

	handlerOpts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
	if reg != nil {
		handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	srv := &http.Server{
		Handler:           httpAdapter.NewHandler(svc, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Turing Server", "address", ln.Addr().String(), "machines_dir", cfg.MachinesDir)
		serverErrors <- srv.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Turing Server stopped gracefully")
		return nil
	}
}
