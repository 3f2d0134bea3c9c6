package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rezkam/fiscal/internal/bootstrap"
	"github.com/rezkam/fiscal/internal/config"
	httpServer "github.com/rezkam/fiscal/internal/infrastructure/http"
	"github.com/rezkam/fiscal/internal/infrastructure/http/handler"
	"github.com/rezkam/fiscal/internal/infrastructure/observability"
)

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.Enabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}

	// Cleanup runs after the HTTP server has drained, on a context that outlives ctx.
	shutdownCtx := context.WithoutCancel(ctx)

	store, err := bootstrap.ProvideStore(ctx, cfg.Database)
	if err != nil {
		bootstrap.NewCleanup(shutdownCtx, telemetry)()
		return fmt.Errorf("failed to create store: %w", err)
	}
	closers := []io.Closer{store}

	locker, err := bootstrap.ProvideLocker(ctx, cfg.Redis)
	if err != nil {
		bootstrap.NewCleanup(shutdownCtx, telemetry, closers...)()
		return fmt.Errorf("failed to create job lock: %w", err)
	}
	if locker != nil {
		closers = append(closers, locker)
	}
	defer bootstrap.NewCleanup(shutdownCtx, telemetry, closers...)()

	cal, err := bootstrap.ProvideCalendar(ctx, cfg.Holidays, cfg.Scheduling.Jurisdiction)
	if err != nil {
		return fmt.Errorf("failed to load holiday calendar: %w", err)
	}

	svcs := bootstrap.NewServices(store, cal, cfg.Scheduling, locker)
	api := handler.New(svcs.Scheduler, svcs.Installments, svcs.Clients, svcs.Adjuster)

	server := httpServer.NewAPIServer(api.Routes(), httpServer.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		ServiceName:       cfg.Observability.ServiceName,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	drainCtx, drainCancel := context.WithTimeout(shutdownCtx, cfg.HTTP.ShutdownTimeout)
	defer drainCancel()
	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	slog.InfoContext(shutdownCtx, "Server stopped")
	return nil
}
