package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/fiscal/internal/application/worker"
	"github.com/rezkam/fiscal/internal/bootstrap"
	"github.com/rezkam/fiscal/internal/config"
	"github.com/rezkam/fiscal/internal/domain"
	"github.com/rezkam/fiscal/internal/infrastructure/observability"
)

func main() {
	once := flag.Bool("once", false, "run a single evaluation and exit")
	date := flag.String("date", "", "evaluation date for -once (YYYY-MM-DD, default today)")
	flag.Parse()

	if err := run(*once, *date); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run(once bool, date string) error {
	var eval time.Time
	if date != "" {
		if !once {
			return fmt.Errorf("-date requires -once")
		}
		d, err := domain.ParseDate(date)
		if err != nil {
			return err
		}
		eval = d
	}

	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.Enabled,
		ServiceName: cfg.Observability.ServiceName + "-worker",
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}
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
	w := worker.New(svcs.Scheduler,
		worker.WithTickInterval(cfg.TickInterval),
		worker.WithOperationTimeout(cfg.OperationTimeout),
	)

	if once {
		runCtx, runCancel := context.WithTimeout(ctx, cfg.OperationTimeout)
		defer runCancel()

		result, err := w.RunOnce(runCtx, eval)
		if err != nil {
			return fmt.Errorf("monthly job failed: %w", err)
		}
		slog.InfoContext(ctx, result.Message,
			"date", domain.FormatDate(result.Date),
			"skipped", result.Skipped,
			"created", result.CreatedCount,
			"duplicates", result.DuplicateCount,
			"failed", result.FailedCount)
		return nil
	}

	return w.Start(ctx)
}
