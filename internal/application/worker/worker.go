package worker

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rezkam/fiscal/internal/application/scheduling"
	"github.com/rezkam/fiscal/internal/domain"
)

// JobRunner runs the monthly recurrence job for an evaluation date.
type JobRunner interface {
	RunMonthly(ctx context.Context, eval time.Time) (*scheduling.RunResult, error)
}

// Worker fires the monthly recurrence job on a fixed tick. The job itself is a
// no-op except on the first of the month, so a daily tick is enough.
type Worker struct {
	runner           JobRunner
	tickInterval     time.Duration
	operationTimeout time.Duration // Timeout for a single run, retries included
	errorHandler     ErrorHandler
	now              func() time.Time
	wg               sync.WaitGroup
}

// Option is a functional option for configuring Worker.
type Option func(*Worker)

// WithTickInterval sets how often the job is invoked.
func WithTickInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.tickInterval = d
	}
}

// WithOperationTimeout sets the timeout for one run.
func WithOperationTimeout(d time.Duration) Option {
	return func(w *Worker) {
		w.operationTimeout = d
	}
}

// WithErrorHandler sets the hook notified of failed or panicking runs.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Worker) {
		w.errorHandler = h
	}
}

// WithClock overrides the clock used to pick evaluation dates.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

// New creates a new Worker for runner.
func New(runner JobRunner, opts ...Option) *Worker {
	w := &Worker{
		runner:           runner,
		tickInterval:     24 * time.Hour,  // Default: once a day
		operationTimeout: 5 * time.Minute, // Default: 5m per run
		errorHandler:     LoggingErrorHandler{},
		now:              func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start runs the job immediately and then on every tick until ctx is cancelled.
// On shutdown it waits for an in-flight run to finish and returns nil.
func (w *Worker) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Recurrence worker started", "interval", w.tickInterval)

	w.tick(ctx)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.wg.Go(func() {
				w.tick(ctx)
			})
		case <-ctx.Done():
			slog.InfoContext(ctx, "Shutdown requested, waiting for in-flight run...")
			w.wg.Wait()
			slog.InfoContext(ctx, "Recurrence worker stopped gracefully")
			return nil
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.operationTimeout)
	defer cancel()

	eval := domain.Date(w.now())
	if _, err := w.RunOnce(opCtx, eval); err != nil && errors.Is(err, domain.ErrJobLocked) {
		slog.InfoContext(opCtx, "Another worker holds the job lock, skipping", "date", domain.FormatDate(eval))
	}
}

// RunOnce runs the job for eval. A panicking run is recovered into a PanicError.
// A transient failure is retried once unless the error handler asks otherwise.
func (w *Worker) RunOnce(ctx context.Context, eval time.Time) (*scheduling.RunResult, error) {
	result, err := w.runWithRecovery(ctx, eval)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, domain.ErrJobLocked) || IsPanic(err) {
		return nil, err
	}

	if res := w.errorHandler.HandleError(ctx, eval, err); res != nil && res.SkipRetry {
		return nil, err
	}
	if !IsRetryable(err) || ctx.Err() != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Retrying monthly recurrence job", "date", domain.FormatDate(eval), "error", err)

	result, err = w.runWithRecovery(ctx, eval)
	if err != nil {
		w.errorHandler.HandleError(ctx, eval, err)
		return nil, err
	}
	return result, nil
}

// runWithRecovery invokes the runner, converting a panic into PanicError.
func (w *Worker) runWithRecovery(ctx context.Context, eval time.Time) (result *scheduling.RunResult, err error) {
	defer func() {
		r := recover()
		if r != nil {
			stackTrace := string(debug.Stack())
			w.errorHandler.HandlePanic(ctx, eval, r, stackTrace)
			result, err = nil, PanicError{Value: r, StackTrace: stackTrace}
		}
	}()

	result, err = w.runner.RunMonthly(ctx, eval)
	return result, classify(err)
}
