package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/rezkam/fiscal/internal/domain"
)

// ErrorHandler is told about failed and panicking runs, for alerting.
type ErrorHandler interface {
	// HandleError sees every failed attempt. Returning SkipRetry suppresses
	// the retry of a transient failure.
	HandleError(ctx context.Context, eval time.Time, err error) *ErrorHandlerResult

	// HandlePanic sees a recovered panic. Its result is ignored.
	HandlePanic(ctx context.Context, eval time.Time, panicVal any, stackTrace string) *ErrorHandlerResult
}

// ErrorHandlerResult lets an ErrorHandler steer the retry.
type ErrorHandlerResult struct {
	SkipRetry bool
}

// LoggingErrorHandler writes failures to slog and never vetoes a retry.
type LoggingErrorHandler struct{}

func (LoggingErrorHandler) HandleError(ctx context.Context, eval time.Time, err error) *ErrorHandlerResult {
	slog.ErrorContext(ctx, "Monthly recurrence job failed",
		"date", domain.FormatDate(eval),
		"error", err,
		"retryable", IsRetryable(err))
	return nil
}

func (LoggingErrorHandler) HandlePanic(ctx context.Context, eval time.Time, panicVal any, stackTrace string) *ErrorHandlerResult {
	slog.ErrorContext(ctx, "Monthly recurrence job panicked",
		"date", domain.FormatDate(eval),
		"panic_value", panicVal,
		"stack_trace", stackTrace)
	return nil
}
