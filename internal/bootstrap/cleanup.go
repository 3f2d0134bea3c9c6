package bootstrap

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner is anything flushed on exit with a deadline, such as telemetry.
type shutdowner interface {
	Shutdown(context.Context) error
}

// NewCleanup returns the exit hook: close every closer in order, then flush
// telemetry so the close errors are still exported. Nil entries are skipped.
func NewCleanup(ctx context.Context, telemetry shutdowner, closers ...io.Closer) func() {
	return func() {
		for _, c := range closers {
			if c == nil {
				continue
			}
			if err := c.Close(); err != nil {
				slog.ErrorContext(ctx, "Failed to close resource", "error", err)
			}
		}

		if telemetry != nil {
			if err := telemetry.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to shut down telemetry", "error", err)
			}
		}
	}
}
