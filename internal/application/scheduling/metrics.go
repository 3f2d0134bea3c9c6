package scheduling

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/rezkam/fiscal/internal/application/scheduling"

// jobMetrics counts monthly job outcomes per occurrence kind.
type jobMetrics struct {
	created    metric.Int64Counter
	duplicates metric.Int64Counter
	failed     metric.Int64Counter
}

func newJobMetrics() *jobMetrics {
	meter := otel.Meter(meterName)
	return &jobMetrics{
		created:    counter(meter, "fiscal.recurrences.created", "Occurrences created by the monthly job"),
		duplicates: counter(meter, "fiscal.recurrences.duplicates", "Successors skipped because they already existed"),
		failed:     counter(meter, "fiscal.recurrences.failed", "Sources the monthly job failed to process"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
		c, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter(name)
	}
	return c
}

func (m *jobMetrics) add(ctx context.Context, c metric.Int64Counter, kind string) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
