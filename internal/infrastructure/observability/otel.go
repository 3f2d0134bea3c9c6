// Package observability sets up OpenTelemetry traces, metrics and logs and
// installs the slog default logger.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// DefaultServiceName is used when Config.ServiceName is empty.
	DefaultServiceName = "fiscal"

	exportTimeout = 10 * time.Second
)

// Config holds observability configuration.
// Exporter endpoints come from the standard OTEL_EXPORTER_OTLP_* variables.
type Config struct {
	Enabled     bool
	ServiceName string
}

// Telemetry owns the providers created by Setup.
type Telemetry struct {
	Logger *slog.Logger

	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
	logs   *sdklog.LoggerProvider
}

// Setup builds the trace, metric and log pipelines and makes them global.
// With telemetry disabled the providers export nothing and logs go to stdout
// as JSON. The returned logger is also installed as the slog default.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	if !cfg.Enabled {
		t := &Telemetry{
			Logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
			tracer: sdktrace.NewTracerProvider(),
			meter:  sdkmetric.NewMeterProvider(),
			logs:   sdklog.NewLoggerProvider(),
		}
		t.install()
		return t, nil
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	headers := parseOTLPHeaders()

	// Exporters get a fresh context so a cancelled startup context cannot wedge shutdown.
	traceExporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithTimeout(exportTimeout),
		otlptracehttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetrichttp.New(context.Background(),
		otlpmetrichttp.WithTimeout(exportTimeout),
		otlpmetrichttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	logExporter, err := otlploghttp.New(context.Background(),
		otlploghttp.WithTimeout(exportTimeout),
		otlploghttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	logs := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter,
			sdklog.WithExportTimeout(5*time.Second),
		)),
		sdklog.WithResource(res),
	)

	t := &Telemetry{
		Logger: otelslog.NewLogger(cfg.ServiceName, otelslog.WithLoggerProvider(logs)),
		tracer: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(5*time.Second)),
		),
		meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(15*time.Second),
			)),
		),
		logs: logs,
	}
	t.install()
	return t, nil
}

func (t *Telemetry) install() {
	otel.SetTracerProvider(t.tracer)
	otel.SetMeterProvider(t.meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	slog.SetDefault(t.Logger)
}

// Shutdown flushes and stops every provider. Logs go last so shutdown
// errors from the other providers still reach the exporter.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
	}
	if err := t.meter.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
	}
	for _, err := range errs {
		slog.ErrorContext(ctx, "Telemetry shutdown failed", "error", err)
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown logger provider: %w", err))
	}
	return errors.Join(errs...)
}

// newResource describes this service. OTEL_RESOURCE_ATTRIBUTES and
// OTEL_SERVICE_NAME override the configured name.
func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithFromEnv(),
	)
	if err != nil {
		// A partial resource is still usable.
		if errors.Is(err, resource.ErrPartialResource) {
			return res, nil
		}
		return nil, fmt.Errorf("failed to create service resource: %w", err)
	}
	return res, nil
}

// parseOTLPHeaders reads OTEL_EXPORTER_OTLP_HEADERS and URL-decodes the values.
// Some backends hand out headers already encoded (Basic%20token).
func parseOTLPHeaders() map[string]string {
	raw := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")
	if raw == "" {
		return nil
	}

	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		headers[strings.TrimSpace(key)] = value
	}
	return headers
}
