package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
)

// setupTracing installs a global tracer provider when an exporter is
// configured. With no exporter the default no-op provider stays in place,
// so otelgorm instrumentation costs nothing.
func setupTracing(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) error {
	var exporter *otlptrace.Exporter
	var err error

	switch cfg.Telemetry.TraceExporter {
	case "grpc":
		exporter, err = otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(cfg.Telemetry.TraceEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	case "http":
		exporter, err = otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.Telemetry.TraceEndpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("appoet"),
	))
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info("trace exporter enabled",
		zap.String("exporter", cfg.Telemetry.TraceExporter),
		zap.String("endpoint", cfg.Telemetry.TraceEndpoint))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return nil
}
