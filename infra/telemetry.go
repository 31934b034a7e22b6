package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/tranqh/photokeep/config"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func newTelemetryResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.Grafana.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment.Mode),
	)
}

// InitTelemetry wires trace and metric providers against the configured OTLP
// endpoint plus Go runtime instrumentation. Returns a shutdown func; a no-op
// when no endpoint is configured.
func InitTelemetry(cfg *config.EnvConfig) func(context.Context) {
	if cfg.Grafana.OTLPEndpoint == "" {
		return func(context.Context) {}
	}

	ctx := context.Background()
	res := newTelemetryResource(cfg)

	traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize OTLP trace exporter: %v", err))
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize OTLP metric exporter: %v", err))
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		panic(fmt.Sprintf("Failed to start runtime instrumentation: %v", err))
	}

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = tracerProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
	}
}
