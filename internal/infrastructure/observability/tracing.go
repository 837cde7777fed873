// Package observability configura el TracerProvider de OpenTelemetry (exportación OTLP/HTTP).
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoques-api/pkg/config"
)

// TracerName nombre del instrumentation scope de la aplicación.
const TracerName = "github.com/jhoicas/estoques-api"

// Tracer devuelve el tracer global de la aplicación (no-op si no se configuró SetupTracing).
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// SetupTracing registra el propagador W3C (traceparent + baggage) y, si cfg.Endpoint no está vacío,
// un TracerProvider con exportador OTLP/HTTP. Devuelve la función de apagado.
func SetupTracing(ctx context.Context, service string, cfg config.OtelConfig) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(service)),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.AuthHeader != "" {
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{"Authorization": cfg.AuthHeader}))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter,
			sdktrace.WithExportTimeout(10*time.Second),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
