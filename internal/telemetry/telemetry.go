package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// TelemetryConfig holds configuration for tracing and log export.
type TelemetryConfig struct {
	Enabled        bool
	OTLPEndpoint   string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

var (
	shutdownMu    sync.Mutex
	shutdownFuncs []func(context.Context) error
)

// InitTelemetry sets up the global tracer and logger providers. When
// disabled, spans go to stdout in development and log export is skipped.
func InitTelemetry(cfg TelemetryConfig) error {
	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create telemetry resource: %w", err)
	}

	var spanExporter sdktrace.SpanExporter
	if cfg.Enabled {
		spanExporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
	} else {
		spanExporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	registerShutdown(tracerProvider.Shutdown)

	if cfg.Enabled {
		logExporter, err := otlploghttp.New(ctx,
			otlploghttp.WithEndpoint(cfg.OTLPEndpoint),
			otlploghttp.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		loggerProvider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(loggerProvider)
		registerShutdown(loggerProvider.Shutdown)
	}

	return nil
}

// Shutdown flushes and stops all registered telemetry providers.
func Shutdown() error {
	shutdownMu.Lock()
	funcs := shutdownFuncs
	shutdownFuncs = nil
	shutdownMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var firstErr error
	for _, fn := range funcs {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func registerShutdown(fn func(context.Context) error) {
	shutdownMu.Lock()
	shutdownFuncs = append(shutdownFuncs, fn)
	shutdownMu.Unlock()
}
