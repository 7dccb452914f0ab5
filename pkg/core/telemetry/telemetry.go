// Package telemetry sets up OpenTelemetry tracing for the nucmd binaries.
// Spans are created by the processor around every dispatch and by the gRPC
// stats handlers; this package decides where they go.
package telemetry

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/msto63/nucmd/pkg/core/version"
)

// Config selects the trace exporter
type Config struct {
	// Endpoint is the OTLP/HTTP collector URL; empty disables tracing
	Endpoint string `env:"NUCMD_OTEL_ENDPOINT"`
	// Enabled=false disables tracing even with an endpoint
	Enabled bool `env:"NUCMD_OTEL_ENABLED" envDefault:"true"`
	// SampleRatio is applied to root spans, 1 samples everything
	SampleRatio float64 `env:"NUCMD_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// ConfigFromEnv reads Config from the environment
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read telemetry environment: %w", err)
	}
	return cfg, nil
}

// Active reports whether Setup would install a provider
func (c Config) Active() bool {
	return c.Enabled && c.Endpoint != ""
}

// ShutdownFunc flushes pending spans
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider for serviceName. Tracing is
// opt-in: with no endpoint, or Enabled false, it returns a no-op shutdown
// and leaves the global provider alone. Callers defer the returned
// shutdown.
func Setup(ctx context.Context, serviceName string, cfg Config) (ShutdownFunc, error) {
	if !cfg.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Platform),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// SetupFromEnv combines ConfigFromEnv and Setup
func SetupFromEnv(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return noop, err
	}
	return Setup(ctx, serviceName, cfg)
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
