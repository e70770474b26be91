// Package tracing installs the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/zap"

	"github.com/abhisek/brainkit/internal/config"
)

// Shutdown flushes pending spans and releases exporter resources.
type Shutdown func(context.Context) error

// Init installs a global tracer provider and the W3C trace-context and
// baggage propagators. When tracing is disabled only the propagators are
// installed and the returned Shutdown is a no-op.
func Init(ctx context.Context, cfg config.TracingConfig, version string, logger *zap.Logger) (Shutdown, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	w, closeOut, err := output(cfg.Output)
	if err != nil {
		return nil, err
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		closeOut()
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(version),
	))
	if err != nil {
		logger.Warn("otel resource init failed (continuing)", zap.Error(err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized",
		zap.String("service", cfg.ServiceName),
		zap.Float64("sample_ratio", cfg.SampleRatio),
	)

	return func(ctx context.Context) error {
		defer closeOut()
		return tp.Shutdown(ctx)
	}, nil
}

func output(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
