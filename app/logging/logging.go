package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

const serviceName = "fitgirl-rss-reader"

// ShutdownFunc flushes and stops log shipping.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the default slog logger. Records go to stdout as JSON and,
// when lokiHost is set, are also shipped over OTLP/HTTP to
// <lokiHost>/otlp/v1/logs.
func Setup(ctx context.Context, level, lokiHost, version string) (ShutdownFunc, error) {
	minLevel := ParseLevel(level)
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: minLevel})

	if lokiHost == "" {
		slog.SetDefault(slog.New(jsonHandler))
		return func(context.Context) error { return nil }, nil
	}

	provider, err := newLoggerProvider(ctx, lokiHost, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	otelHandler := otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(provider))

	slog.SetDefault(slog.New(NewMultiHandler(minLevel, jsonHandler, otelHandler)))

	return provider.Shutdown, nil
}

func newLoggerProvider(ctx context.Context, lokiHost, version string) (*sdklog.LoggerProvider, error) {
	endpoint := strings.TrimRight(lokiHost, "/") + "/otlp/v1/logs"

	opts := []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
	if strings.HasPrefix(endpoint, "http://") {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
		attribute.String("deployment.environment", envOr("APP_ENV", "production")),
	)

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter,
			sdklog.WithExportInterval(5*time.Second),
			sdklog.WithExportMaxBatchSize(512),
		)),
		sdklog.WithResource(res),
	), nil
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
