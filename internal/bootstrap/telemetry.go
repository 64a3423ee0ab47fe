package bootstrap

import (
	"browser-automator/internal/config"
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	serviceName = "browser-automator"

	// Share of root spans exported outside debug mode.
	productionSampleRatio = 0.1
)

// newTraceProvider exports spans to stderr so they never mix with console output.
func newTraceProvider(lc fx.Lifecycle, config *config.Config, logger *zap.Logger) *sdktrace.TracerProvider {
	opts := []stdouttrace.Option{stdouttrace.WithWriter(os.Stderr)}
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(productionSampleRatio))

	if config.AppConfig.Debug {
		opts = append(opts, stdouttrace.WithPrettyPrint())
		sampler = sdktrace.AlwaysSample()
	}

	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		logger.Fatal("Failed to create trace exporter", zap.Error(err))
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("app.mode", config.AppConfig.Mode),
		),
	)
	if err != nil {
		logger.Fatal("Failed to create resource", zap.Error(err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp
}
