package bootstrap

import (
	"browser-automator/internal/config"
	"browser-automator/internal/console"
	"browser-automator/internal/ports"
	"browser-automator/internal/transport/httpapi"
	"context"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type runParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.Logger
	Browser   ports.BrowserManager
	Server    *httpapi.Server
	Console   *console.Interface
	// Forces the provider to be built so spans are exported from the first request.
	Tracer *trace.TracerProvider
}

// run starts the surface selected by APP_MODE. The browser is launched lazily by the first
// request and closed last on stop.
func run(params runParams) {
	logger := params.Logger

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing browser")

			if err := params.Browser.Close(ctx); err != nil {
				logger.Error("Failed to close browser", zap.Error(err))
			}

			return nil
		},
	})

	switch params.Config.AppConfig.Mode {
	case config.ModeConsole:
		params.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				logger.Info("Starting console interface")

				go func() {
					if err := params.Console.Start(); err != nil {
						logger.Error("Console interface error", zap.Error(err))
					}
				}()

				return nil
			},
			OnStop: func(context.Context) error {
				return params.Console.Stop()
			},
		})
	default:
		params.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				logger.Info("Starting HTTP server", zap.String("addr", params.Config.HTTPConfig.Addr))

				return params.Server.Start(ctx)
			},
			OnStop: func(ctx context.Context) error {
				if err := params.Server.Shutdown(ctx); err != nil {
					logger.Error("Failed to shut down HTTP server", zap.Error(err))
				}

				return nil
			},
		})
	}
}
