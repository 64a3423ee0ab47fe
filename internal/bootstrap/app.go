package bootstrap

import (
	"browser-automator/internal/ai"
	"browser-automator/internal/browser"
	"browser-automator/internal/config"
	"browser-automator/internal/console"
	"browser-automator/internal/evasion"
	"browser-automator/internal/humanize"
	"browser-automator/internal/metrics"
	"browser-automator/internal/ports"
	"browser-automator/internal/transport/httpapi"
	"browser-automator/internal/usecase"
	"time"

	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,
			metrics.New,

			fx.Annotate(browser.NewManager, fx.As(new(ports.BrowserManager))),
			fx.Annotate(ai.NewClient, fx.As(new(ports.CompletionClient))),
			fx.Annotate(evasion.NewGenerator, fx.As(new(ports.ProfileGenerator))),
			fx.Annotate(humanize.NewRandomDelayer, fx.As(new(ports.Delayer))),

			usecase.NewUsecase,

			httpapi.NewServer,
			console.NewInterface,
		),

		fx.Invoke(
			run,
		),

		fx.StartTimeout(10*time.Second),
		fx.StopTimeout(30*time.Second),
	)
}
