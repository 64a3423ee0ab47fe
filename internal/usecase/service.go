package usecase

import (
	"browser-automator/internal/config"
	"browser-automator/internal/metrics"
	"browser-automator/internal/ports"
	"browser-automator/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Automation adapters.AutomationService
	Planner    adapters.PlannerService
}

type Params struct {
	fx.In

	Logger   *zap.Logger
	Config   *config.Config
	Metrics  *metrics.Metrics
	Browser  ports.BrowserManager
	AI       ports.CompletionClient
	Profiles ports.ProfileGenerator
	Delayer  ports.Delayer
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)
	planner := factory.CreatePlanner()

	return &Service{
		Automation: factory.CreateAutomationService(planner),
		Planner:    planner,
	}
}
