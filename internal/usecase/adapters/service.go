package adapters

import (
	"browser-automator/internal/entity"
	"context"
)

type AutomationService interface {
	Automate(ctx context.Context, req entity.AutomateRequest) *entity.ResultEnvelope
}

type PlannerService interface {
	Resolve(ctx context.Context, prompt string, forceSearch bool) (*entity.Resolution, error)
	SearchQuery(prompt string) string
}
