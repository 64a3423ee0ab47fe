package usecase

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/ports"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"errors"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	plannerName   = "Planner"
	plannerTracer = "usecase.planner"
)

const planningInstruction = `You are a browser automation assistant. Respond with JSON: {
  "actions": [{
    "type": "navigation|click|fill|scrape|wait",
    "details": {...}
  }],
  "summarize": boolean
}
Details per type:
- navigation: {"url": string}
- click: {"selector": string}
- fill: {"selector": string, "value": string}
- scrape: {"selector": string, "as": string}
- wait: {"ms": number}`

// Planner turns a prompt into either a search request or an action plan from the model.
type Planner struct {
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	ai      ports.CompletionClient
	trigger *regexp.Regexp
}

type PlannerParams struct {
	Config *config.Config
	Logger *zap.Logger
	AI     ports.CompletionClient
}

func NewPlanner(params PlannerParams) *Planner {
	return &Planner{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, plannerName)),
		tracer:  otel.Tracer(plannerTracer),
		ai:      params.AI,
		trigger: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(params.Config.SearchConfig.Trigger)),
	}
}

func (p *Planner) Resolve(ctx context.Context, prompt string, forceSearch bool) (res *entity.Resolution, err error) {
	const op = "Resolve"
	logger := p.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, p.tracer, logger, op,
		attribute.Bool("force_search", forceSearch))
	defer func() {
		step.End(err)
	}()

	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.InvalidReqError(op, "prompt", errors.New("prompt cannot be empty"))
	}

	if forceSearch || p.trigger.MatchString(prompt) {
		query := p.SearchQuery(prompt)
		if query == "" {
			return nil, apperr.InvalidReqError(op, "prompt", errors.New("search query is empty"))
		}

		logger.Info("Routing to search", zap.String(logg.Query, query))
		step.AddEvent("search path")

		return &entity.Resolution{Search: &entity.SearchRequest{Query: query}}, nil
	}

	step.AddEvent("requesting plan")

	text, err := p.ai.Complete(ctx, entity.CompletionRequest{
		Model: p.config.AIConfig.PlanModel,
		Messages: []entity.AIMessage{
			{Role: "system", Content: planningInstruction},
			{Role: "user", Content: prompt},
		},
		JSONOutput: true,
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "plan_request_failed",
			apperr.MetaStage:  apperr.StagePlan,
		})
	}

	plan, err := entity.ParseActionPlan([]byte(text))
	if err != nil {
		logger.Warn("Model returned an unusable plan", zap.Error(err))

		return nil, apperr.Wrap(op, apperr.CodeInvalidPlan, err, map[string]any{
			apperr.MetaReason: "plan_parse_failed",
			apperr.MetaStage:  apperr.StagePlan,
		})
	}

	step.SetAttributes(attribute.Int("actions_count", len(plan.Actions)), attribute.Bool("summarize", plan.Summarize))
	logger.Info("Plan resolved", zap.Int("actions_count", len(plan.Actions)), zap.Bool("summarize", plan.Summarize))

	return &entity.Resolution{Plan: plan}, nil
}

// SearchQuery removes every case-insensitive occurrence of the trigger word and trims the rest.
func (p *Planner) SearchQuery(prompt string) string {
	return strings.TrimSpace(p.trigger.ReplaceAllString(prompt, ""))
}
