package usecase

import (
	"browser-automator/internal/entity"
	"browser-automator/internal/metrics"
	"browser-automator/internal/ports"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	automationName   = "AutomationService"
	automationTracer = "usecase.automation"

	pathSearch = "search"
	pathPlan   = "plan"
)

// AutomationService runs one prompt end to end: resolve, drive the page, summarize, assemble.
type AutomationService struct {
	logger     *zap.Logger
	tracer     trace.Tracer
	browser    ports.BrowserManager
	profiles   ports.ProfileGenerator
	planner    *Planner
	executor   *Executor
	searcher   *Searcher
	summarizer *Summarizer
	assembler  *Assembler
	metrics    *metrics.Metrics
}

type AutomationServiceParams struct {
	Logger     *zap.Logger
	Browser    ports.BrowserManager
	Profiles   ports.ProfileGenerator
	Planner    *Planner
	Executor   *Executor
	Searcher   *Searcher
	Summarizer *Summarizer
	Assembler  *Assembler
	Metrics    *metrics.Metrics
}

func NewAutomationService(params AutomationServiceParams) *AutomationService {
	return &AutomationService{
		logger:     params.Logger.With(zap.String(logg.Layer, automationName)),
		tracer:     otel.Tracer(automationTracer),
		browser:    params.Browser,
		profiles:   params.Profiles,
		planner:    params.Planner,
		executor:   params.Executor,
		searcher:   params.Searcher,
		summarizer: params.Summarizer,
		assembler:  params.Assembler,
		metrics:    params.Metrics,
	}
}

// Automate always returns an envelope. Success is false only for request-level failures.
func (s *AutomationService) Automate(ctx context.Context, req entity.AutomateRequest) *entity.ResultEnvelope {
	const op = "Automate"

	started := s.assembler.now()
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.RequestID, requestID))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("request_id", requestID),
		attribute.Bool("force_google", req.ForceGoogle))

	logger.Info("Automation started", zap.Bool("force_google", req.ForceGoogle))

	log := &entity.ExecutionLog{}
	path, data, summary, err := s.run(ctx, logger, req, log)

	env := s.assembler.Assemble(requestID, log, data, summary, started, err)
	step.End(err)

	outcome := "success"
	if err != nil {
		outcome = "error"
		logger.Error("Automation failed", zap.String("code", env.Code), zap.Error(err))
	} else {
		logger.Info("Automation finished",
			zap.Int("log_lines", len(env.Results)),
			zap.Int64("execution_ms", env.ExecutionTime))
	}

	if s.metrics != nil {
		s.metrics.RecordRequest(path, outcome, env.Elapsed())
	}

	return env
}

func (s *AutomationService) run(ctx context.Context, logger *zap.Logger, req entity.AutomateRequest, log *entity.ExecutionLog) (path string, data entity.ScrapedData, summary string, err error) {
	const op = "run"

	path = pathPlan
	if req.ForceGoogle {
		path = pathSearch
	}

	var (
		resolution *entity.Resolution
		handle     ports.BrowserHandle
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		resolution, err = s.planner.Resolve(gctx, req.Prompt, req.ForceGoogle)

		return err
	})

	g.Go(func() error {
		var err error
		handle, err = s.browser.Acquire(gctx)

		return err
	})

	if err := g.Wait(); err != nil {
		return path, nil, "", err
	}

	if resolution.IsSearch() {
		path = pathSearch
	}

	session, err := handle.NewRequestPage(ctx, s.profiles.Generate())
	if err != nil {
		return path, nil, "", err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		if closeErr := session.Close(closeCtx); closeErr != nil {
			logger.Warn("Failed to release request page", zap.Error(closeErr))
		}
	}()

	if resolution.IsSearch() {
		if _, err := s.searcher.Run(ctx, session, resolution.Search.Query, log); err != nil {
			return path, nil, "", err
		}

		data = make(entity.ScrapedData)
	} else {
		data, err = s.executor.Run(ctx, session, resolution.Plan.Actions, log)
		if err != nil {
			return path, nil, "", err
		}
	}

	if !resolution.WantsSummary() {
		return path, data, "", nil
	}

	html, err := session.Content(ctx)
	if err != nil {
		return path, nil, "", err
	}

	text, err := PageText(html)
	if err != nil {
		return path, nil, "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_text_failed",
			apperr.MetaStage:  apperr.StageSummary,
		})
	}

	if text == "" {
		logger.Debug("Skipping summary of empty page")

		return path, data, "", nil
	}

	summary, err = s.summarizer.Summarize(ctx, text)
	if err != nil {
		return path, nil, "", err
	}

	return path, data, summary, nil
}
