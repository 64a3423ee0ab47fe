package usecase

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/metrics"
	"browser-automator/internal/ports"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	executorName   = "Executor"
	executorTracer = "usecase.executor"

	minActionDelay = 1000 * time.Millisecond
	maxActionDelay = 3000 * time.Millisecond
	minClickDelay  = 50 * time.Millisecond
	maxClickDelay  = 200 * time.Millisecond
	minKeyDelay    = 50 * time.Millisecond
	maxKeyDelay    = 150 * time.Millisecond
)

// Executor runs an action plan against one page. A failing action is logged and the
// plan goes on; only a cancelled request context stops it early.
type Executor struct {
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	delay   ports.Delayer
	metrics *metrics.Metrics
}

type ExecutorParams struct {
	Config  *config.Config
	Logger  *zap.Logger
	Delayer ports.Delayer
	Metrics *metrics.Metrics
}

func NewExecutor(params ExecutorParams) *Executor {
	return &Executor{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, executorName)),
		tracer:  otel.Tracer(executorTracer),
		delay:   params.Delayer,
		metrics: params.Metrics,
	}
}

func (e *Executor) Run(ctx context.Context, page ports.Page, actions []entity.Action, log *entity.ExecutionLog) (data entity.ScrapedData, err error) {
	const op = "Run"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op,
		attribute.Int("actions_count", len(actions)))
	defer func() {
		step.End(err)
	}()

	data = make(entity.ScrapedData)

	for i, action := range actions {
		if err := e.delay.Sleep(ctx, e.delay.Between(minActionDelay, maxActionDelay)); err != nil {
			return data, err
		}

		entry := e.execute(ctx, page, action, data)
		log.Append(entry)

		e.record(action, entry)

		if entry.Outcome == entity.OutcomeFailed {
			logger.Warn("Action failed",
				zap.Int("index", i),
				zap.String(logg.Action, string(action.Kind())),
				zap.Error(entry.Err))
			step.RecordFailure("action failed", entry.Err,
				attribute.Int("index", i),
				attribute.String("kind", string(action.Kind())))
		}
	}

	return data, nil
}

func (e *Executor) execute(ctx context.Context, page ports.Page, action entity.Action, data entity.ScrapedData) entity.LogEntry {
	kind := string(action.Kind())
	started := time.Now()
	elapsed := func() int64 { return time.Since(started).Milliseconds() }

	switch a := action.(type) {
	case entity.NavigateAction:
		if err := page.Goto(ctx, a.URL, e.config.BrowserConfig.NavigationTimeoutDuration()); err != nil {
			return entity.Failed(kind, err)
		}

		return entity.Succeeded(kind, "🌐 Navigated to %s (%dms)", a.URL, elapsed())
	case entity.ClickAction:
		if err := page.Click(ctx, a.Selector, e.delay.Between(minClickDelay, maxClickDelay), 0); err != nil {
			return entity.Failed(kind, err)
		}

		return entity.Succeeded(kind, "🖱️ Clicked %s (%dms)", a.Selector, elapsed())
	case entity.FillAction:
		if err := e.fill(ctx, page, a); err != nil {
			return entity.Failed(kind, err)
		}

		return entity.Succeeded(kind, "📝 Filled %s (%dms)", a.Selector, elapsed())
	case entity.ScrapeAction:
		texts, err := page.TextContents(ctx, a.Selector)
		if err != nil {
			return entity.Failed(kind, err)
		}

		data[a.As] = texts

		return entity.Succeeded(kind, "🧹 Scraped %d items from %s", len(texts), a.Selector)
	case entity.WaitAction:
		if err := e.delay.Sleep(ctx, a.Duration); err != nil {
			return entity.Failed(kind, err)
		}

		return entity.Succeeded(kind, "⏱️ Waited %dms", a.Duration.Milliseconds())
	default:
		return entity.LogEntry{
			Step:    kind,
			Outcome: entity.OutcomeSkipped,
			Message: fmt.Sprintf("⚠️ Skipped unknown action %q", kind),
		}
	}
}

// fill clears the field and types value one character at a time with a fresh delay per key.
func (e *Executor) fill(ctx context.Context, page ports.Page, a entity.FillAction) error {
	if err := page.Fill(ctx, a.Selector, ""); err != nil {
		return err
	}

	for _, r := range a.Value {
		if err := page.Type(ctx, a.Selector, string(r), e.delay.Between(minKeyDelay, maxKeyDelay)); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) record(action entity.Action, entry entity.LogEntry) {
	if e.metrics == nil {
		return
	}

	kind := string(action.Kind())
	if _, unknown := action.(entity.UnknownAction); unknown {
		kind = "unknown"
	}

	e.metrics.RecordAction(kind, string(entry.Outcome))
}
