package usecase

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/metrics"
	"browser-automator/internal/ports"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	searcherName   = "Searcher"
	searcherTracer = "usecase.searcher"

	consentSelector = `button#L2AGLb, button:has-text("Accept all"), button:has-text("I agree")`
	querySelector   = `textarea[name="q"], input[name="q"]`
	resultsSelector = `#search`
	organicSelector = `#search a:has(h3)`

	consentTimeout  = 2 * time.Second
	resultsTimeout  = 10 * time.Second
	minThinkDelay   = 800 * time.Millisecond
	maxThinkDelay   = 2000 * time.Millisecond
	minResultDelay  = 300 * time.Millisecond
	maxResultDelay  = 1200 * time.Millisecond
	minTypeDelay    = 60 * time.Millisecond
	maxTypeDelay    = 220 * time.Millisecond
	searchStepLabel = "search"
)

type SearchState int

const (
	SearchStart SearchState = iota
	SearchNavigated
	SearchCookiesHandled
	SearchQueryTyped
	SearchSubmitted
	SearchResultOpened
	SearchFailed
)

func (s SearchState) String() string {
	switch s {
	case SearchStart:
		return "start"
	case SearchNavigated:
		return "navigated"
	case SearchCookiesHandled:
		return "cookies_handled"
	case SearchQueryTyped:
		return "query_typed"
	case SearchSubmitted:
		return "submitted"
	case SearchResultOpened:
		return "result_opened"
	case SearchFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Searcher runs a query through the primary search engine like a person would and opens
// the first organic hit. When that fails it navigates once to the fallback provider.
type Searcher struct {
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	delay   ports.Delayer
	metrics *metrics.Metrics
}

type SearcherParams struct {
	Config  *config.Config
	Logger  *zap.Logger
	Delayer ports.Delayer
	Metrics *metrics.Metrics
}

func NewSearcher(params SearcherParams) *Searcher {
	return &Searcher{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, searcherName)),
		tracer:  otel.Tracer(searcherTracer),
		delay:   params.Delayer,
		metrics: params.Metrics,
	}
}

// Run returns the terminal state of the primary attempt. A fallback never surfaces as an error;
// only request cancellation does.
func (s *Searcher) Run(ctx context.Context, page ports.Page, query string, log *entity.ExecutionLog) (state SearchState, err error) {
	const op = "Run"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Query, query))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("query", query))
	defer func() {
		step.SetAttributes(attribute.String("state", state.String()))
		step.End(err)
	}()

	state, searchErr := s.searchPrimary(ctx, page, query, log)
	if searchErr == nil {
		return state, nil
	}

	if ctx.Err() != nil {
		return SearchFailed, ctx.Err()
	}

	logger.Warn("Primary search failed", zap.String(logg.State, state.String()), zap.Error(searchErr))
	step.RecordFailure("primary search failed", searchErr, attribute.String("state", state.String()))

	log.Append(entity.LogEntry{
		Step:    searchStepLabel,
		Outcome: entity.OutcomeFailed,
		Message: fmt.Sprintf("❌ Google search failed after %s: %s", state, apperr.Cause(searchErr).Error()),
		Err:     searchErr,
	})

	s.fallback(ctx, page, query, log)

	return SearchFailed, nil
}

// searchPrimary walks Start → Navigated → CookiesHandled → QueryTyped → Submitted → ResultOpened.
// Submitted is reached once Enter is pressed, before the results render.
// On error it returns the last state reached.
func (s *Searcher) searchPrimary(ctx context.Context, page ports.Page, query string, log *entity.ExecutionLog) (SearchState, error) {
	cfg := s.config.SearchConfig
	navTimeout := s.config.BrowserConfig.NavigationTimeoutDuration()
	state := SearchStart

	started := time.Now()
	if err := page.Goto(ctx, cfg.PrimaryURL, navTimeout); err != nil {
		return state, err
	}

	state = SearchNavigated
	log.Append(entity.Succeeded(searchStepLabel, "🌐 Opened %s (%dms)", cfg.PrimaryURL, time.Since(started).Milliseconds()))

	if err := page.Click(ctx, consentSelector, s.delay.Between(minClickDelay, maxClickDelay), consentTimeout); err != nil {
		if ctx.Err() != nil {
			return state, ctx.Err()
		}

		log.Append(entity.LogEntry{
			Step:    searchStepLabel,
			Outcome: entity.OutcomeWarning,
			Message: "⚠️ No cookie banner to dismiss",
		})
	} else {
		log.Append(entity.Succeeded(searchStepLabel, "🍪 Accepted cookie banner"))
	}

	state = SearchCookiesHandled

	if err := page.Click(ctx, querySelector, s.delay.Between(minClickDelay, maxClickDelay), navTimeout); err != nil {
		return state, err
	}

	for _, r := range query {
		if err := page.Type(ctx, querySelector, string(r), s.delay.Between(minTypeDelay, maxTypeDelay)); err != nil {
			return state, err
		}
	}

	state = SearchQueryTyped
	log.Append(entity.Succeeded(searchStepLabel, "⌨️ Typed query %q", query))

	if err := s.delay.Sleep(ctx, s.delay.Between(minThinkDelay, maxThinkDelay)); err != nil {
		return state, err
	}

	if err := page.Press(ctx, "Enter"); err != nil {
		return state, err
	}

	state = SearchSubmitted

	if err := page.WaitForSelector(ctx, resultsSelector, resultsTimeout); err != nil {
		return state, err
	}

	log.Append(entity.Succeeded(searchStepLabel, "🔎 Search results loaded"))

	if err := s.delay.Sleep(ctx, s.delay.Between(minResultDelay, maxResultDelay)); err != nil {
		return state, err
	}

	if err := page.ClickNth(ctx, organicSelector, 0, s.delay.Between(minClickDelay, maxClickDelay)); err != nil {
		return state, err
	}

	if err := page.WaitForNetworkIdle(ctx, navTimeout); err != nil {
		return state, err
	}

	state = SearchResultOpened
	log.Append(entity.Succeeded(searchStepLabel, "🔗 Opened first result %s", page.URL()))

	return state, nil
}

func (s *Searcher) fallback(ctx context.Context, page ports.Page, query string, log *entity.ExecutionLog) {
	target := FallbackURL(s.config.SearchConfig.FallbackURL, query)

	log.Append(entity.LogEntry{
		Step:    searchStepLabel,
		Outcome: entity.OutcomeNotice,
		Message: fmt.Sprintf("↪️ Falling back to %s for %q", target, query),
	})

	if s.metrics != nil {
		s.metrics.SearchFallbacks.Inc()
	}

	if err := page.Goto(ctx, target, s.config.BrowserConfig.NavigationTimeoutDuration()); err != nil {
		s.logger.Warn("Fallback navigation failed", zap.String(logg.URL, target), zap.Error(err))
		log.Append(entity.Failed("fallback", err))
	}
}

// FallbackURL appends the query as the q parameter of base.
func FallbackURL(base, query string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?q=" + url.QueryEscape(query)
	}

	values := u.Query()
	values.Set("q", query)
	u.RawQuery = values.Encode()

	return u.String()
}
