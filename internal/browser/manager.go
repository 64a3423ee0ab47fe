package browser

import (
	"browser-automator/internal/config"
	"browser-automator/internal/entity"
	"browser-automator/internal/metrics"
	"browser-automator/internal/ports"
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	browserManagerName = "BrowserManager"
	browserTracer      = "browser.manager"
)

// launchFunc starts the driver and the browser process.
type launchFunc func(ctx context.Context) (*playwright.Playwright, playwright.Browser, error)

// Manager lazily launches one browser process and hands out isolated request pages on it.
type Manager struct {
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Metrics

	// initLock serializes the first launch; it is a semaphore so waiters honour ctx.
	initLock *semaphore.Weighted
	handle   atomic.Pointer[Handle]
	launch   launchFunc
	contexts *semaphore.Weighted
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewManager(params Params) *Manager {
	m := &Manager{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, browserManagerName)),
		tracer:   otel.Tracer(browserTracer),
		metrics:  params.Metrics,
		initLock: semaphore.NewWeighted(1),
		contexts: semaphore.NewWeighted(int64(params.Config.BrowserConfig.MaxContexts)),
	}
	m.launch = m.launchChromium

	return m
}

// Acquire returns the shared browser, launching it on the first call. Concurrent first
// callers wait for the single launch instead of starting their own. A failed launch is
// not cached; the next request tries again.
func (m *Manager) Acquire(ctx context.Context) (handle ports.BrowserHandle, err error) {
	if h := m.handle.Load(); h != nil {
		return h, nil
	}

	const op = "Acquire"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err := m.initLock.Acquire(ctx, 1); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
			apperr.MetaReason: "launch_wait_cancelled",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	defer m.initLock.Release(1)

	if h := m.handle.Load(); h != nil {
		step.AddEvent("launched by concurrent caller")

		return h, nil
	}

	logger.Info("Launching browser...")
	step.AddEvent("launching browser")

	pw, browser, err := m.launch(ctx)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		pw:       pw,
		browser:  browser,
		contexts: m.contexts,
		logger:   m.logger,
		tracer:   m.tracer,
		metrics:  m.metrics,
	}
	m.handle.Store(h)

	if m.metrics != nil {
		m.metrics.BrowserLaunches.Inc()
	}

	logger.Info("Browser launched successfully")

	return h, nil
}

func (m *Manager) launchChromium(ctx context.Context) (*playwright.Playwright, playwright.Browser, error) {
	const op = "launchChromium"

	if !m.config.BrowserConfig.SkipInstall {
		if err := playwright.Install(&playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
		}); err != nil {
			return nil, nil, apperr.Wrap(op, apperr.CodeUnavailable, err, map[string]any{
				apperr.MetaReason: "playwright_install_failed",
				apperr.MetaStage:  apperr.StageBrowser,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
			apperr.MetaReason: "context_done",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, apperr.Wrap(op, apperr.CodeUnavailable, err, map[string]any{
			apperr.MetaReason: "playwright_start_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.config.BrowserConfig.Headless),
		Timeout:  playwright.Float(float64(m.config.BrowserConfig.LaunchTimeout)),
		Args:     launchArgs(),
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			m.logger.Warn("Failed to stop playwright after launch failure", zap.Error(stopErr))
		}

		return nil, nil, apperr.Wrap(op, apperr.CodeUnavailable, err, map[string]any{
			apperr.MetaReason: "browser_launch_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	return pw, browser, nil
}

// Close stops the browser process on application shutdown.
func (m *Manager) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := m.logger.With(zap.String(logg.Operation, op))

	h := m.handle.Swap(nil)
	if h == nil {
		return nil
	}

	logger.Info("Closing browser...")

	if h.browser != nil {
		if err := h.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
	}

	if h.pw != nil {
		if err := h.pw.Stop(); err != nil {
			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "playwright_stop_failed",
			})
		}
	}

	logger.Info("Browser closed")

	return nil
}

// Handle is the launched browser. It only creates request sessions; the raw process
// is never exposed.
type Handle struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	contexts *semaphore.Weighted
	logger   *zap.Logger
	tracer   trace.Tracer
	metrics  *metrics.Metrics
}

// NewRequestPage opens an isolated context configured with profile and its single page.
// It waits while the context ceiling is reached.
func (h *Handle) NewRequestPage(ctx context.Context, profile entity.EvasionProfile) (session ports.Session, err error) {
	const op = "NewRequestPage"
	logger := h.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, h.tracer, logger, op,
		attribute.String("user_agent", profile.UserAgent),
		attribute.Int("viewport_width", profile.ViewportWidth),
		attribute.Int("viewport_height", profile.ViewportHeight))
	defer func() {
		step.End(err)
	}()

	if err := h.contexts.Acquire(ctx, 1); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
			apperr.MetaReason: "context_slot_wait_cancelled",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		h.contexts.Release(1)

		if h.metrics != nil {
			h.metrics.ContextsActive.Dec()
		}
	}

	if h.metrics != nil {
		h.metrics.ContextsActive.Inc()
	}

	step.AddEvent("creating context")

	browserContext, err := h.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(profile.UserAgent),
		Viewport: &playwright.Size{
			Width:  profile.ViewportWidth,
			Height: profile.ViewportHeight,
		},
		Locale:            playwright.String("en-US"),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		release()

		return nil, apperr.Wrap(op, apperr.CodeBrowserNotReady, err, map[string]any{
			apperr.MetaReason: "context_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	if err := browserContext.AddInitScript(playwright.Script{
		Content: playwright.String(stealthScript()),
	}); err != nil {
		closeQuietly(logger, browserContext)
		release()

		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "init_script_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	page, err := browserContext.NewPage()
	if err != nil {
		closeQuietly(logger, browserContext)
		release()

		return nil, apperr.Wrap(op, apperr.CodeBrowserNotReady, err, map[string]any{
			apperr.MetaReason: "page_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	return &Session{
		context: browserContext,
		page:    page,
		release: release,
		logger:  h.logger.With(zap.String(logg.Layer, sessionName)),
		tracer:  h.tracer,
	}, nil
}

func closeQuietly(logger *zap.Logger, browserContext playwright.BrowserContext) {
	if err := browserContext.Close(); err != nil {
		logger.Warn("Failed to close context", zap.Error(err))
	}
}
