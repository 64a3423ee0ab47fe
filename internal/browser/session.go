package browser

import (
	"browser-automator/pkg/apperr"
	"browser-automator/pkg/logg"
	"browser-automator/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sessionName = "BrowserSession"

// Session is one request's browser context and page.
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
	release func()
	logger  *zap.Logger
	tracer  trace.Tracer

	closeOnce sync.Once
	closeErr  error
}

func (s *Session) Goto(ctx context.Context, url string, timeout time.Duration) (err error) {
	const op = "Goto"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	_, err = s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   millis(timeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return apperr.Wrap(op, codeFor(err), err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	return nil
}

func (s *Session) Click(ctx context.Context, selector string, delay, timeout time.Duration) (err error) {
	const op = "Click"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	opts := playwright.LocatorClickOptions{
		Delay: playwright.Float(float64(delay.Milliseconds())),
	}
	if timeout > 0 {
		opts.Timeout = millis(timeout)
	}

	if err := s.page.Locator(selector).First().Click(opts); err != nil {
		return interactionError(op, selector, "click_failed", err)
	}

	return nil
}

func (s *Session) ClickNth(ctx context.Context, selector string, index int, delay time.Duration) error {
	const op = "ClickNth"

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	err := s.page.Locator(selector).Nth(index).Click(playwright.LocatorClickOptions{
		Delay: playwright.Float(float64(delay.Milliseconds())),
	})
	if err != nil {
		return interactionError(op, fmt.Sprintf("%s >> nth=%d", selector, index), "click_failed", err)
	}

	return nil
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	const op = "Fill"

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	if err := s.page.Locator(selector).First().Fill(value); err != nil {
		return interactionError(op, selector, "fill_failed", err)
	}

	return nil
}

// Type presses each character of text into selector, waiting delay between keystrokes.
func (s *Session) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	const op = "Type"

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	err := s.page.Locator(selector).First().PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(float64(delay.Milliseconds())),
	})
	if err != nil {
		return interactionError(op, selector, "type_failed", err)
	}

	return nil
}

func (s *Session) Press(ctx context.Context, key string) error {
	const op = "Press"

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	if err := s.page.Keyboard().Press(key); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "press_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return nil
}

func (s *Session) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (err error) {
	const op = "WaitForSelector"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("selector", selector))
	defer func() {
		step.End(err)
	}()

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	_, err = s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: millis(timeout),
	})
	if err != nil {
		return apperr.Wrap(op, codeFor(err), err, map[string]any{
			apperr.MetaReason:   "wait_selector_failed",
			apperr.MetaSelector: selector,
		})
	}

	return nil
}

func (s *Session) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	const op = "WaitForNetworkIdle"

	if err := ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: millis(timeout),
	})
	if err != nil {
		return apperr.Wrap(op, codeFor(err), err, map[string]any{
			apperr.MetaReason: "network_idle_failed",
			apperr.MetaStage:  apperr.StageNavigation,
		})
	}

	return nil
}

// TextContents returns the trimmed text of every element matching selector.
func (s *Session) TextContents(ctx context.Context, selector string) ([]string, error) {
	const op = "TextContents"

	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	texts, err := s.page.Locator(selector).AllTextContents()
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason:   "evaluate_failed",
			apperr.MetaSelector: selector,
		})
	}

	for i, t := range texts {
		texts[i] = strings.TrimSpace(t)
	}

	return texts, nil
}

func (s *Session) Content(ctx context.Context) (string, error) {
	const op = "Content"

	if err := ctx.Err(); err != nil {
		return "", apperr.Wrap(op, apperr.CodeTimeout, err, nil)
	}

	html, err := s.page.Content()
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "content_failed",
		})
	}

	return html, nil
}

func (s *Session) URL() string {
	return s.page.URL()
}

// Close closes the page and then the context. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	const op = "Close"

	s.closeOnce.Do(func() {
		defer s.release()

		var errs []error

		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}

		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}

		if len(errs) > 0 {
			s.closeErr = apperr.Wrap(op, apperr.CodeInternal, errors.Join(errs...), map[string]any{
				apperr.MetaReason: "session_close_failed",
				apperr.MetaStage:  apperr.StageBrowser,
			})
		}
	})

	return s.closeErr
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func codeFor(err error) string {
	if errors.Is(err, playwright.ErrTimeout) {
		return apperr.CodeTimeout
	}

	return apperr.CodeActionFailed
}

func interactionError(op, selector, reason string, err error) error {
	return apperr.Wrap(op, codeFor(err), err, map[string]any{
		apperr.MetaReason:   reason,
		apperr.MetaStage:    apperr.StageInteraction,
		apperr.MetaSelector: selector,
	})
}
